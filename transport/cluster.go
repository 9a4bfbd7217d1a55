package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/scylla-go/cqldriver/frame"
	"github.com/scylla-go/cqldriver/frame/response"
)

// ClusterConfig configures how a Cluster connects to and maintains its
// member nodes.
type ClusterConfig struct {
	Hosts    []string
	ConnCfg  ConnConfig
	PoolCfg  PoolConfig
	Policy   HostSelectionPolicy
	Logger   Logger
}

// Cluster tracks the set of reachable nodes and keeps it current by
// listening for TOPOLOGY_CHANGE and STATUS_CHANGE events on one control
// connection, the way a session would in production (§5 "Cluster").
// SCHEMA_CHANGE events are also subscribed to and forwarded to the
// channels handed out by Subscribe, but membership tracking ignores them.
type Cluster struct {
	cfg ClusterConfig

	mu    sync.RWMutex
	nodes []*Node

	control *Conn
	events  EventChan
	done    chan struct{}

	schemaMu   sync.Mutex
	schemaSubs map[chan *response.SchemaChange]struct{}
}

// NewCluster dials every configured host, picks the first that answers
// to open a control connection subscribed to cluster events, and
// returns once the initial node list is ready.
func NewCluster(ctx context.Context, cfg ClusterConfig) (*Cluster, error) {
	if cfg.Policy == nil {
		cfg.Policy = NewRoundRobinPolicy()
	}
	if cfg.Logger == nil {
		cfg.Logger = DefaultLogger{}
	}
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("transport: cluster needs at least one host")
	}

	c := &Cluster{
		cfg:        cfg,
		done:       make(chan struct{}),
		schemaSubs: make(map[chan *response.SchemaChange]struct{}),
	}

	for _, addr := range cfg.Hosts {
		n := NewNode(addr)
		if err := n.Connect(ctx, cfg.ConnCfg, cfg.PoolCfg); err != nil {
			cfg.Logger.Printf("transport: initial connect to %s failed: %v", addr, err)
			continue
		}
		c.nodes = append(c.nodes, n)
	}
	if len(c.nodes) == 0 {
		return nil, fmt.Errorf("transport: could not connect to any of %v", cfg.Hosts)
	}

	if err := c.openControlConn(ctx); err != nil {
		cfg.Logger.Printf("transport: control connection unavailable, events disabled: %v", err)
	} else {
		go c.watchEvents()
	}

	return c, nil
}

func (c *Cluster) openControlConn(ctx context.Context) error {
	conn, err := Dial(ctx, c.nodes[0].Addr, c.cfg.ConnCfg)
	if err != nil {
		return err
	}
	events := make(EventChan, 64)
	subscribe := frame.StringList{
		string(response.EventTopologyChange),
		string(response.EventStatusChange),
		string(response.EventSchemaChange),
	}
	if err := conn.Register(ctx, subscribe, events); err != nil {
		_ = conn.Close()
		return err
	}
	c.control = conn
	c.events = events
	return nil
}

// watchEvents applies TOPOLOGY_CHANGE/STATUS_CHANGE events to the
// node list until the event channel closes (control connection lost).
func (c *Cluster) watchEvents() {
	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				return
			}
			c.apply(ev)
		case <-c.done:
			return
		}
	}
}

func (c *Cluster) apply(ev response.ServerEvent) {
	switch e := ev.(type) {
	case *response.TopologyChange:
		switch e.Change {
		case response.TopologyNewNode:
			c.addNode(e.Address, e.Port)
		case response.TopologyRemovedNode:
			c.removeNode(e.Address, e.Port)
		}
	case *response.StatusChange:
		switch e.Change {
		case response.StatusUp:
			c.setNodeStatus(e.Address, e.Port, true)
		case response.StatusDown:
			c.setNodeStatus(e.Address, e.Port, false)
		}
	case *response.SchemaChange:
		c.broadcastSchemaChange(e)
	}
}

// broadcastSchemaChange fans e out to every active Subscribe-r. A
// subscriber whose buffer is full is skipped rather than blocking the
// event loop for every other subscriber.
func (c *Cluster) broadcastSchemaChange(e *response.SchemaChange) {
	c.schemaMu.Lock()
	defer c.schemaMu.Unlock()
	for ch := range c.schemaSubs {
		select {
		case ch <- e:
		default:
			c.cfg.Logger.Printf("transport: schema event subscriber channel full, dropping %v", e)
		}
	}
}

func addrString(ip net.IP, port int32) string {
	return fmt.Sprintf("%s:%d", ip.String(), port)
}

func (c *Cluster) addNode(ip net.IP, port int32) {
	addr := addrString(ip, port)

	c.mu.Lock()
	for _, n := range c.nodes {
		if n.Addr == addr {
			c.mu.Unlock()
			return
		}
	}
	n := NewNode(addr)
	c.nodes = append(c.nodes, n)
	c.mu.Unlock()

	if err := n.Connect(context.Background(), c.cfg.ConnCfg, c.cfg.PoolCfg); err != nil {
		c.cfg.Logger.Printf("transport: connecting to new node %s failed: %v", addr, err)
	}
}

func (c *Cluster) removeNode(ip net.IP, port int32) {
	addr := addrString(ip, port)

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.nodes {
		if n.Addr == addr {
			n.Close()
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			return
		}
	}
}

func (c *Cluster) setNodeStatus(ip net.IP, port int32, up bool) {
	addr := addrString(ip, port)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, n := range c.nodes {
		if n.Addr == addr {
			n.setStatus(up)
			return
		}
	}
}

// Nodes returns a snapshot of the currently known nodes.
func (c *Cluster) Nodes() []*Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Pick selects a node to route the next request to, via the
// cluster's configured HostSelectionPolicy.
func (c *Cluster) Pick() (*Node, error) {
	return c.cfg.Policy.Pick(c.Nodes())
}

// Subscribe registers a new SCHEMA_CHANGE listener, returning its
// private event channel and an unsubscribe func the caller must invoke
// once done (§4.10). Each subscriber gets its own buffered channel, so
// multiple goroutines can watch schema changes independently.
func (c *Cluster) Subscribe() (<-chan *response.SchemaChange, func()) {
	ch := make(chan *response.SchemaChange, 16)

	c.schemaMu.Lock()
	c.schemaSubs[ch] = struct{}{}
	c.schemaMu.Unlock()

	unsubscribe := func() {
		c.schemaMu.Lock()
		delete(c.schemaSubs, ch)
		c.schemaMu.Unlock()
	}
	return ch, unsubscribe
}

// Close tears down every node's pool, the control connection, and
// every active schema-event subscription.
func (c *Cluster) Close() {
	close(c.done)
	if c.control != nil {
		_ = c.control.Close()
	}
	for _, n := range c.Nodes() {
		n.Close()
	}

	c.schemaMu.Lock()
	for ch := range c.schemaSubs {
		close(ch)
		delete(c.schemaSubs, ch)
	}
	c.schemaMu.Unlock()
}
