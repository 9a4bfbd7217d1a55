package transport

import (
	"context"
	"fmt"

	"github.com/scylla-go/cqldriver/frame"
	"github.com/scylla-go/cqldriver/frame/request"
	"github.com/scylla-go/cqldriver/frame/response"
	"go.uber.org/atomic"
)

// NodeStatus reports whether a node is currently usable.
type NodeStatus bool

const (
	StatusDown NodeStatus = false
	StatusUp   NodeStatus = true
)

func (s NodeStatus) String() string {
	if s == StatusUp {
		return "UP"
	}
	return "DOWN"
}

// Node is one cluster member: its address plus a pool of connections to
// it. Status flips to DOWN when the pool can't be (re)established and
// back to UP once it can; load balancing policies skip DOWN nodes
// (§5 "Node", §1 Non-goal: no token-aware routing, only round-robin/random).
type Node struct {
	Addr       string
	HostID     frame.UUID
	Datacenter string
	Rack       string

	pool   *ConnPool
	status atomic.Bool
}

// NewNode constructs a node in the DOWN state; call Connect to open its pool.
func NewNode(addr string) *Node {
	return &Node{Addr: addr}
}

func (n *Node) IsUp() bool { return n.status.Load() }

func (n *Node) setStatus(up bool) { n.status.Store(up) }

// Connect (re)establishes the node's connection pool. It is safe to
// call again after the node went DOWN.
func (n *Node) Connect(ctx context.Context, cfg ConnConfig, poolCfg PoolConfig) error {
	pool, err := NewConnPool(ctx, n.Addr, cfg, poolCfg)
	if err != nil {
		n.setStatus(false)
		return fmt.Errorf("connecting to node %s: %w", n.Addr, err)
	}
	n.pool = pool
	n.setStatus(true)
	return nil
}

func (n *Node) Close() {
	if n.pool != nil {
		n.pool.Close()
	}
	n.setStatus(false)
}

// Conn returns a connection from the node's pool, failing fast if the
// node is currently marked DOWN.
func (n *Node) Conn() (*Conn, error) {
	if !n.IsUp() {
		return nil, fmt.Errorf("node %s is down", n.Addr)
	}
	conn, err := n.pool.Acquire()
	if err != nil {
		n.setStatus(false)
		return nil, fmt.Errorf("acquiring connection to node %s: %w", n.Addr, err)
	}
	return conn, nil
}

// Release returns conn to the node's pool.
func (n *Node) Release(conn *Conn) {
	if n.pool != nil {
		n.pool.Release(conn)
	}
}

var versionQuery = "SELECT schema_version FROM system.local WHERE key='local'"

// FetchSchemaVersion reads the local node's current schema version,
// used by a session to detect schema agreement across the cluster.
func (n *Node) FetchSchemaVersion(ctx context.Context) (frame.UUID, error) {
	conn, err := n.Conn()
	if err != nil {
		return frame.UUID{}, err
	}
	defer n.Release(conn)

	res, err := conn.Query(ctx, versionQuery, request.QueryParams{Consistency: frame.ONE}, false)
	if err != nil {
		return frame.UUID{}, err
	}

	rows, ok := res.Result.(*response.Rows)
	if !ok {
		return frame.UUID{}, fmt.Errorf("schema_version query returned unexpected result %T", res.Result)
	}
	if len(rows.RowsData) < 1 || len(rows.RowsData[0]) < 1 {
		return frame.UUID{}, fmt.Errorf("schema_version query returned no rows")
	}

	v, err := rows.RowsData[0].ByIndex(&rows.Metadata, 0)
	if err != nil {
		return frame.UUID{}, err
	}
	version, err := v.AsUUID()
	if err != nil {
		return frame.UUID{}, fmt.Errorf("parsing schema_version: %w", err)
	}
	return version, nil
}
