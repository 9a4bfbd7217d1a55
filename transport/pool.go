package transport

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PoolConfig bounds a single node's connection pool (§6 "Pool").
type PoolConfig struct {
	// MaxSize is the most connections the pool opens to one node;
	// NewConnPool lowers a larger MinIdle to it.
	MaxSize int
	// MinIdle is how many connections the pool opens eagerly on
	// creation, before any caller asks for one.
	MinIdle int
	// MaxLifetime closes and drops a connection once it has been open
	// this long, regardless of activity, checked on each Acquire; zero
	// disables the check. A dropped connection is not replaced.
	MaxLifetime time.Duration
	// IdleTimeout is not read by the pool: connections are never closed
	// for being idle, whatever its value.
	IdleTimeout time.Duration
}

// DefaultPoolConfig matches what a Session without further
// configuration would use: one multiplexed connection per node
// (MinIdle 1), since a single CQL connection already supports thousands of
// concurrent in-flight streams (§4 "Connection").
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxSize:     10,
		MinIdle:     1,
		MaxLifetime: 0,
		IdleTimeout: 0,
	}
}

type pooledConn struct {
	conn      *Conn
	createdAt time.Time
}

// ConnPool manages the set of connections a Node keeps open. Unlike a
// typical database connection pool, entries aren't checked out
// exclusively: CQL connections multiplex thousands of streams, so
// Acquire hands back whichever open connection currently has the
// fewest streams in flight, and Release does nothing.
type ConnPool struct {
	addr    string
	cfg     ConnConfig
	poolCfg PoolConfig

	mu     sync.Mutex
	conns  []*pooledConn
	closed bool
}

// NewConnPool dials MinIdle connections to addr (at least one, at most
// MaxSize) and returns a pool over them. The pool does not open further
// connections later; it only shrinks as MaxLifetime and Healthy drop
// connections.
func NewConnPool(ctx context.Context, addr string, cfg ConnConfig, poolCfg PoolConfig) (*ConnPool, error) {
	if poolCfg.MaxSize <= 0 {
		poolCfg.MaxSize = DefaultPoolConfig().MaxSize
	}
	if poolCfg.MinIdle > poolCfg.MaxSize {
		poolCfg.MinIdle = poolCfg.MaxSize
	}
	p := &ConnPool{addr: addr, cfg: cfg, poolCfg: poolCfg}

	for i := 0; i < poolCfg.MinIdle; i++ {
		if err := p.grow(ctx); err != nil {
			p.Close()
			return nil, err
		}
	}
	if poolCfg.MinIdle == 0 {
		if err := p.grow(ctx); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *ConnPool) grow(ctx context.Context) error {
	conn, err := Dial(ctx, p.addr, p.cfg)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.conns = append(p.conns, &pooledConn{conn: conn, createdAt: timeNow()})
	p.mu.Unlock()
	return nil
}

// timeNow exists so pool aging logic has one seam; it is ordinary
// wall-clock time outside of tests.
var timeNow = time.Now

// Acquire returns the connection with the fewest streams in flight,
// after dropping those past MaxLifetime. It never opens a connection
// and fails once the pool has none left.
func (p *ConnPool) Acquire() (*Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("transport: connection pool for %s is closed", p.addr)
	}

	p.evictLocked()

	if len(p.conns) == 0 {
		return nil, fmt.Errorf("transport: no connections available to %s", p.addr)
	}

	best := p.conns[0]
	bestLoad := best.conn.InFlight()
	for _, c := range p.conns[1:] {
		if load := c.conn.InFlight(); load < bestLoad {
			best, bestLoad = c, load
		}
	}
	return best.conn, nil
}

// evictLocked drops connections past MaxLifetime. Caller holds p.mu.
func (p *ConnPool) evictLocked() {
	if p.poolCfg.MaxLifetime <= 0 {
		return
	}
	kept := p.conns[:0]
	for _, c := range p.conns {
		if timeNow().Sub(c.createdAt) > p.poolCfg.MaxLifetime {
			_ = c.conn.Close()
			continue
		}
		kept = append(kept, c)
	}
	p.conns = kept
}

// Release is a bookkeeping hook for callers that want checkout-style
// symmetry with Acquire; since connections are shared, it does nothing
// beyond being safe to call.
func (p *ConnPool) Release(_ *Conn) {}

// Close closes every connection in the pool.
func (p *ConnPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, c := range p.conns {
		_ = c.conn.Close()
	}
	p.conns = nil
}

// Healthy probes every connection with OPTIONS, pruning those that
// don't answer (§6 "Pool" health check).
func (p *ConnPool) Healthy(ctx context.Context) {
	p.mu.Lock()
	conns := make([]*pooledConn, len(p.conns))
	copy(conns, p.conns)
	p.mu.Unlock()

	var dead []*Conn
	for _, c := range conns {
		if _, err := c.conn.Options(ctx); err != nil {
			dead = append(dead, c.conn)
		}
	}
	if len(dead) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.conns[:0]
	for _, c := range p.conns {
		isDead := false
		for _, d := range dead {
			if c.conn == d {
				isDead = true
				break
			}
		}
		if isDead {
			_ = c.conn.Close()
			continue
		}
		kept = append(kept, c)
	}
	p.conns = kept
}
