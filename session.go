package cqldriver

import (
	"context"
	"fmt"
	"time"

	"github.com/scylla-go/cqldriver/frame"
	"github.com/scylla-go/cqldriver/transport"
)

// SessionConfig configures a Session's cluster connection.
type SessionConfig struct {
	Hosts              []string
	Keyspace           string
	DefaultConsistency frame.Consistency
	Authenticator      transport.Authenticator
	Policy             transport.HostSelectionPolicy
	PoolConfig         transport.PoolConfig
	Logger             transport.Logger
}

// DefaultSessionConfig returns a config connecting to hosts with
// round-robin node selection, one connection per node, and consistency
// ONE (§4.9).
func DefaultSessionConfig(keyspace string, hosts ...string) SessionConfig {
	return SessionConfig{
		Hosts:              hosts,
		Keyspace:           keyspace,
		DefaultConsistency: frame.ONE,
		Policy:             transport.NewRoundRobinPolicy(),
		PoolConfig:         transport.DefaultPoolConfig(),
	}
}

func (cfg SessionConfig) connConfig() transport.ConnConfig {
	c := transport.DefaultConnConfig(cfg.Keyspace)
	c.Authenticator = cfg.Authenticator
	return c
}

// Session is a client's single entry point into a cluster: it owns the
// node list and is safe for concurrent use by many goroutines, one per
// logical caller, the way a real application keeps exactly one Session
// alive for its whole lifetime.
type Session struct {
	cfg     SessionConfig
	cluster *transport.Cluster
}

// NewSession connects to cfg.Hosts and returns a ready-to-use Session.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if len(cfg.Hosts) == 0 {
		return nil, newError(GeneralError, fmt.Errorf("session: no hosts given"))
	}

	cluster, err := transport.NewCluster(ctx, transport.ClusterConfig{
		Hosts:   cfg.Hosts,
		ConnCfg: cfg.connConfig(),
		PoolCfg: cfg.PoolConfig,
		Policy:  cfg.Policy,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return nil, classify(err)
	}

	return &Session{cfg: cfg, cluster: cluster}, nil
}

// Query builds an unprepared statement against content.
func (s *Session) Query(content string) *Query {
	return &Query{
		session: s,
		content: content,
		params:  queryParamsBuilder{consistency: s.cfg.DefaultConsistency},
	}
}

// Prepare registers content with the server and returns a Query bound
// to the resulting prepared statement id, so repeated execution skips
// re-parsing the CQL text server-side (§4.9 "Prepare").
func (s *Session) Prepare(ctx context.Context, content string) (*Query, error) {
	n, err := s.cluster.Pick()
	if err != nil {
		return nil, classify(err)
	}
	conn, err := n.Conn()
	if err != nil {
		return nil, classify(err)
	}
	defer n.Release(conn)

	p, err := conn.Prepare(ctx, content, false)
	if err != nil {
		return nil, classify(err)
	}

	return &Query{
		session:    s,
		content:    content,
		preparedID: p.ID,
		resultMeta: p.ResultMetadata,
		paramMeta:  p.ParametersMetadata,
		params:     queryParamsBuilder{consistency: s.cfg.DefaultConsistency},
	}, nil
}

// NewBatch starts composing a batch of statements sharing one
// consistency level (§4.9 "Batch").
func (s *Session) NewBatch(typ BatchType) *Batch {
	return &Batch{
		session:     s,
		typ:         typ,
		consistency: s.cfg.DefaultConsistency,
	}
}

func (s *Session) pickConn() (*transport.Node, *transport.Conn, error) {
	n, err := s.cluster.Pick()
	if err != nil {
		return nil, nil, classify(err)
	}
	conn, err := n.Conn()
	if err != nil {
		return nil, nil, classify(err)
	}
	return n, conn, nil
}

// AwaitSchemaAgreement polls every known node's schema_version until
// they all agree or ctx is done, the same check a session runs after a
// DDL statement to avoid racing a follow-up query against a node that
// hasn't caught up yet.
func (s *Session) AwaitSchemaAgreement(ctx context.Context) error {
	nodes := s.cluster.Nodes()
	if len(nodes) == 0 {
		return newError(GeneralError, fmt.Errorf("session: no nodes to check schema agreement on"))
	}

	for {
		var first frame.UUID
		seeded, agreed := false, true
		for _, n := range nodes {
			if !n.IsUp() {
				continue
			}
			v, err := n.FetchSchemaVersion(ctx)
			if err != nil {
				return classify(err)
			}
			if !seeded {
				first, seeded = v, true
				continue
			}
			if v != first {
				agreed = false
				break
			}
		}
		if agreed {
			return nil
		}
		select {
		case <-ctx.Done():
			return newError(ProtocolError, fmt.Errorf("session: schema disagreement between nodes: %w", ctx.Err()))
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// Close tears down every node connection in the cluster.
func (s *Session) Close() {
	s.cluster.Close()
}
