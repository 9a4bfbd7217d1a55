package transport

import (
	"fmt"
	"math/rand"

	"go.uber.org/atomic"
)

// HostSelectionPolicy picks the node a request should be routed to.
// Only round-robin and random strategies are implemented; token-aware
// routing is out of scope (§1 Non-goals), so a policy only ever
// considers node liveness, never which node owns a statement's data.
type HostSelectionPolicy interface {
	// Pick returns the next node to try, skipping any node currently
	// marked DOWN. It returns an error if every node is DOWN.
	Pick(nodes []*Node) (*Node, error)
}

var errNoLiveNodes = fmt.Errorf("transport: no live nodes available")

// RoundRobinPolicy cycles through the cluster's nodes in a fixed order,
// wrapping back to the start, grounded on round_robin_sync.rs's
// mutex-guarded counter (reimplemented here with an atomic int64, since
// Go's atomics remove the need for a mutex around a single counter).
type RoundRobinPolicy struct {
	next atomic.Int64
}

func NewRoundRobinPolicy() *RoundRobinPolicy {
	return &RoundRobinPolicy{}
}

func (p *RoundRobinPolicy) Pick(nodes []*Node) (*Node, error) {
	if len(nodes) == 0 {
		return nil, errNoLiveNodes
	}
	start := int(p.next.Add(1) % int64(len(nodes)))
	for i := 0; i < len(nodes); i++ {
		n := nodes[(start+i)%len(nodes)]
		if n.IsUp() {
			return n, nil
		}
	}
	return nil, errNoLiveNodes
}

// RandomPolicy picks a uniformly random live node, grounded on
// random.rs's rnd_idx.
type RandomPolicy struct {
	rngMu randSource
}

// randSource wraps math/rand's global source. RandomPolicy holds it as
// a concrete type, so its output is not deterministic.
type randSource struct{}

func (randSource) Intn(n int) int { return rand.Intn(n) }

func NewRandomPolicy() *RandomPolicy {
	return &RandomPolicy{}
}

func (p *RandomPolicy) Pick(nodes []*Node) (*Node, error) {
	live := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsUp() {
			live = append(live, n)
		}
	}
	if len(live) == 0 {
		return nil, errNoLiveNodes
	}
	return live[p.rngMu.Intn(len(live))], nil
}
