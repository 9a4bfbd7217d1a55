package transport

import "testing"

func testNodes(statuses ...bool) []*Node {
	nodes := make([]*Node, len(statuses))
	for i, up := range statuses {
		n := NewNode("node")
		n.setStatus(up)
		nodes[i] = n
	}
	return nodes
}

func TestRoundRobinPolicyCycles(t *testing.T) {
	nodes := testNodes(true, true, true)
	p := NewRoundRobinPolicy()

	seen := map[*Node]int{}
	for i := 0; i < 9; i++ {
		n, err := p.Pick(nodes)
		if err != nil {
			t.Fatalf("Pick: %v", err)
		}
		seen[n]++
	}
	for _, n := range nodes {
		if seen[n] != 3 {
			t.Errorf("node picked %d times, want 3 (even distribution over 9 picks)", seen[n])
		}
	}
}

func TestRoundRobinPolicySkipsDownNodes(t *testing.T) {
	nodes := testNodes(false, true, false)
	p := NewRoundRobinPolicy()

	for i := 0; i < 5; i++ {
		n, err := p.Pick(nodes)
		if err != nil {
			t.Fatalf("Pick: %v", err)
		}
		if !n.IsUp() {
			t.Fatalf("picked a DOWN node")
		}
	}
}

func TestRoundRobinPolicyAllDown(t *testing.T) {
	nodes := testNodes(false, false)
	p := NewRoundRobinPolicy()
	if _, err := p.Pick(nodes); err != errNoLiveNodes {
		t.Fatalf("Pick: want errNoLiveNodes, got %v", err)
	}
}

func TestRandomPolicyOnlyPicksLiveNodes(t *testing.T) {
	nodes := testNodes(true, false, true, false)
	p := NewRandomPolicy()

	for i := 0; i < 20; i++ {
		n, err := p.Pick(nodes)
		if err != nil {
			t.Fatalf("Pick: %v", err)
		}
		if !n.IsUp() {
			t.Fatalf("picked a DOWN node")
		}
	}
}

func TestPolicyEmptyCluster(t *testing.T) {
	if _, err := NewRoundRobinPolicy().Pick(nil); err != errNoLiveNodes {
		t.Errorf("round robin on empty cluster: got %v", err)
	}
	if _, err := NewRandomPolicy().Pick(nil); err != errNoLiveNodes {
		t.Errorf("random on empty cluster: got %v", err)
	}
}
