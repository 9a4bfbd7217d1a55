package transport

import (
	"testing"

	"github.com/scylla-go/cqldriver/frame/response"
)

func testCluster() *Cluster {
	return &Cluster{
		cfg:        ClusterConfig{Logger: DefaultLogger{}},
		done:       make(chan struct{}),
		schemaSubs: make(map[chan *response.SchemaChange]struct{}),
	}
}

func TestClusterSubscribeReceivesSchemaChange(t *testing.T) {
	c := testCluster()
	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	ev := &response.SchemaChange{ChangeType: response.SchemaCreated, Target: response.TargetTable, Keyspace: "ks", Table: "tbl"}
	c.apply(ev)

	select {
	case got := <-ch:
		if got != ev {
			t.Fatalf("got %#v, want %#v", got, ev)
		}
	default:
		t.Fatal("subscriber channel empty after apply")
	}
}

func TestClusterSubscribersAreIndependent(t *testing.T) {
	c := testCluster()
	ch1, unsub1 := c.Subscribe()
	defer unsub1()
	ch2, unsub2 := c.Subscribe()
	defer unsub2()

	ev := &response.SchemaChange{ChangeType: response.SchemaDropped, Target: response.TargetKeyspace, Keyspace: "ks"}
	c.apply(ev)

	for _, ch := range []chan *response.SchemaChange{ch1, ch2} {
		select {
		case got := <-ch:
			if got != ev {
				t.Fatalf("got %#v, want %#v", got, ev)
			}
		default:
			t.Fatal("one subscriber missed the event")
		}
	}
}

func TestClusterUnsubscribeStopsDelivery(t *testing.T) {
	c := testCluster()
	ch, unsubscribe := c.Subscribe()
	unsubscribe()

	c.apply(&response.SchemaChange{ChangeType: response.SchemaUpdated, Target: response.TargetTable, Keyspace: "ks", Table: "tbl"})

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("unsubscribed channel received an event")
		}
	default:
	}
}

func TestClusterIgnoresOtherEventKinds(t *testing.T) {
	c := testCluster()
	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	c.apply(&response.StatusChange{Change: response.StatusUp})

	select {
	case got := <-ch:
		t.Fatalf("schema subscriber received non-schema event %#v", got)
	default:
	}
}
