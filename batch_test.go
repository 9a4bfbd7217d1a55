package cqldriver

import (
	"testing"

	"github.com/scylla-go/cqldriver/frame"
)

func TestBatchQueryAppendsPositionalValues(t *testing.T) {
	b := &Batch{typ: BatchLogged}
	b.Query("INSERT INTO t (k) VALUES (?)", frame.EncodeInt(1), frame.EncodeInt(2))

	if len(b.queries) != 1 {
		t.Fatalf("got %d queries, want 1", len(b.queries))
	}
	q := b.queries[0]
	if q.Content != "INSERT INTO t (k) VALUES (?)" {
		t.Fatalf("unexpected content: %q", q.Content)
	}
	if len(q.Values) != 2 {
		t.Fatalf("got %d values, want 2", len(q.Values))
	}
	for _, v := range q.Values {
		if v.Name != "" {
			t.Fatalf("Batch.Query must only produce positional values, got name %q", v.Name)
		}
	}
}

func TestBatchPreparedQueryUsesPreparedID(t *testing.T) {
	b := &Batch{typ: BatchUnlogged}
	q := &Query{preparedID: []byte{0xAB, 0xCD}}
	b.PreparedQuery(q, frame.EncodeInt(7))

	if len(b.queries) != 1 {
		t.Fatalf("got %d queries, want 1", len(b.queries))
	}
	got := b.queries[0]
	if string(got.PreparedID) != "\xab\xcd" {
		t.Fatalf("unexpected prepared id: %x", got.PreparedID)
	}
	if got.Content != "" {
		t.Fatalf("prepared batch query should not carry CQL text, got %q", got.Content)
	}
}

func TestBatchSettersAreChainable(t *testing.T) {
	b := &Batch{typ: BatchLogged}
	ret := b.SetConsistency(frame.QUORUM).SetSerialConsistency(frame.SERIAL).SetTracing(true)

	if ret != b {
		t.Fatalf("setters must return the same *Batch for chaining")
	}
	if b.consistency != frame.QUORUM || b.serialConsistency != frame.SERIAL || !b.tracing {
		t.Fatalf("unexpected batch state: %#v", b)
	}
}
