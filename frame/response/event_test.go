package response

import (
	"net"
	"testing"

	"github.com/scylla-go/cqldriver/frame"
)

func TestParseEventTopologyChange(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteString(string(EventTopologyChange))
	buf.WriteString(string(TopologyNewNode))
	buf.WriteInet(net.ParseIP("10.0.0.1"), 9042)

	got, ok := ParseEvent(&buf).(*TopologyChange)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if got.Change != TopologyNewNode || got.Port != 9042 || !got.Address.Equal(net.ParseIP("10.0.0.1")) {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestParseEventStatusChange(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteString(string(EventStatusChange))
	buf.WriteString(string(StatusDown))
	buf.WriteInet(net.ParseIP("10.0.0.2"), 9042)

	got, ok := ParseEvent(&buf).(*StatusChange)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if got.Change != StatusDown || !got.Address.Equal(net.ParseIP("10.0.0.2")) {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestParseEventSchemaChange(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteString(string(EventSchemaChange))
	buf.WriteString(string(SchemaDropped))
	buf.WriteString(string(TargetKeyspace))
	buf.WriteString("ks")

	got, ok := ParseEvent(&buf).(*SchemaChange)
	if !ok {
		t.Fatalf("wrong type %T", got)
	}
	if got.ChangeType != SchemaDropped || got.Keyspace != "ks" || got.EventType() != EventSchemaChange {
		t.Fatalf("unexpected decode: %#v", got)
	}
}

func TestParseEventUnknownType(t *testing.T) {
	t.Parallel()
	var buf frame.Buffer
	buf.WriteString("NOT_A_REAL_EVENT")

	if got := ParseEvent(&buf); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
	if buf.Error() == nil {
		t.Fatal("expected buffer error")
	}
}

func FuzzParseEvent(f *testing.F) {
	var seed frame.Buffer
	seed.WriteString(string(EventStatusChange))
	seed.WriteString(string(StatusUp))
	seed.WriteInet(net.ParseIP("127.0.0.1"), 9042)
	f.Add(seed.Bytes())

	f.Fuzz(func(t *testing.T, data []byte) { //nolint:thelper
		var buf frame.Buffer
		buf.Write(data)
		_ = ParseEvent(&buf)
	})
}
