package response

import (
	"fmt"
	"net"

	"github.com/scylla-go/cqldriver/frame"
)

// EventType names the kind of unsolicited event frame, selected by
// registering for it via a REGISTER request (§4.8).
type EventType string

const (
	EventTopologyChange EventType = "TOPOLOGY_CHANGE"
	EventStatusChange   EventType = "STATUS_CHANGE"
	EventSchemaChange   EventType = "SCHEMA_CHANGE"
)

// ServerEvent is any server-initiated EVENT body (§4.8).
type ServerEvent interface {
	EventType() EventType
}

// TopologyChangeKind is the change reported by a TOPOLOGY_CHANGE event.
type TopologyChangeKind string

const (
	TopologyNewNode     TopologyChangeKind = "NEW_NODE"
	TopologyRemovedNode TopologyChangeKind = "REMOVED_NODE"
)

// TopologyChange announces a node joining or leaving the ring.
type TopologyChange struct {
	Change  TopologyChangeKind
	Address net.IP
	Port    int32
}

func (*TopologyChange) EventType() EventType { return EventTopologyChange }

// StatusChangeKind is the change reported by a STATUS_CHANGE event.
type StatusChangeKind string

const (
	StatusUp   StatusChangeKind = "UP"
	StatusDown StatusChangeKind = "DOWN"
)

// StatusChange announces a node becoming reachable or unreachable.
type StatusChange struct {
	Change  StatusChangeKind
	Address net.IP
	Port    int32
}

func (*StatusChange) EventType() EventType { return EventStatusChange }

func (*SchemaChange) EventType() EventType { return EventSchemaChange }

// ParseEvent dispatches on the leading event-type string (§4.8).
func ParseEvent(b *frame.Buffer) ServerEvent {
	typ := EventType(b.ReadString())
	if b.Error() != nil {
		return nil
	}
	switch typ {
	case EventTopologyChange:
		change := TopologyChangeKind(b.ReadString())
		addr, port := b.ReadInet()
		if b.Error() != nil {
			return nil
		}
		return &TopologyChange{Change: change, Address: addr, Port: port}
	case EventStatusChange:
		change := StatusChangeKind(b.ReadString())
		addr, port := b.ReadInet()
		if b.Error() != nil {
			return nil
		}
		return &StatusChange{Change: change, Address: addr, Port: port}
	case EventSchemaChange:
		sc := parseSchemaChange(b)
		if b.Error() != nil {
			return nil
		}
		return sc
	default:
		b.Fail(fmt.Errorf("%w: unknown event type %q", frame.ErrMalformedFrame, typ))
		return nil
	}
}
