package transport

import (
	"fmt"

	"github.com/scylla-go/cqldriver/frame"
)

// maxStreamID is the highest client-assignable stream id. Stream -1 is
// reserved for server-initiated EVENT frames (§2 "Open Questions"); the
// protocol's signed short leaves [0, 32767] for client requests.
const maxStreamID = 32767

// streamIDAllocator hands out stream ids in [0, maxStreamID] for a single
// connection. It is not safe for concurrent use; callers serialize
// access with their own lock (connReader.mu).
type streamIDAllocator struct {
	free  []frame.StreamID
	inUse int
}

func newStreamIDAllocator() streamIDAllocator {
	free := make([]frame.StreamID, maxStreamID+1)
	for i := range free {
		free[i] = frame.StreamID(maxStreamID - i)
	}
	return streamIDAllocator{free: free}
}

var errNoFreeStreamIDs = fmt.Errorf("transport: no free stream ids")

func (s *streamIDAllocator) Alloc() (frame.StreamID, error) {
	if len(s.free) == 0 {
		return 0, errNoFreeStreamIDs
	}
	id := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	s.inUse++
	return id, nil
}

func (s *streamIDAllocator) Free(id frame.StreamID) {
	s.free = append(s.free, id)
	s.inUse--
}

func (s *streamIDAllocator) InUse() int { return s.inUse }
