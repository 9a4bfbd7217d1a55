package transport

import "testing"

func TestStreamIDAllocatorAllocFree(t *testing.T) {
	s := newStreamIDAllocator()
	if s.InUse() != 0 {
		t.Fatalf("fresh allocator InUse() = %d, want 0", s.InUse())
	}

	id, err := s.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if id < 0 || id > maxStreamID {
		t.Fatalf("allocated id %d out of range [0, %d]", id, maxStreamID)
	}
	if s.InUse() != 1 {
		t.Fatalf("InUse() = %d, want 1", s.InUse())
	}

	s.Free(id)
	if s.InUse() != 0 {
		t.Fatalf("InUse() after Free = %d, want 0", s.InUse())
	}
}

func TestStreamIDAllocatorNeverReusesInFlightID(t *testing.T) {
	s := newStreamIDAllocator()
	seen := map[int16]bool{}
	for i := 0; i < 100; i++ {
		id, err := s.Alloc()
		if err != nil {
			t.Fatalf("Alloc: %v", err)
		}
		if seen[int16(id)] {
			t.Fatalf("id %d allocated twice while still in use", id)
		}
		seen[int16(id)] = true
	}
}

func TestStreamIDAllocatorExhaustion(t *testing.T) {
	s := newStreamIDAllocator()
	for i := 0; i <= maxStreamID; i++ {
		if _, err := s.Alloc(); err != nil {
			t.Fatalf("Alloc %d: %v", i, err)
		}
	}
	if _, err := s.Alloc(); err != errNoFreeStreamIDs {
		t.Fatalf("Alloc after exhaustion: got %v, want errNoFreeStreamIDs", err)
	}
}
