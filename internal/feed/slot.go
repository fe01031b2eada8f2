package feed

import (
	"sync/atomic"

	"github.com/san-kum/quantviz/internal/telemetry"
)

// Slot holds the most recent snapshot. Writers overwrite, the reader always
// sees the latest value; there is no queue.
//
// Store and Load are safe from any goroutine. A snapshot overwritten before
// anyone loaded it counts as a drop.
type Slot struct {
	cur   atomic.Pointer[entry]
	drops atomic.Uint64
}

// entry is immutable once published; a read is recorded by swapping in a
// copy with read set, so the version, the snapshot and the read mark always
// change together.
type entry struct {
	snap    *telemetry.Snapshot
	version uint64
	read    bool
}

func NewSlot() *Slot { return &Slot{} }

func (s *Slot) Store(snap *telemetry.Snapshot) {
	if snap == nil {
		return
	}
	for {
		old := s.cur.Load()
		next := &entry{snap: snap, version: 1}
		if old != nil {
			next.version = old.version + 1
		}
		if !s.cur.CompareAndSwap(old, next) {
			continue
		}
		if old != nil && !old.read {
			s.drops.Add(1)
		}
		return
	}
}

// Load returns the latest snapshot, or nil if none has been stored yet.
func (s *Slot) Load() *telemetry.Snapshot {
	for {
		e := s.cur.Load()
		if e == nil {
			return nil
		}
		if e.read {
			return e.snap
		}
		if s.cur.CompareAndSwap(e, &entry{snap: e.snap, version: e.version, read: true}) {
			return e.snap
		}
	}
}

// Version is the number of snapshots stored so far.
func (s *Slot) Version() uint64 {
	if e := s.cur.Load(); e != nil {
		return e.version
	}
	return 0
}

// Drops counts snapshots replaced before they were read.
func (s *Slot) Drops() uint64 { return s.drops.Load() }
