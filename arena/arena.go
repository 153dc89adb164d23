// Package arena stores the constants referenced by Constant instructions.
// Values are interned once and addressed by a stable integer handle for the
// lifetime of the arena.
package arena

import (
	"fmt"

	"github.com/chazu/skein/value"
)

// Handle addresses a slot in an Arena.
type Handle int

// slot is either absent or holds a value.
type slot struct {
	present bool
	v       value.Value
}

// Arena is a slot-reusing value store. It is not safe for concurrent use.
type Arena struct {
	slots []slot
	free  int // number of absent slots
}

// New creates an empty arena.
func New() *Arena {
	return &Arena{}
}

// Intern stores v and returns its handle. The lowest-index absent slot is
// reused when one exists; otherwise the arena grows by one slot.
func (a *Arena) Intern(v value.Value) Handle {
	if n, ok := a.findSpace(); ok {
		a.slots[n] = slot{present: true, v: v}
		a.free--
		return Handle(n)
	}
	a.slots = append(a.slots, slot{present: true, v: v})
	return Handle(len(a.slots) - 1)
}

// ValueRef returns the value stored at h. Dereferencing an absent slot is a
// usage error and panics.
func (a *Arena) ValueRef(h Handle) *value.Value {
	if h < 0 || int(h) >= len(a.slots) || !a.slots[h].present {
		panic(fmt.Sprintf("arena: use of absent slot %d", h))
	}
	return &a.slots[h].v
}

// Len returns the number of slots, present or absent.
func (a *Arena) Len() int {
	return len(a.slots)
}

// Values returns a copy of every slot indexed by handle. Absent slots are
// reported as the empty list.
func (a *Arena) Values() []value.Value {
	out := make([]value.Value, len(a.slots))
	for i, s := range a.slots {
		if s.present {
			out[i] = s.v
		} else {
			out[i] = value.Nil
		}
	}
	return out
}

// vacate marks h absent so a later Intern can reuse it.
func (a *Arena) vacate(h Handle) {
	if a.slots[h].present {
		a.slots[h] = slot{}
		a.free++
	}
}

// findSpace returns the first absent slot, if any.
func (a *Arena) findSpace() (int, bool) {
	if a.free == 0 {
		return 0, false
	}
	for i, s := range a.slots {
		if !s.present {
			return i, true
		}
	}
	return 0, false
}
