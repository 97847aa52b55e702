// Package alloc issues the two kinds of identifier an expression
// compilation needs: fresh per-resolve temp scores, and session-wide
// interned constant scores (spec §3 "Temp/Const Allocators").
package alloc

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/mcboltdev/exprcore/internal/ir"
)

// TempAllocator mints fresh TempScore holders within one resolve call.
// The counter is gapless and monotonically increasing starting at 0
// (spec §3 Invariants) and is reset at the start of every resolve.
type TempAllocator struct {
	objective string
	counter   int
}

func NewTempAllocator(objective string) *TempAllocator {
	return &TempAllocator{objective: objective}
}

// Next allocates a fresh TempScore.
func (a *TempAllocator) Next() ir.ScoreRef {
	s := ir.ScoreRef{
		Holder:    "$s" + strconv.Itoa(a.counter),
		Objective: a.objective,
		Kind:      ir.ScoreTemp,
		TempIndex: a.counter,
	}
	a.counter++
	return s
}

// Reset zeroes the counter. Called at the start of every resolve (spec §3
// Lifecycles: "TempScore counter resets at the start of each resolve call").
func (a *TempAllocator) Reset() {
	a.counter = 0
}

// Count returns how many temps have been allocated since the last Reset,
// i.e. the exclusive upper bound of the gapless [0, k) range.
func (a *TempAllocator) Count() int {
	return a.counter
}

// ConstAllocator interns one ScoreRef per distinct integer value used
// across all resolves of a compilation session (spec §3: "Constant holders
// are interned... exactly one ConstScore entry is recorded in the const
// set"). It never removes entries: the set is append-only for the session's
// lifetime, flushed once to an init command list at session end (spec §5).
type ConstAllocator struct {
	objective string
	values    map[int64]bool
	order     []int64 // insertion order, for deterministic init emission
}

func NewConstAllocator(objective string) *ConstAllocator {
	return &ConstAllocator{objective: objective, values: map[int64]bool{}}
}

// Create interns value and returns its ConstScore, minting a fresh entry
// only the first time value is seen.
func (a *ConstAllocator) Create(value int64) ir.ScoreRef {
	if !a.values[value] {
		a.values[value] = true
		a.order = append(a.order, value)
	}
	return ir.ScoreRef{
		Holder:     "$" + strconv.FormatInt(value, 10),
		Objective:  a.objective,
		Kind:       ir.ScoreConst,
		ConstValue: value,
	}
}

// Values returns every interned constant in insertion order.
func (a *ConstAllocator) Values() []int64 {
	out := make([]int64, len(a.order))
	copy(out, a.order)
	return out
}

// Has reports whether value has already been interned (spec §8 "Const
// interning": every ConstScore in the final IR must appear in the session
// const set).
func (a *ConstAllocator) Has(value int64) bool {
	return a.values[value]
}

// TempDataAllocator mints unique temp-data (storage, target, path)
// triples, the Go replacement for the Python identifier_generator in
// node.py's `temp_data()` (spec §4.5). Each call appends a fresh
// NamedKey segment under the configured temp storage, using a short
// uuid-derived suffix as the external "module-path provider for unique-id
// generation" collaborator named in spec §6.
type TempDataAllocator struct {
	storage string
}

func NewTempDataAllocator(storage string) *TempDataAllocator {
	return &TempDataAllocator{storage: storage}
}

// Next returns a fresh temp data reference anchored at the configured
// temp storage target.
func (a *TempDataAllocator) Next() ir.DataRef {
	id := uuid.NewString()
	key := "t_" + id[:8]
	d := ir.NewData(ir.DataStorage, a.storage)
	return d.Child(key)
}
