// Package exprcore is the embeddable compilation core for an arithmetic
// expression language targeting a scoreboard/NBT command surface.
//
// A Session owns the allocators, the optimizer pipeline, and the
// configuration for one compilation: build expression trees with the
// constructors in this package (Score, Data, Int, Add, Sub, ...) and hand
// the root to Resolve to get back the command list the embedding layer
// should emit, in order. Call GenerateInit once at the end of the session
// to get the one-time initialization commands for every constant interned
// along the way.
//
// Session is not safe for concurrent use: the core is invoked synchronously
// by its embedding layer and never suspends (spec-equivalent: single
// resolve at a time, no internal concurrency).
package exprcore
