// Package optimize rewrites the linear IR the unroller produces into a
// shorter-or-equal, observably-equivalent sequence (spec §4.3 "Optimizer").
// Rules run once each, in a fixed registration order, each scanning the op
// list with a bounded lookahead window — this mirrors the teacher
// compiler's optimizer_peephole.go instruction-list-scanning shape, applied
// to this core's own three-address ops instead of bytecode.
package optimize

import (
	"github.com/mcboltdev/exprcore/internal/alloc"
	"github.com/mcboltdev/exprcore/internal/ir"
)

// InternalInvariantError reports IR a rule or the debug revalidator found
// malformed: a reference to an undefined temp, or an op missing a required
// operand (spec §7 "InternalInvariant" — "programmer bugs... MUST be
// detectable by running in a debug mode").
type InternalInvariantError struct {
	Rule   string
	Reason string
}

func (e *InternalInvariantError) Error() string {
	if e.Rule == "" {
		return "internal invariant violated: " + e.Reason
	}
	return "internal invariant violated after rule " + e.Rule + ": " + e.Reason
}

// Rule rewrites one op list. Every rule is total (a no-op is a valid
// rewrite) and must not reorder across a Set whose destination is read
// later in the list (spec §4.3).
type Rule func(ops []ir.Op, ctx *Context) []ir.Op

// Context carries the allocators a handful of rules need to mint fresh
// temps: data_insert_score allocates scratch storage locations and
// literal_to_constant_replacement interns constants (spec §4.3 rules 1,
// 13). Temp is carried for convert_data_arithmetic, which is a no-op in
// this IR and allocates nothing.
type Context struct {
	Temp     *alloc.TempAllocator
	TempData *alloc.TempDataAllocator
	Const    *alloc.ConstAllocator
}

// Optimizer holds the ordered rule pipeline. Rule order is part of the
// specification, not an accident of registration (spec §9: "Rule registry
// via decorators... replace with an explicit list... rule order is part of
// the specification, not of registration side effects").
type Optimizer struct {
	rules []namedRule
	Debug bool
}

type namedRule struct {
	name string
	fn   Rule
}

// New builds an Optimizer with the 13 rules registered in their
// specification order.
func New() *Optimizer {
	return &Optimizer{rules: []namedRule{
		{"data_insert_score", dataInsertScore},
		{"convert_data_arithmetic", convertDataArithmetic},
		{"data_set_scaling", dataSetScaling},
		{"data_get_scaling", dataGetScaling},
		{"multiply_divide_by_fraction", multiplyDivideByFraction},
		{"noncommutative_set_collapsing", noncommutativeSetCollapsing},
		{"commutative_set_collapsing", commutativeSetCollapsing},
		{"output_score_replacement", outputScoreReplacement},
		{"multiply_divide_by_one_removal", multiplyDivideByOneRemoval},
		{"add_subtract_by_zero_removal", addSubtractByZeroRemoval},
		{"set_to_self_removal", setToSelfRemoval},
		{"set_and_get_cleanup", setAndGetCleanup},
		{"literal_to_constant_replacement", literalToConstantReplacement},
	}}
}

// Optimize threads ops through every rule once, in registration order. In
// Debug mode it revalidates IR well-formedness between every rule so a
// rule bug surfaces at the rule boundary that introduced it rather than
// downstream in the serializer (spec §7).
func (o *Optimizer) Optimize(ops []ir.Op, ctx *Context) ([]ir.Op, error) {
	if o.Debug {
		if err := validate(ops); err != nil {
			return nil, &InternalInvariantError{Reason: "input to optimize is already malformed: " + err.Error()}
		}
	}
	for _, r := range o.rules {
		ops = r.fn(ops, ctx)
		if o.Debug {
			if err := validate(ops); err != nil {
				return nil, &InternalInvariantError{Rule: r.name, Reason: err.Error()}
			}
		}
	}
	return ops, nil
}

// validate checks the well-formedness invariants spec §3/§7 call out:
// every TempScore referenced by an op must have been produced (assigned to)
// by an earlier op in the list, and no op may be missing a required operand.
func validate(ops []ir.Op) error {
	defined := map[string]bool{}
	for _, op := range ops {
		for _, src := range readOperands(op) {
			if sr, ok := src.(ir.ScoreRef); ok && sr.Kind == ir.ScoreTemp {
				if !defined[sr.Holder] {
					return &InternalInvariantError{Reason: "op references undefined temp " + sr.Holder}
				}
			}
		}
		if d, ok := writeDestination(op); ok {
			if sr, ok := d.(ir.ScoreRef); ok && sr.Kind == ir.ScoreTemp {
				defined[sr.Holder] = true
			}
		}
	}
	return nil
}
