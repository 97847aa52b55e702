package unroll

import (
	"github.com/mcboltdev/exprcore/internal/alloc"
	"github.com/mcboltdev/exprcore/internal/ir"
)

// Unroller carries the per-resolve temp allocator and the session-wide
// const/temp-data allocators needed while lowering one expression tree
// (spec §3 "Temp/Const Allocators", §4.1 "Unroller"). A fresh Unroller is
// not required per resolve: Unroll resets Temp at the start of each call
// instead, since the const and temp-data allocators must persist across the
// whole session.
type Unroller struct {
	Temp     *alloc.TempAllocator
	Const    *alloc.ConstAllocator
	TempData *alloc.TempDataAllocator
}

func New(temp *alloc.TempAllocator, constAlloc *alloc.ConstAllocator, tempData *alloc.TempDataAllocator) *Unroller {
	return &Unroller{Temp: temp, Const: constAlloc, TempData: tempData}
}

// Unroll lowers the root of an expression tree, resetting the temp counter
// first (spec §3 Lifecycles: "TempScore counter resets at the start of each
// resolve call").
func (u *Unroller) Unroll(e Expr) ([]ir.Op, ir.Operand, error) {
	u.Temp.Reset()
	return e.unroll(u)
}

// ensureScoreOperand makes operand usable as a ScoreOp operand: ScoreRefs
// and Literals pass through unchanged, but a DataRef cannot appear as a
// ScoreOp src (spec §3 invariant: "Add/Sub/Mul/Div/Mod/Min/Max operate over
// score-refs only"). In that case it materializes the data value into a
// fresh temp score via a DataGetOp rather than a generic Set — this is the
// one place a bare "Set(t, <data>)" from the distilled spec's wording
// actually has to become a DataGet, so that optimizer rule 8
// (output_score_replacement) has the DataGet;Set(dst,t) shape it expects
// to collapse.
func ensureScoreOperand(u *Unroller, ops []ir.Op, operand ir.Operand) ([]ir.Op, ir.Operand) {
	data, ok := operand.(ir.DataRef)
	if !ok {
		return ops, operand
	}
	t := u.Temp.Next()
	scale := data.Scale
	if scale == 0 {
		scale = 1
	}
	ops = append(ops, ir.DataGetOp{Dst: t, Src: data, Scale: scale})
	return ops, t
}

// materializeToTemp forces operand into a fresh TempScore unless it already
// is one (spec §4.1 rule 2: "If ta is already a TempScore, use it as
// destination; otherwise allocate fresh t = TempScore() and emit Set(t,
// ta)"). A plain (non-temp) ScoreRef still gets copied into a fresh temp,
// since the node needs a destination it owns and may freely overwrite —
// it must never clobber a caller-visible score in place.
func materializeToTemp(u *Unroller, ops []ir.Op, operand ir.Operand) ([]ir.Op, ir.ScoreRef) {
	ops, operand = ensureScoreOperand(u, ops, operand)
	if sr, ok := isOwnedTemp(operand); ok {
		return ops, sr
	}
	t := u.Temp.Next()
	ops = append(ops, ir.ScoreOp{OpK: ir.OpSet, Dst: t, Src: operand})
	return ops, t
}

// isOwnedTemp reports whether operand is a TempScore that this node's
// subtree just allocated and may freely overwrite as a destination, as
// opposed to a named score the caller passed in by reference.
func isOwnedTemp(operand ir.Operand) (ir.ScoreRef, bool) {
	sr, ok := operand.(ir.ScoreRef)
	if !ok || sr.Kind != ir.ScoreTemp {
		return ir.ScoreRef{}, false
	}
	return sr, true
}

// BinaryExpr is a binary score arithmetic node: Add, Sub, Mul, Div, Mod,
// Min, Max (spec §3 "Operation"/§4.1).
type BinaryExpr struct {
	OpK         ir.OpKind
	Former      Expr
	Latter      Expr
	commutative bool // Add/Multiply only — operand-swap tie-break eligible
}

// binary is the shared smart constructor backing Add/Sub/Mul/Div/Mod. Only
// Add and Multiply override operand placement to prefer an existing
// Operation on the left (spec §9 Open Question, resolved against the
// "bolt_expressions" revision where Min/Max do not participate in the
// swap): given one Operation operand and one leaf operand, put the
// Operation first so its result temp can be reused as the destination
// instead of allocating a second temp purely to hold the leaf.
func binary(opK ir.OpKind, commutative bool, a, b any) *BinaryExpr {
	former, latter := coerce(a), coerce(b)
	if commutative && isLeaf(former) && !isLeaf(latter) {
		former, latter = latter, former
	}
	return &BinaryExpr{OpK: opK, Former: former, Latter: latter, commutative: commutative}
}

func Add(a, b any) *BinaryExpr { return binary(ir.OpAdd, true, a, b) }
func Sub(a, b any) *BinaryExpr { return binary(ir.OpSub, false, a, b) }
func Mul(a, b any) *BinaryExpr { return binary(ir.OpMul, true, a, b) }
func Div(a, b any) *BinaryExpr { return binary(ir.OpDiv, false, a, b) }
func Mod(a, b any) *BinaryExpr { return binary(ir.OpMod, false, a, b) }

// Min and Max fold a variadic argument list the way wrapped_min/wrapped_max
// in operations.py do: pull off the first argument and recurse, building a
// right-nested chain of pairwise Min/Max nodes (Min(a, b, c) becomes
// Min(a, Min(b, c)), not Min(Min(a, b), c)). A run of purely-literal
// trailing arguments collapses host-side into one literal before any IR
// node is built at all, matching the Python fallback "if no argument is an
// ExpressionNode, call the builtin min/max directly".
func Min(args ...any) Expr { return variadicFold(ir.OpMin, args) }
func Max(args ...any) Expr { return variadicFold(ir.OpMax, args) }

func variadicFold(opK ir.OpKind, args []any) Expr {
	if len(args) == 0 {
		panic("exprcore: min/max requires at least one argument")
	}
	if len(args) == 1 {
		return coerce(args[0])
	}

	if folded, ok := foldLiteralTail(opK, args); ok {
		return folded
	}

	head := coerce(args[0])
	rest := variadicFold(opK, args[1:])
	// Min/Max never participate in the Add/Multiply operand-swap tie-break
	// (spec §9 resolution): pass commutative=false here regardless of opK.
	return &BinaryExpr{OpK: opK, Former: head, Latter: rest}
}

// foldLiteralTail reduces args host-side to one literal when every element
// is a bare Go number (not yet coerced to LitExpr), mirroring
// wrapped_min/wrapped_max's early return when nothing remaining is an
// ExpressionNode. It does not fire if any element is an Expr, since that
// forces at least one real IR comparison node; variadicFold calls it on
// each suffix of the argument list, which is how a trailing all-literal run
// still collapses.
func foldLiteralTail(opK ir.OpKind, args []any) (Expr, bool) {
	vals := make([]float64, len(args))
	allInt := true
	for i, a := range args {
		switch v := a.(type) {
		case int:
			vals[i] = float64(v)
		case int64:
			vals[i] = float64(v)
		case float32:
			vals[i] = float64(v)
			allInt = false
		case float64:
			vals[i] = v
			allInt = false
		default:
			return nil, false
		}
	}
	best := vals[0]
	for _, v := range vals[1:] {
		if (opK == ir.OpMin) == (v < best) {
			best = v
		}
	}
	if allInt {
		return Int(int64(best)), true
	}
	return Float(best), true
}

func (b *BinaryExpr) unroll(u *Unroller) ([]ir.Op, ir.Operand, error) {
	ops, former, err := b.Former.unroll(u)
	if err != nil {
		return nil, nil, err
	}
	latterOps, latter, err := b.Latter.unroll(u)
	if err != nil {
		return nil, nil, err
	}
	ops = append(ops, latterOps...)

	ops, latter = ensureScoreOperand(u, ops, latter)

	var dst ir.ScoreRef
	if sr, ok := isOwnedTemp(former); ok {
		dst = sr
	} else {
		ops, dst = materializeToTemp(u, ops, former)
	}

	ops = append(ops, ir.ScoreOp{OpK: b.OpK, Dst: dst, Src: latter})
	return ops, dst, nil
}

// SetExpr assigns a value to a score or data destination (spec §3 Set).
type SetExpr struct {
	Dst   Expr // *ScoreExpr or *DataExpr
	Value Expr
}

func Set(dst, value any) *SetExpr {
	return &SetExpr{Dst: coerce(dst), Value: coerce(value)}
}

func (s *SetExpr) unroll(u *Unroller) ([]ir.Op, ir.Operand, error) {
	ops, value, err := s.Value.unroll(u)
	if err != nil {
		return nil, nil, err
	}

	switch dst := s.Dst.(type) {
	case *ScoreExpr:
		ops, value = ensureScoreOperand(u, ops, value)
		ops = append(ops, ir.ScoreOp{OpK: ir.OpSet, Dst: dst.Ref, Src: value})
		return ops, dst.Ref, nil
	case *DataExpr:
		ops = append(ops, ir.DataSetOp{Dst: dst.Ref, Src: value})
		return ops, dst.Ref, nil
	default:
		return nil, nil, &ir.TypeMismatchError{Op: "set", Operand: nil, Reason: "destination must be a score or data reference"}
	}
}

// CompareExpr is a score comparison, legal only as an IfExpr guard (spec
// §3: CompareOp is "used only as If's guard", not a general boolean value).
type CompareExpr struct {
	CmpK   ir.CmpKind
	Left   Expr
	Right  Expr
}

func cmp(k ir.CmpKind, a, b any) *CompareExpr {
	return &CompareExpr{CmpK: k, Left: coerce(a), Right: coerce(b)}
}

func LessThan(a, b any) *CompareExpr     { return cmp(ir.CmpLT, a, b) }
func GreaterThan(a, b any) *CompareExpr  { return cmp(ir.CmpGT, a, b) }
func LessEqual(a, b any) *CompareExpr    { return cmp(ir.CmpLE, a, b) }
func GreaterEqual(a, b any) *CompareExpr { return cmp(ir.CmpGE, a, b) }
func Equal(a, b any) *CompareExpr        { return cmp(ir.CmpEQ, a, b) }

// NotEqual is deliberately not provided: Minecraft's `execute if score`
// grammar has no native `!=` comparison, so there is no single CompareOp
// this architecture could lower it to without adding a negation flag to
// IfOp — the same reason the original Python source leaves it unimplemented.

// unrollGuard lowers the two sides of a comparison to score operands,
// returning the ops needed and the resulting ir.CompareOp.
func (c *CompareExpr) unrollGuard(u *Unroller) ([]ir.Op, ir.CompareOp, error) {
	ops, left, err := c.Left.unroll(u)
	if err != nil {
		return nil, ir.CompareOp{}, err
	}
	rightOps, right, err := c.Right.unroll(u)
	if err != nil {
		return nil, ir.CompareOp{}, err
	}
	ops = append(ops, rightOps...)
	ops, left = ensureScoreOperand(u, ops, left)
	ops, right = ensureScoreOperand(u, ops, right)
	return ops, ir.CompareOp{CmpK: c.CmpK, Left: left, Right: right}, nil
}

// CompareExpr.unroll is only meaningful as a value in degenerate trees; in
// practice it is only ever consumed via unrollGuard from IfExpr/AbsExpr. It
// still implements Expr so it type-checks as one, materializing its guard's
// left operand as a placeholder value (comparisons have no score value of
// their own in this language — spec §3 Non-goals: no boolean value type).
func (c *CompareExpr) unroll(u *Unroller) ([]ir.Op, ir.Operand, error) {
	ops, guard, err := c.unrollGuard(u)
	if err != nil {
		return nil, nil, err
	}
	return ops, guard.Left, nil
}

// IfExpr executes body only when cond holds (spec §3 "Branch-guarded
// wrappers"). The body's own destination is reused as this node's result.
type IfExpr struct {
	Cond *CompareExpr
	Body *SetExpr
}

func If(cond *CompareExpr, body *SetExpr) *IfExpr {
	return &IfExpr{Cond: cond, Body: body}
}

func (e *IfExpr) unroll(u *Unroller) ([]ir.Op, ir.Operand, error) {
	ops, guard, err := e.Cond.unrollGuard(u)
	if err != nil {
		return nil, nil, err
	}
	bodyOps, result, err := e.Body.unroll(u)
	if err != nil {
		return nil, nil, err
	}
	if len(bodyOps) != 1 {
		return nil, nil, &ir.TypeMismatchError{Op: "if", Operand: nil, Reason: "branch-guarded body must lower to exactly one op"}
	}
	ops = append(ops, ir.IfOp{Cond: guard, Body: bodyOps[0]})
	return ops, result, nil
}

// AbsExpr computes the absolute value of its operand, desugared at unroll
// time (not at optimize time) into If(x < 0, Set(x, x * -1)) per spec
// §4.1's note that Abs has no dedicated IR op and is expressed purely in
// terms of If/Set/Mul.
type AbsExpr struct {
	Value Expr
}

func Abs(v any) *AbsExpr {
	return &AbsExpr{Value: coerce(v)}
}

func (a *AbsExpr) unroll(u *Unroller) ([]ir.Op, ir.Operand, error) {
	ops, value, err := a.Value.unroll(u)
	if err != nil {
		return nil, nil, err
	}
	ops, dst := materializeToTemp(u, ops, value)

	guard := ir.CompareOp{CmpK: ir.CmpLT, Left: dst, Right: ir.IntLiteral(0)}
	body := ir.ScoreOp{OpK: ir.OpMul, Dst: dst, Src: ir.IntLiteral(-1)}
	ops = append(ops, ir.IfOp{Cond: guard, Body: body})
	return ops, dst, nil
}

// InsertExpr inserts a value into a list-shaped data location (spec §3
// DataInsert family; spec §Supplemented features: Insert/Append/Prepend).
type InsertExpr struct {
	Dst   *DataExpr
	Mode  ir.InsertMode
	Index int
	Value Expr
}

func Insert(dst *DataExpr, index int, value any) *InsertExpr {
	return &InsertExpr{Dst: dst, Mode: ir.InsertAt, Index: index, Value: coerce(value)}
}

func Append(dst *DataExpr, value any) *InsertExpr {
	return &InsertExpr{Dst: dst, Mode: ir.InsertAppend, Value: coerce(value)}
}

func Prepend(dst *DataExpr, value any) *InsertExpr {
	return &InsertExpr{Dst: dst, Mode: ir.InsertPrepend, Value: coerce(value)}
}

func (e *InsertExpr) unroll(u *Unroller) ([]ir.Op, ir.Operand, error) {
	ops, value, err := e.Value.unroll(u)
	if err != nil {
		return nil, nil, err
	}
	ops = append(ops, ir.DataInsertOp{Dst: e.Dst.Ref, Mode: e.Mode, Index: e.Index, Src: value})
	return ops, e.Dst.Ref, nil
}

// MergeExpr merges a compound value into a data location, either scoped to
// a path (Merge) or replacing the whole target (MergeRoot) (spec
// §Supplemented features: "MergeRoot vs Merge").
type MergeExpr struct {
	Dst   *DataExpr
	Value Expr
	Root  bool
}

func Merge(dst *DataExpr, value any) *MergeExpr {
	return &MergeExpr{Dst: dst, Value: coerce(value)}
}

func MergeRoot(dst *DataExpr, value any) *MergeExpr {
	return &MergeExpr{Dst: dst, Value: coerce(value), Root: true}
}

func (e *MergeExpr) unroll(u *Unroller) ([]ir.Op, ir.Operand, error) {
	ops, value, err := e.Value.unroll(u)
	if err != nil {
		return nil, nil, err
	}
	ops = append(ops, ir.DataMergeOp{Dst: e.Dst.Ref, Src: value, Root: e.Root})
	return ops, e.Dst.Ref, nil
}

// RemoveExpr deletes a data location outright (spec §3 DataRemove).
type RemoveExpr struct {
	Target *DataExpr
}

func Remove(target *DataExpr) *RemoveExpr {
	return &RemoveExpr{Target: target}
}

func (e *RemoveExpr) unroll(*Unroller) ([]ir.Op, ir.Operand, error) {
	return []ir.Op{ir.DataRemoveOp{Target: e.Target.Ref}}, e.Target.Ref, nil
}
