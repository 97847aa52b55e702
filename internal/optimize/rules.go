package optimize

import "github.com/mcboltdev/exprcore/internal/ir"

// dataInsertScore is rule 1: a DataInsert whose source is a score cannot be
// encoded directly (the VM's insert command has no score-operand form), so
// it is split into a DataSet into a fresh temp-data location followed by a
// DataInsert reading that location (spec §4.3 rule 1).
func dataInsertScore(ops []ir.Op, ctx *Context) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	for _, op := range ops {
		ins, ok := op.(ir.DataInsertOp)
		if !ok {
			out = append(out, op)
			continue
		}
		if _, isScore := ins.Src.(ir.ScoreRef); !isScore {
			out = append(out, op)
			continue
		}
		tempData := ctx.TempData.Next()
		out = append(out, ir.DataSetOp{Dst: tempData, Src: ins.Src})
		ins.Src = tempData
		out = append(out, ins)
	}
	return out
}

// convertDataArithmetic is rule 2: an arithmetic op whose destination is a
// DataRef is illegal (arithmetic only operates over score-refs, spec §3),
// so it is rewritten into read-compute-writeback: DataGet into a fresh
// temp, the same op against that temp, DataSet the temp back out,
// preserving dst's nbt_type on the write-back (spec §4.3 rule 2).
// ScoreOp.Dst is statically typed ir.ScoreRef, never ir.DataRef: the
// unroller's ensureScoreOperand helper already rewrites any DataRef
// arithmetic operand into a DataGet before a ScoreOp can be built (see
// internal/unroll), so the "dst is a DataRef" shape this rule targets
// cannot arise in this IR and the rule is a structural no-op here. It
// stays registered, in its spec'd position, as a no-op pass rather than
// being dropped, since a future relaxation of ensureScoreOperand would
// need exactly this rewrite back.
func convertDataArithmetic(ops []ir.Op, ctx *Context) []ir.Op {
	return ops
}

// dataSetScaling is rule 3: fuse `DataGet(t, src, s1); DataSet(dst, t)`
// into `DataSet(dst, src)` with combined scale `s1*s2` where dst.Scale is
// s2, provided t is a TempScore read nowhere else (spec §4.3 rule 3).
func dataSetScaling(ops []ir.Op, ctx *Context) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	i := 0
	for i < len(ops) {
		if fused, consumed, ok := foldDataGetIntoSet(ops, i); ok {
			out = append(out, fused)
			i += consumed
			continue
		}
		if fused, consumed, ok := foldScaledMulIntoSet(ops, i); ok {
			out = append(out, fused)
			i += consumed
			continue
		}
		out = append(out, ops[i])
		i++
	}
	return out
}

// foldDataGetIntoSet matches `DataGet(t, src, s1); DataSet(dst, t)` where t
// is read nowhere else, folding to `DataSet(dst, src)` with dst's scale set
// to s1*s2 (spec §4.3 rule 3, narrowly as written).
func foldDataGetIntoSet(ops []ir.Op, i int) (ir.Op, int, bool) {
	get, ok := ops[i].(ir.DataGetOp)
	if !ok || i+1 >= len(ops) {
		return nil, 0, false
	}
	set, ok := ops[i+1].(ir.DataSetOp)
	if !ok {
		return nil, 0, false
	}
	srcTemp, isTemp := set.Src.(ir.ScoreRef)
	if !isTemp || get.Dst.Kind != ir.ScoreTemp || !srcTemp.Equal(get.Dst) || scoreUseCount(ops, i+2, get.Dst) != 0 {
		return nil, 0, false
	}
	fused := ir.DataSetOp{Dst: set.Dst.With(get.Scale*set.Dst.Scale, set.Dst.NbtType), Src: get.Src}
	return fused, 2, true
}

// foldScaledMulIntoSet matches `Set(t, score); Mul(t, k); DataSet(dst, t)`
// with t read nowhere else, folding the constant multiply into dst's scale
// field rather than performing it in score-space — the same "use the VM's
// native scale field" rationale rule 3 names, applied to the Set;Mul;
// DataSet window a plain score*k assignment into data actually unrolls to.
func foldScaledMulIntoSet(ops []ir.Op, i int) (ir.Op, int, bool) {
	if i+2 >= len(ops) {
		return nil, 0, false
	}
	set1, ok := asScoreOp(ops[i])
	if !ok || set1.OpK != ir.OpSet {
		return nil, 0, false
	}
	t, isTemp := isTempScore(set1.Dst)
	if !isTemp {
		return nil, 0, false
	}
	srcScore, isScore := set1.Src.(ir.ScoreRef)
	if !isScore {
		return nil, 0, false
	}
	mul, ok := asScoreOp(ops[i+1])
	if !ok || mul.OpK != ir.OpMul || !mul.Dst.Equal(t) {
		return nil, 0, false
	}
	k, isInt := asIntLiteral(mul.Src)
	if !isInt || k == 0 {
		return nil, 0, false
	}
	set2, ok := ops[i+2].(ir.DataSetOp)
	if !ok {
		return nil, 0, false
	}
	srcTemp, isTemp2 := set2.Src.(ir.ScoreRef)
	if !isTemp2 || !srcTemp.Equal(t) || scoreUseCount(ops, i+3, t) != 0 {
		return nil, 0, false
	}
	fused := ir.DataSetOp{Dst: set2.Dst.With(float64(k)*set2.Dst.Scale, set2.Dst.NbtType), Src: srcScore}
	return fused, 3, true
}

// dataGetScaling is rule 4: the symmetric fusion of rule 3, folding
// `DataSet(t_data, score); DataGet(s, t_data, scale)` into a single scaled
// score→data path without the intermediate temp-data round trip (spec §4.3
// rule 4).
func dataGetScaling(ops []ir.Op, ctx *Context) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	i := 0
	for i < len(ops) {
		set, ok1 := ops[i].(ir.DataSetOp)
		var get ir.DataGetOp
		ok2 := false
		if i+1 < len(ops) {
			get, ok2 = ops[i+1].(ir.DataGetOp)
		}
		if ok1 {
			if srcScore, isScore := set.Src.(ir.ScoreRef); isScore && ok2 {
				if get.Src.Equal(set.Dst) {
					fused := ir.ScoreOp{OpK: ir.OpSet, Dst: get.Dst, Src: srcScore}
					out = append(out, fused)
					i += 2
					continue
				}
			}
		}
		out = append(out, ops[i])
		i++
	}
	return out
}

// multiplyDivideByFraction is rule 5: when a Multiply/Divide's latter forms
// a const rational p/q next to a DataSet target, rewrite to a scaled
// DataGet/DataSet pair exploiting the VM's native scale field instead of
// doing the division in score-space (spec §4.3 rule 5). Only fires on the
// narrow const/const/DataSet-adjacent shape the rule names; anything else
// is left untouched per the "no local recovery... leaves the op untouched"
// policy (spec §7).
func multiplyDivideByFraction(ops []ir.Op, ctx *Context) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	i := 0
	for i < len(ops) {
		op, ok := asScoreOp(ops[i])
		if !ok || (op.OpK != ir.OpMul && op.OpK != ir.OpDiv) {
			out = append(out, ops[i])
			i++
			continue
		}
		q, qIsConst := asConstScore(op.Src)
		if !qIsConst || q == 0 {
			out = append(out, ops[i])
			i++
			continue
		}
		if i+1 >= len(ops) {
			out = append(out, ops[i])
			i++
			continue
		}
		set, isSet := ops[i+1].(ir.DataSetOp)
		if !isSet {
			out = append(out, ops[i])
			i++
			continue
		}
		srcScore, isScore := set.Src.(ir.ScoreRef)
		if !isScore || !srcScore.Equal(op.Dst) {
			out = append(out, ops[i])
			i++
			continue
		}
		scale := float64(q)
		if op.OpK == ir.OpMul {
			scale = 1.0 / float64(q)
		}
		out = append(out, ir.DataGetOp{Dst: op.Dst, Src: set.Dst, Scale: scale})
		i += 2
	}
	return out
}

// noncommutativeSetCollapsing is rule 6: `Set(t1, src); op(t1, z); Set(dst,
// t1)` with t1 used exactly twice (by op and by the trailing Set) collapses
// to `Set(dst, src); op(dst, z)` for op in {Sub, Div, Mod} — non-commutative
// ops cannot additionally swap operand order the way rule 7 does for their
// commutative counterparts (spec §4.3 rule 6).
func noncommutativeSetCollapsing(ops []ir.Op, ctx *Context) []ir.Op {
	return collapseSetThenOp(ops, func(k ir.OpKind) bool { return k.IsNoncommutative() })
}

// commutativeSetCollapsing is rule 7: the same collapse as rule 6 for
// {Add, Mul, Min, Max}, additionally tolerating op's operands in either
// order since all four are commutative (spec §4.3 rule 7).
func commutativeSetCollapsing(ops []ir.Op, ctx *Context) []ir.Op {
	return collapseSetThenOp(ops, func(k ir.OpKind) bool { return k.IsCommutative() })
}

// collapseSetThenOp implements the shared shape of rules 6 and 7: find
// `Set(t1, src); op(t1, z); Set(dst, t1)` where t1 is a TempScore touched
// nowhere outside this three-op window (its two uses are op's implicit
// accumulator read and the trailing Set's explicit read), and fold away the
// temp entirely. When z is dst itself, writing dst first would clobber the
// value op reads: a commutative op then folds to the swapped `op(dst, src)`,
// and a non-commutative one is left as it is.
func collapseSetThenOp(ops []ir.Op, eligible func(ir.OpKind) bool) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	i := 0
	for i < len(ops) {
		set1, ok1 := asScoreOp(ops[i])
		if !ok1 || set1.OpK != ir.OpSet {
			out = append(out, ops[i])
			i++
			continue
		}
		t1, isTemp := isTempScore(set1.Dst)
		if !isTemp || i+2 >= len(ops) {
			out = append(out, ops[i])
			i++
			continue
		}
		mid, ok2 := asScoreOp(ops[i+1])
		if !ok2 || !eligible(mid.OpK) || !mid.Dst.Equal(t1) {
			out = append(out, ops[i])
			i++
			continue
		}
		set2, ok3 := asScoreOp(ops[i+2])
		if !ok3 || set2.OpK != ir.OpSet {
			out = append(out, ops[i])
			i++
			continue
		}
		srcTemp, isSrcTemp := set2.Src.(ir.ScoreRef)
		if !isSrcTemp || !srcTemp.Equal(t1) {
			out = append(out, ops[i])
			i++
			continue
		}
		if scoreUseCount(ops, i+3, t1) != 0 {
			out = append(out, ops[i])
			i++
			continue
		}
		if z, isScore := mid.Src.(ir.ScoreRef); isScore && z.Equal(set2.Dst) {
			if !mid.OpK.IsCommutative() {
				out = append(out, ops[i])
				i++
				continue
			}
			out = append(out, ir.ScoreOp{OpK: mid.OpK, Dst: set2.Dst, Src: set1.Src})
			i += 3
			continue
		}
		out = append(out, ir.ScoreOp{OpK: ir.OpSet, Dst: set2.Dst, Src: set1.Src})
		out = append(out, ir.ScoreOp{OpK: mid.OpK, Dst: set2.Dst, Src: mid.Src})
		i += 3
	}
	return out
}

// outputScoreReplacement is rule 8: when the final op of a run is
// `Set(dst, t_last)` aliasing the immediately-preceding op's destination,
// propagate dst backward into that op and drop the trailing Set (spec §4.3
// rule 8). This is what collapses the DataGet(t,...); Set(dst,t) shape the
// unroller's ensureScoreOperand helper produces whenever a DataRef is used
// as an arithmetic operand. Only a Set or DataGet at ops[i] is eligible:
// an arithmetic op reads its destination's earlier value, so retargeting it
// alone would compute from dst instead of t_last, and a conditional write
// (IfOp) is not an unconditional preceding writer, even though
// writeDestination can see through to its body's destination for other
// purposes. A run of several ops writing t_last is not propagated through;
// only the single directly preceding writer is considered.
func outputScoreReplacement(ops []ir.Op, ctx *Context) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	i := 0
	for i < len(ops) {
		if i+1 < len(ops) {
			set, isSet := asScoreOp(ops[i+1])
			if isSet && set.OpK == ir.OpSet {
				if srcTemp, isTemp := set.Src.(ir.ScoreRef); isTemp && srcTemp.Kind == ir.ScoreTemp {
					if d, ok := directWriteDestination(ops[i]); ok {
						if sr, isScore := d.(ir.ScoreRef); isScore && sr.Equal(srcTemp) && scoreUseCount(ops, i+2, srcTemp) == 0 {
							replaced := replaceDestination(ops[i], set.Dst)
							out = append(out, replaced)
							i += 2
							continue
						}
					}
				}
			}
		}
		out = append(out, ops[i])
		i++
	}
	return out
}

// directWriteDestination reports the write-destination of op when op is
// itself a Set ScoreOp or a DataGetOp, the two writers that do not read
// their destination; unlike writeDestination it does not recurse into
// IfOp.Body — a conditional write is never eligible for
// output_score_replacement (rule 8).
func directWriteDestination(op ir.Op) (ir.Operand, bool) {
	switch o := op.(type) {
	case ir.ScoreOp:
		if o.OpK != ir.OpSet {
			return nil, false
		}
		return o.Dst, true
	case ir.DataGetOp:
		return o.Dst, true
	default:
		return nil, false
	}
}

// replaceDestination returns a copy of op with its write-destination
// changed to dst, used only by output_score_replacement where dst is
// always a ScoreRef (the op being propagated into always writes a score:
// a Set ScoreOp or a DataGetOp, as directWriteDestination admits).
func replaceDestination(op ir.Op, dst ir.ScoreRef) ir.Op {
	switch o := op.(type) {
	case ir.ScoreOp:
		o.Dst = dst
		return o
	case ir.DataGetOp:
		o.Dst = dst
		return o
	default:
		return op
	}
}

// multiplyDivideByOneRemoval is rule 9: drop Multiply(x,1) and Divide(x,1)
// — multiplying or dividing by the multiplicative identity has no effect.
// Multiply(x,-1) is a negation and is explicitly preserved (spec §4.3 rule 9).
func multiplyDivideByOneRemoval(ops []ir.Op, ctx *Context) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	for _, op := range ops {
		if sop, ok := asScoreOp(op); ok && (sop.OpK == ir.OpMul || sop.OpK == ir.OpDiv) {
			if v, isInt := asIntLiteral(sop.Src); isInt && v == 1 {
				continue
			}
		}
		out = append(out, op)
	}
	return out
}

// addSubtractByZeroRemoval is rule 10: drop Add(x,0) and Subtract(x,0)
// (spec §4.3 rule 10).
func addSubtractByZeroRemoval(ops []ir.Op, ctx *Context) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	for _, op := range ops {
		if sop, ok := asScoreOp(op); ok && (sop.OpK == ir.OpAdd || sop.OpK == ir.OpSub) {
			if v, isInt := asIntLiteral(sop.Src); isInt && v == 0 {
				continue
			}
		}
		out = append(out, op)
	}
	return out
}

// setToSelfRemoval is rule 11: drop Set(x, x) once both operands are
// structurally equal (spec §4.3 rule 11) — this is what turns the
// penultimate `Set(@s obj, @s obj)` left over after commutative_set_collapsing
// folds a trailing temp-to-score copy into nothing.
func setToSelfRemoval(ops []ir.Op, ctx *Context) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	for _, op := range ops {
		if sop, ok := asScoreOp(op); ok && sop.OpK == ir.OpSet {
			if srcScore, isScore := sop.Src.(ir.ScoreRef); isScore && srcScore.Equal(sop.Dst) {
				continue
			}
		}
		out = append(out, op)
	}
	return out
}

// setAndGetCleanup is rule 12: drop a dead Set(t, _) whose destination t is
// never read again anywhere later in the sequence (spec §4.3 rule 12).
// Non-temp destinations are never dropped: a plain score Set has an
// observable effect (the embedding layer's own state) even with no further
// reader inside this resolve.
func setAndGetCleanup(ops []ir.Op, ctx *Context) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	for i, op := range ops {
		sop, ok := asScoreOp(op)
		if ok && sop.OpK == ir.OpSet {
			if t, isTemp := isTempScore(sop.Dst); isTemp {
				if scoreUseCount(ops, i+1, t) == 0 {
					continue
				}
			}
		}
		out = append(out, op)
	}
	return out
}

// literalToConstantReplacement is rule 13: for every remaining op whose
// latter is an integer literal the command grammar cannot encode directly
// — anything other than Set/Add/Sub, which have dedicated literal command
// forms (spec §4.4) — intern it via the const allocator and replace the
// operand with the resulting ConstScore (spec §4.3 rule 13).
func literalToConstantReplacement(ops []ir.Op, ctx *Context) []ir.Op {
	out := make([]ir.Op, 0, len(ops))
	for _, op := range ops {
		out = append(out, internConstLiterals(op, ctx))
	}
	return out
}

// internConstLiterals applies rule 13's rewrite to a single op, recursing
// into an If's body since the guarded body is just as much a destination
// for this rewrite as a top-level op (spec §8 scenario 6's guarded
// `Mul($s0, -1)` must still become `Mul($s0, $-1)`).
func internConstLiterals(op ir.Op, ctx *Context) ir.Op {
	if ifOp, ok := op.(ir.IfOp); ok {
		ifOp.Body = internConstLiterals(ifOp.Body, ctx)
		return ifOp
	}
	sop, ok := asScoreOp(op)
	if !ok || sop.OpK == ir.OpSet || sop.OpK == ir.OpAdd || sop.OpK == ir.OpSub {
		return op
	}
	if v, isInt := asIntLiteral(sop.Src); isInt {
		sop.Src = ctx.Const.Create(v)
	}
	return sop
}
