// Package serialize renders optimized IR into the command strings the
// embedding layer hands to the target VM's command parser (spec §4.4
// "Serializer"). Serialization is a pure function of its input ops: it
// never reorders or optimizes, it only renders (spec §4.4: "Serialization
// preserves IR order. No re-ordering, no optimization").
package serialize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcboltdev/exprcore/internal/ir"
)

// MissingOperandError reports an op the serializer cannot render because a
// required operand has an unexpected shape (spec §7 "InternalInvariant":
// "serializer given an op with missing operand").
type MissingOperandError struct {
	Op     ir.Op
	Reason string
}

func (e *MissingOperandError) Error() string {
	if e.Op == nil {
		return "cannot serialize: " + e.Reason
	}
	return fmt.Sprintf("cannot serialize %s: %s", e.Op.Kind(), e.Reason)
}

// Serialize renders ops into command strings, one per top-level op, in
// order.
func Serialize(ops []ir.Op) ([]string, error) {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		s, err := serializeOp(op)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func serializeOp(op ir.Op) (string, error) {
	switch o := op.(type) {
	case ir.ScoreOp:
		return serializeScoreOp(o)
	case ir.DataSetOp:
		return serializeDataSet(o)
	case ir.DataGetOp:
		return serializeDataGet(o)
	case ir.DataMergeOp:
		return serializeDataMerge(o)
	case ir.DataInsertOp:
		return serializeDataInsert(o)
	case ir.DataRemoveOp:
		return fmt.Sprintf("data remove %s", targetString(o.Target)), nil
	case ir.IfOp:
		return serializeIf(o)
	default:
		return "", &MissingOperandError{Op: op, Reason: "unrecognized op kind"}
	}
}

func holderObj(s ir.ScoreRef) string { return s.Holder + " " + s.Objective }

func serializeScoreOp(o ir.ScoreOp) (string, error) {
	if srcScore, ok := o.Src.(ir.ScoreRef); ok {
		switch o.OpK {
		case ir.OpSet:
			return fmt.Sprintf("scoreboard players operation %s = %s", holderObj(o.Dst), holderObj(srcScore)), nil
		default:
			return fmt.Sprintf("scoreboard players operation %s %s %s", holderObj(o.Dst), operationSymbol(o.OpK), holderObj(srcScore)), nil
		}
	}

	v, isInt := o.Src.(ir.Literal)
	if !isInt {
		return "", &MissingOperandError{Op: o, Reason: "score op src must be a score-ref or literal"}
	}
	k, ok := v.AsInt()
	if !ok {
		return "", &MissingOperandError{Op: o, Reason: "score op literal src must be an integer"}
	}

	switch o.OpK {
	case ir.OpSet:
		return fmt.Sprintf("scoreboard players set %s %d", holderObj(o.Dst), k), nil
	case ir.OpAdd:
		return addRemoveCommand(o.Dst, k), nil
	case ir.OpSub:
		return addRemoveCommand(o.Dst, -k), nil
	default:
		// literal_to_constant_replacement (optimizer rule 13) interns any
		// literal reaching a non Set/Add/Sub op before serialize ever sees
		// it, so this path is only reached when Serialize is given ops that
		// did not go through the optimizer.
		return fmt.Sprintf("scoreboard players operation %s %s %d", holderObj(o.Dst), operationSymbol(o.OpK), k), nil
	}
}

// addRemoveCommand renders Add(a, k) as `add` for k >= 0 and `remove` for
// negative k (spec §4.4: "Add(a, int k) | scoreboard players add <a> <k> if
// k ≥ 0 else remove <|k|>").
func addRemoveCommand(dst ir.ScoreRef, k int64) string {
	if k >= 0 {
		return fmt.Sprintf("scoreboard players add %s %d", holderObj(dst), k)
	}
	return fmt.Sprintf("scoreboard players remove %s %d", holderObj(dst), -k)
}

func operationSymbol(k ir.OpKind) string {
	switch k {
	case ir.OpAdd:
		return "+="
	case ir.OpSub:
		return "-="
	case ir.OpMul:
		return "*="
	case ir.OpDiv:
		return "/="
	case ir.OpMod:
		return "%="
	case ir.OpMin:
		return "<"
	case ir.OpMax:
		return ">"
	default:
		return "="
	}
}

func targetString(d ir.DataRef) string {
	s := d.Kind.String() + " " + d.Target
	if len(d.Path) > 0 {
		s += " " + d.Path.String()
	}
	return strings.TrimRight(s, " ")
}

func snbtTypeWord(t ir.TypeTag) string {
	switch t {
	case ir.TypeByte:
		return "byte"
	case ir.TypeShort:
		return "short"
	case ir.TypeLong:
		return "long"
	case ir.TypeFloat:
		return "float"
	case ir.TypeDouble:
		return "double"
	default:
		return "int"
	}
}

func serializeDataSet(o ir.DataSetOp) (string, error) {
	switch src := o.Src.(type) {
	case ir.DataRef:
		return fmt.Sprintf("data modify %s set from %s", targetString(o.Dst), targetString(src)), nil
	case ir.Literal:
		return fmt.Sprintf("data modify %s set value %s", targetString(o.Dst), src.Value.String()), nil
	case ir.ScoreRef:
		scale := o.Dst.Scale
		if scale == 0 {
			scale = 1
		}
		return fmt.Sprintf("execute store result %s %s %s run scoreboard players get %s",
			targetString(o.Dst), snbtTypeWord(o.Dst.NbtType), formatScale(scale), holderObj(src)), nil
	default:
		return "", &MissingOperandError{Op: o, Reason: "data set src must be a data-ref, literal, or score-ref"}
	}
}

func formatScale(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func serializeDataGet(o ir.DataGetOp) (string, error) {
	return fmt.Sprintf("execute store result score %s run data get %s %s",
		holderObj(o.Dst), targetString(o.Src), formatScale(o.Scale)), nil
}

func serializeDataMerge(o ir.DataMergeOp) (string, error) {
	valueStr, err := valueString(o.Src)
	if err != nil {
		return "", err
	}
	if o.Root {
		return fmt.Sprintf("data merge %s %s %s", o.Dst.Kind.String(), o.Dst.Target, valueStr), nil
	}
	return fmt.Sprintf("data modify %s merge value %s", targetString(o.Dst), valueStr), nil
}

func serializeDataInsert(o ir.DataInsertOp) (string, error) {
	valueStr, err := valueString(o.Src)
	kind := "value"
	if _, isData := o.Src.(ir.DataRef); isData {
		kind = "from"
	}
	if err != nil {
		return "", err
	}
	switch o.Mode {
	case ir.InsertAppend:
		return fmt.Sprintf("data modify %s append %s %s", targetString(o.Dst), kind, valueStr), nil
	case ir.InsertPrepend:
		return fmt.Sprintf("data modify %s prepend %s %s", targetString(o.Dst), kind, valueStr), nil
	default:
		return fmt.Sprintf("data modify %s insert %d %s %s", targetString(o.Dst), o.Index, kind, valueStr), nil
	}
}

// valueString renders a DataInsert/DataMerge source operand: either the
// referenced data path or a literal's SNBT text. An insert's ScoreRef source
// does not reach here: dataInsertScore (optimizer rule 1) rewrites it into a
// temp-data DataSet beforehand. A merge's ScoreRef source is not rewritten
// and is reported as a MissingOperandError.
func valueString(operand ir.Operand) (string, error) {
	switch v := operand.(type) {
	case ir.DataRef:
		return targetString(v), nil
	case ir.Literal:
		return v.Value.String(), nil
	default:
		return "", &MissingOperandError{Reason: "insert/merge source must be a data-ref or literal"}
	}
}

func serializeIf(o ir.IfOp) (string, error) {
	body, err := serializeOp(o.Body)
	if err != nil {
		return "", err
	}
	cond, err := serializeCompare(o.Cond)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("execute %s run %s", cond, body), nil
}

// serializeCompare renders an If guard. Comparisons against an integer
// literal or const collapse to the VM's inline `matches <range>` form;
// comparisons between two scores render as `if score <a> <op> score <b>`.
func serializeCompare(c ir.CompareOp) (string, error) {
	left, ok := c.Left.(ir.ScoreRef)
	if !ok {
		return "", &MissingOperandError{Reason: "comparison left side must be a score-ref"}
	}

	if rangeExpr, ok := matchesRange(c.CmpK, c.Right); ok {
		return fmt.Sprintf("if score %s matches %s", holderObj(left), rangeExpr), nil
	}

	right, ok := c.Right.(ir.ScoreRef)
	if !ok {
		return "", &MissingOperandError{Reason: "comparison right side must be a score-ref or integer literal"}
	}
	return fmt.Sprintf("if score %s %s score %s", holderObj(left), compareSymbol(c.CmpK), holderObj(right)), nil
}

func compareSymbol(k ir.CmpKind) string {
	switch k {
	case ir.CmpLT:
		return "<"
	case ir.CmpGT:
		return ">"
	case ir.CmpLE:
		return "<="
	case ir.CmpGE:
		return ">="
	default:
		return "="
	}
}

// matchesRange collapses a comparison against a literal or interned
// constant integer into the inline `matches` range syntax (spec §8
// scenario 6: `matches ..-1` for `LessThan(x, 0)`).
func matchesRange(k ir.CmpKind, operand ir.Operand) (string, bool) {
	v, ok := literalOrConstInt(operand)
	if !ok {
		return "", false
	}
	switch k {
	case ir.CmpLT:
		return fmt.Sprintf("..%d", v-1), true
	case ir.CmpLE:
		return fmt.Sprintf("..%d", v), true
	case ir.CmpGT:
		return fmt.Sprintf("%d..", v+1), true
	case ir.CmpGE:
		return fmt.Sprintf("%d..", v), true
	case ir.CmpEQ:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

func literalOrConstInt(operand ir.Operand) (int64, bool) {
	if lit, ok := operand.(ir.Literal); ok {
		return lit.AsInt()
	}
	if sr, ok := operand.(ir.ScoreRef); ok && sr.Kind == ir.ScoreConst {
		return sr.ConstValue, true
	}
	return 0, false
}
