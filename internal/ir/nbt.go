package ir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TypeTag is the typed-tag system carried on data sources, propagated
// through accessors (spec §3) and defaulting to Any when a child type
// cannot be resolved.
type TypeTag int

const (
	TypeAny TypeTag = iota
	TypeByte
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeString
	TypeList
	TypeCompound
)

func (t TypeTag) String() string {
	switch t {
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeCompound:
		return "compound"
	default:
		return "any"
	}
}

// NbtValue is a tagged NBT value: integer, floating, string, list, or
// compound (spec §3). It is a value type throughout so Literal and
// Accessor stay comparable-by-content via Equal/Hash rather than Go map
// identity, matching the design note that Compound/List need a "stable
// content-hash function rather than mutating foreign types".
type NbtValue struct {
	Kind     TypeTag
	Int      int64
	Float    float64
	Str      string
	List     []NbtValue
	Compound map[string]NbtValue
}

func IntValue(v int64) NbtValue        { return NbtValue{Kind: TypeInt, Int: v} }
func ByteValue(v int64) NbtValue       { return NbtValue{Kind: TypeByte, Int: v} }
func ShortValue(v int64) NbtValue      { return NbtValue{Kind: TypeShort, Int: v} }
func LongValue(v int64) NbtValue       { return NbtValue{Kind: TypeLong, Int: v} }
func FloatValue(v float64) NbtValue    { return NbtValue{Kind: TypeFloat, Float: v} }
func DoubleValue(v float64) NbtValue   { return NbtValue{Kind: TypeDouble, Float: v} }
func StringValue(v string) NbtValue    { return NbtValue{Kind: TypeString, Str: v} }
func ListValue(v []NbtValue) NbtValue  { return NbtValue{Kind: TypeList, List: v} }
func CompoundValue(v map[string]NbtValue) NbtValue {
	return NbtValue{Kind: TypeCompound, Compound: v}
}

// String renders the value as SNBT (the text form mcfunction commands and
// `data modify ... value <snbt>` expect).
func (v NbtValue) String() string {
	switch v.Kind {
	case TypeByte:
		return strconv.FormatInt(v.Int, 10) + "b"
	case TypeShort:
		return strconv.FormatInt(v.Int, 10) + "s"
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case TypeLong:
		return strconv.FormatInt(v.Int, 10) + "L"
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64) + "f"
	case TypeDouble:
		return strconv.FormatFloat(v.Float, 'g', -1, 64) + "d"
	case TypeString:
		return strconv.Quote(v.Str)
	case TypeList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case TypeCompound:
		return compoundSNBT(v.Compound)
	default:
		return "null"
	}
}

// Hash returns a stable content hash usable as a map key in place of the
// NbtValue itself (which may contain a slice/map and so is not Go-comparable).
func (v NbtValue) Hash() string { return v.String() }

// Equal reports content equality, delegating to Hash since both List and
// Compound embed slices/maps that Go's == cannot compare directly.
func (v NbtValue) Equal(o NbtValue) bool { return v.Kind == o.Kind && v.Hash() == o.Hash() }

func compoundSNBT(c map[string]NbtValue) string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%s", k, c[k].String())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// AccessorKind tags the three path-step variants from spec §3: NamedKey,
// ListIndex, CompoundMatch, plus the "universal index" Path[:] form called
// out separately in the same section.
type AccessorKind int

const (
	AccNamedKey AccessorKind = iota
	AccListIndex
	AccAllIndex
	AccCompoundMatch
)

// Accessor is a single NBT path step.
type Accessor struct {
	Kind  AccessorKind
	Key   string
	Index int
	Match NbtValue // Kind == TypeCompound when AccCompoundMatch
}

func NamedKey(key string) Accessor        { return Accessor{Kind: AccNamedKey, Key: key} }
func ListIndex(index int) Accessor        { return Accessor{Kind: AccListIndex, Index: index} }
func AllIndex() Accessor                  { return Accessor{Kind: AccAllIndex} }
func CompoundMatch(m map[string]NbtValue) Accessor {
	return Accessor{Kind: AccCompoundMatch, Match: CompoundValue(m)}
}

func (a Accessor) String() string {
	switch a.Kind {
	case AccNamedKey:
		return a.Key
	case AccListIndex:
		return "[" + strconv.Itoa(a.Index) + "]"
	case AccAllIndex:
		return "[]"
	case AccCompoundMatch:
		return "[" + a.Match.String() + "]"
	default:
		return ""
	}
}

func (a Accessor) Equal(o Accessor) bool {
	if a.Kind != o.Kind {
		return false
	}
	switch a.Kind {
	case AccNamedKey:
		return a.Key == o.Key
	case AccListIndex:
		return a.Index == o.Index
	case AccCompoundMatch:
		return a.Match.Hash() == o.Match.Hash()
	default:
		return true
	}
}

// NbtPath is an ordered sequence of Accessors. Paths compose by
// concatenation (spec §3).
type NbtPath []Accessor

// Child appends a NamedKey accessor, composing paths by concatenation.
func (p NbtPath) Child(key string) NbtPath {
	return append(append(NbtPath{}, p...), NamedKey(key))
}

// Index appends a ListIndex accessor.
func (p NbtPath) Index(i int) NbtPath {
	return append(append(NbtPath{}, p...), ListIndex(i))
}

// All appends the universal index accessor (Path[:]).
func (p NbtPath) All() NbtPath {
	return append(append(NbtPath{}, p...), AllIndex())
}

// Filtered appends a CompoundMatch accessor.
func (p NbtPath) Filtered(match map[string]NbtValue) NbtPath {
	return append(append(NbtPath{}, p...), CompoundMatch(match))
}

func (p NbtPath) String() string {
	var b strings.Builder
	for i, a := range p {
		if a.Kind == AccNamedKey && i > 0 && p[i-1].Kind == AccNamedKey {
			b.WriteByte('.')
		}
		b.WriteString(a.String())
	}
	return b.String()
}

func (p NbtPath) Equal(o NbtPath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !p[i].Equal(o[i]) {
			return false
		}
	}
	return true
}
