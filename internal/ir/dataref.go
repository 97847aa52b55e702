package ir

import "strconv"

// DataKind is the storage-kind half of a data-ref's (storage-kind, target,
// path) triple (spec §1/§3).
type DataKind int

const (
	DataStorage DataKind = iota
	DataEntity
	DataBlock
)

func (k DataKind) String() string {
	switch k {
	case DataEntity:
		return "entity"
	case DataBlock:
		return "block"
	default:
		return "storage"
	}
}

// DataRef addresses a typed nested-tag data container by
// (target_kind, target, path), plus the scale/nbt_type fields the
// optimizer's data/score fusion rules (data_set_scaling, data_get_scaling,
// convert_data_arithmetic) read and rewrite (spec §3, §4.3).
type DataRef struct {
	Kind    DataKind
	Target  string
	Path    NbtPath
	Scale   float64
	NbtType TypeTag

	// childTypes is an optional, caller-supplied one-level type schema: it
	// lets Child/Index resolve a more specific NbtType than Any for the
	// immediate next accessor, per spec §3's "looking up child-type at each
	// NamedKey/ListIndex and defaults to Any on failure".
	childTypes map[string]TypeTag
}

// NewData constructs a bare data reference with the default scale (1.0)
// and nbt type (Any).
func NewData(kind DataKind, target string) DataRef {
	return DataRef{Kind: kind, Target: target, Scale: 1.0, NbtType: TypeAny}
}

func (d DataRef) OperandKind() OperandKind { return OperandData }

func (d DataRef) String() string {
	s := d.Kind.String() + " " + d.Target
	if len(d.Path) > 0 {
		s += " " + d.Path.String()
	}
	return s
}

// Equal reports structural equality, ignoring the childTypes schema hint
// (which never affects emitted commands).
func (d DataRef) Equal(o DataRef) bool {
	return d.Kind == o.Kind && d.Target == o.Target && d.Path.Equal(o.Path) &&
		d.Scale == o.Scale && d.NbtType == o.NbtType
}

// WithChildTypes attaches a one-level type schema used by the next Child
// or Index call. It returns a copy; DataRef values are otherwise immutable
// once built, matching "Expression trees are immutable after construction"
// (spec §3 Lifecycles).
func (d DataRef) WithChildTypes(types map[string]TypeTag) DataRef {
	d.childTypes = types
	return d
}

// Child returns a new DataRef with a NamedKey accessor appended, replacing
// the host language's dynamic `src.foo.bar` attribute access (spec §9: "a
// typed child(name) method... path traversal via __getattr__ is a UX
// affordance, not a semantic one").
func (d DataRef) Child(name string) DataRef {
	next := d
	next.Path = d.Path.Child(name)
	next.NbtType = d.lookupChildType(name)
	next.childTypes = nil
	return next
}

// Index returns a new DataRef with a ListIndex accessor appended.
func (d DataRef) Index(i int) DataRef {
	next := d
	next.Path = d.Path.Index(i)
	next.NbtType = d.lookupChildType("[" + strconv.Itoa(i) + "]")
	next.childTypes = nil
	return next
}

// All returns a new DataRef with the universal index accessor appended
// (Path[:], spec §3).
func (d DataRef) All() DataRef {
	next := d
	next.Path = d.Path.All()
	next.NbtType = TypeAny
	next.childTypes = nil
	return next
}

// Filtered returns a new DataRef with a CompoundMatch accessor appended,
// replacing the Python `self[{abc:1b}]` filter syntax.
func (d DataRef) Filtered(match map[string]NbtValue) DataRef {
	next := d
	next.Path = d.Path.Filtered(match)
	next.childTypes = nil
	return next
}

// With returns a copy with scale and/or nbt type overridden, the Go
// replacement for Python's `DataSource.__call__(matching, scale, type)`
// modifier (spec §9).
func (d DataRef) With(scale float64, nbtType TypeTag) DataRef {
	next := d
	if scale != 0 {
		next.Scale = scale
	}
	if nbtType != TypeAny {
		next.NbtType = nbtType
	}
	return next
}

func (d DataRef) lookupChildType(key string) TypeTag {
	if d.childTypes == nil {
		return TypeAny
	}
	if t, ok := d.childTypes[key]; ok {
		return t
	}
	return TypeAny
}
