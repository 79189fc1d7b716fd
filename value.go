package dynmig

import "sync"

// ValueKind discriminates the DynamicValue variants.
type ValueKind int

const (
	_ ValueKind = iota // skip zero value, use it as a default (invalid) value

	KindPrimitive
	KindRecord
	KindVariant
	KindSequence
	KindMap
	KindNull
)

func (k ValueKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindRecord:
		return "Record"
	case KindVariant:
		return "Variant"
	case KindSequence:
		return "Sequence"
	case KindMap:
		return "Map"
	case KindNull:
		return "Null"
	}
	return "Invalid"
}

// DynamicValue is the untyped structural representation of typed data.
// All implementations are immutable; operations return new values.
type DynamicValue interface {
	Kind() ValueKind
	// Equal is deep structural equality. Lazily-wrapped values compare
	// transparently equal to their forced form.
	Equal(other DynamicValue) bool
	isDynamicValue()
}

// Field is a single named entry of a Record.
type Field struct {
	Name  string
	Value DynamicValue
}

// F is shorthand for constructing a Field.
func F(name string, v DynamicValue) Field { return Field{Name: name, Value: v} }

// Record is an ordered sequence of named fields. Field names are not forced
// unique; lookup returns the first match and insertion order is preserved.
type Record struct {
	Fields []Field
}

// NewRecord builds a Record from the given fields, in order.
func NewRecord(fields ...Field) Record { return Record{Fields: fields} }

func (r Record) Kind() ValueKind { return KindRecord }
func (r Record) isDynamicValue() {}

// Get returns the first field with the given name.
func (r Record) Get(name string) (DynamicValue, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// IndexOf returns the position of the first field with the given name, or -1.
func (r Record) IndexOf(name string) int {
	for i, f := range r.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (r Record) Equal(other DynamicValue) bool {
	o, ok := Force(other).(Record)
	if !ok || len(o.Fields) != len(r.Fields) {
		return false
	}
	for i, f := range r.Fields {
		if f.Name != o.Fields[i].Name || !ValueEqual(f.Value, o.Fields[i].Value) {
			return false
		}
	}
	return true
}

// Variant is a tagged choice: a case label plus a payload value.
type Variant struct {
	Case  string
	Value DynamicValue
}

// NewVariant builds a Variant with the given case label and payload.
func NewVariant(caseName string, v DynamicValue) Variant {
	return Variant{Case: caseName, Value: v}
}

func (v Variant) Kind() ValueKind { return KindVariant }
func (v Variant) isDynamicValue() {}

func (v Variant) Equal(other DynamicValue) bool {
	o, ok := Force(other).(Variant)
	return ok && o.Case == v.Case && ValueEqual(v.Value, o.Value)
}

// Sequence is an ordered, possibly empty list of values.
type Sequence struct {
	Elements []DynamicValue
}

// NewSequence builds a Sequence from the given elements, in order.
func NewSequence(elems ...DynamicValue) Sequence { return Sequence{Elements: elems} }

func (s Sequence) Kind() ValueKind { return KindSequence }
func (s Sequence) isDynamicValue() {}

func (s Sequence) Equal(other DynamicValue) bool {
	o, ok := Force(other).(Sequence)
	if !ok || len(o.Elements) != len(s.Elements) {
		return false
	}
	for i, e := range s.Elements {
		if !ValueEqual(e, o.Elements[i]) {
			return false
		}
	}
	return true
}

// MapEntry is a single key/value pair of a MapValue.
type MapEntry struct {
	Key   DynamicValue
	Value DynamicValue
}

// E is shorthand for constructing a MapEntry.
func E(k, v DynamicValue) MapEntry { return MapEntry{Key: k, Value: v} }

// MapValue is an ordered sequence of key/value pairs. Keys are compared by
// structural equality, not hashed identity.
type MapValue struct {
	Entries []MapEntry
}

// NewMap builds a MapValue from the given entries, in order.
func NewMap(entries ...MapEntry) MapValue { return MapValue{Entries: entries} }

func (m MapValue) Kind() ValueKind { return KindMap }
func (m MapValue) isDynamicValue() {}

// Get returns the value for the first entry whose key is structurally equal.
func (m MapValue) Get(key DynamicValue) (DynamicValue, bool) {
	for _, e := range m.Entries {
		if ValueEqual(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

func (m MapValue) Equal(other DynamicValue) bool {
	o, ok := Force(other).(MapValue)
	if !ok || len(o.Entries) != len(m.Entries) {
		return false
	}
	for i, e := range m.Entries {
		if !ValueEqual(e.Key, o.Entries[i].Key) || !ValueEqual(e.Value, o.Entries[i].Value) {
			return false
		}
	}
	return true
}

// Null is the explicit absence marker, distinct from a missing field and
// from the None variant.
type Null struct{}

func (Null) Kind() ValueKind { return KindNull }
func (Null) isDynamicValue() {}

func (Null) Equal(other DynamicValue) bool {
	_, ok := Force(other).(Null)
	return ok
}

// lazyValue defers construction of a value until first use. It is
// transparently equal to its forced form.
type lazyValue struct {
	once  *sync.Once
	thunk func() DynamicValue
	cell  *DynamicValue
}

// Defer wraps a value thunk; the thunk runs at most once.
func Defer(thunk func() DynamicValue) DynamicValue {
	return &lazyValue{once: new(sync.Once), thunk: thunk, cell: new(DynamicValue)}
}

func (l *lazyValue) force() DynamicValue {
	l.once.Do(func() { *l.cell = Force(l.thunk()) })
	return *l.cell
}

func (l *lazyValue) Kind() ValueKind               { return l.force().Kind() }
func (l *lazyValue) Equal(other DynamicValue) bool { return l.force().Equal(other) }
func (l *lazyValue) isDynamicValue()               {}

// Force strips any lazy wrapper, returning the underlying value.
func Force(v DynamicValue) DynamicValue {
	if l, ok := v.(*lazyValue); ok {
		return l.force()
	}
	return v
}

// ValueEqual is structural equality over two values, forcing lazy wrappers
// on both sides.
func ValueEqual(a, b DynamicValue) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Force(a).Equal(b)
}

// Option encoding. The canonical form wraps the payload in a single-field
// record; readers also accept the bare-payload form.

// Some wraps v in the canonical option encoding.
func Some(v DynamicValue) Variant {
	return NewVariant("Some", NewRecord(F("value", v)))
}

// None is the canonical empty option.
func None() Variant { return NewVariant("None", NewRecord()) }

// asOption inspects v and reports whether it is an option encoding.
// For Some it returns the unwrapped payload, accepting both the canonical
// Record("value" -> x) form and the bare-payload form.
func asOption(v DynamicValue) (payload DynamicValue, isSome, isOption bool) {
	switch t := Force(v).(type) {
	case Variant:
		switch t.Case {
		case "Some":
			p := Force(t.Value)
			if r, ok := p.(Record); ok && len(r.Fields) == 1 && r.Fields[0].Name == "value" {
				return r.Fields[0].Value, true, true
			}
			return p, true, true
		case "None":
			return nil, false, true
		}
	case Null:
		return nil, false, true
	}
	return nil, false, false
}
