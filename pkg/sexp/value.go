// Package sexp defines the tagged value tree shared by the metadata parser,
// the template evaluator and the markup renderer.
//
// Value is a closed sum type: the only implementations are the variants
// declared in this file. Trees are treated as immutable once built and never
// contain back-references.
package sexp

import (
	"sort"
)

// Kind identifies a Value variant.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSymbol
	KindList
	KindVector
	KindMap
)

// String renders the variant name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindList:
		return "list"
	case KindVector:
		return "vector"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is implemented by every variant of the tree.
type Value interface {
	Kind() Kind
	String() string
	value()
}

type (
	// Null is the absent value.
	Null struct{}
	// Bool is a boolean scalar.
	Bool bool
	// Int is an integer scalar.
	Int int64
	// Float is a floating point scalar.
	Float float64
	// String is a text scalar.
	String string
	// Symbol is an identifier-like scalar, distinct from String.
	Symbol string
	// List is an ordered sequence. A List headed by a Symbol is a tag tree.
	List []Value
	// Vector is an ordered sequence that never denotes a tag.
	Vector []Value
)

// Entry is a single key/value association of a Map.
type Entry struct {
	Key   Value
	Value Value
}

// Map associates unique keys with values. The zero Map is empty and usable.
type Map struct {
	entries []Entry
}

var (
	_ Value = Null{}
	_ Value = Bool(false)
	_ Value = Int(0)
	_ Value = Float(0)
	_ Value = String("")
	_ Value = Symbol("")
	_ Value = List(nil)
	_ Value = Vector(nil)
	_ Value = Map{}
)

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (String) Kind() Kind { return KindString }
func (Symbol) Kind() Kind { return KindSymbol }
func (List) Kind() Kind   { return KindList }
func (Vector) Kind() Kind { return KindVector }
func (Map) Kind() Kind    { return KindMap }

func (Null) value()   {}
func (Bool) value()   {}
func (Int) value()    {}
func (Float) value()  {}
func (String) value() {}
func (Symbol) value() {}
func (List) value()   {}
func (Vector) value() {}
func (Map) value()    {}

func (v Null) String() string   { return Format(v) }
func (v Bool) String() string   { return Format(v) }
func (v Int) String() string    { return Format(v) }
func (v Float) String() string  { return Format(v) }
func (v String) String() string { return Format(v) }
func (v Symbol) String() string { return Format(v) }
func (v List) String() string   { return Format(v) }
func (v Vector) String() string { return Format(v) }
func (v Map) String() string    { return Format(v) }

// NewMap builds a Map from entries. When a key repeats, the last entry wins.
func NewMap(entries ...Entry) Map {
	var m Map
	for _, entry := range entries {
		m = m.with(entry.Key, entry.Value)
	}
	return m
}

// Len reports the number of entries.
func (m Map) Len() int {
	return len(m.entries)
}

// Get returns the value stored under key.
func (m Map) Get(key Value) (Value, bool) {
	if idx := m.index(key); idx >= 0 {
		return m.entries[idx].Value, true
	}
	return nil, false
}

// Lookup resolves a name stored either as a Symbol or as a String key.
func (m Map) Lookup(name string) (Value, bool) {
	if v, ok := m.Get(Symbol(name)); ok {
		return v, true
	}
	return m.Get(String(name))
}

// With returns a copy of m with key bound to val. The receiver is unchanged.
func (m Map) With(key, val Value) Map {
	return m.with(key, val)
}

// Entries returns a copy of the entries ordered by their formatted key so
// callers observe a deterministic sequence.
func (m Map) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return Format(out[i].Key) < Format(out[j].Key)
	})
	return out
}

func (m Map) with(key, val Value) Map {
	if key == nil {
		key = Null{}
	}
	if val == nil {
		val = Null{}
	}
	next := make([]Entry, len(m.entries), len(m.entries)+1)
	copy(next, m.entries)
	if idx := m.index(key); idx >= 0 {
		next[idx].Value = val
		return Map{entries: next}
	}
	return Map{entries: append(next, Entry{Key: key, Value: val})}
}

func (m Map) index(key Value) int {
	for i, entry := range m.entries {
		if Equal(entry.Key, key) {
			return i
		}
	}
	return -1
}

// Equal reports structural equality. List and Vector never compare equal to
// each other; Map equality ignores entry order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Symbol:
		y, ok := b.(Symbol)
		return ok && x == y
	case List:
		y, ok := b.(List)
		return ok && equalSeq(x, y)
	case Vector:
		y, ok := b.(Vector)
		return ok && equalSeq(x, y)
	case Map:
		y, ok := b.(Map)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, entry := range x.entries {
			other, found := y.Get(entry.Key)
			if !found || !Equal(entry.Value, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalSeq(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
