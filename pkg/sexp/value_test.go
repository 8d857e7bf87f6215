package sexp

import "testing"

func TestNewMapLastEntryWins(t *testing.T) {
	m := NewMap(
		Entry{Key: Symbol("title"), Value: String("first")},
		Entry{Key: Symbol("date"), Value: String("2025-01-01")},
		Entry{Key: Symbol("title"), Value: String("second")},
	)

	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}
	got, ok := m.Get(Symbol("title"))
	if !ok || !Equal(got, String("second")) {
		t.Fatalf("expected title=second, got %v (found=%v)", got, ok)
	}
}

func TestMapWithDoesNotMutateReceiver(t *testing.T) {
	base := NewMap(Entry{Key: Symbol("a"), Value: Int(1)})
	next := base.With(Symbol("a"), Int(2)).With(Symbol("b"), Int(3))

	if v, _ := base.Get(Symbol("a")); !Equal(v, Int(1)) {
		t.Fatalf("receiver mutated: a=%v", v)
	}
	if base.Len() != 1 {
		t.Fatalf("receiver grew to %d entries", base.Len())
	}
	if v, _ := next.Get(Symbol("a")); !Equal(v, Int(2)) {
		t.Fatalf("expected a=2 on derived map, got %v", v)
	}
	if next.Len() != 2 {
		t.Fatalf("expected 2 entries on derived map, got %d", next.Len())
	}
}

func TestMapLookupAcceptsSymbolOrStringKeys(t *testing.T) {
	m := NewMap(
		Entry{Key: Symbol("title"), Value: String("sym")},
		Entry{Key: String("date"), Value: String("str")},
	)
	if v, ok := m.Lookup("title"); !ok || !Equal(v, String("sym")) {
		t.Fatalf("symbol lookup failed: %v", v)
	}
	if v, ok := m.Lookup("date"); !ok || !Equal(v, String("str")) {
		t.Fatalf("string lookup failed: %v", v)
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Fatal("expected missing key lookup to fail")
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"symbol vs string", Symbol("a"), String("a"), false},
		{"list vs vector", List{Int(1)}, Vector{Int(1)}, false},
		{"nested lists", List{Symbol("p"), List{String("x")}}, List{Symbol("p"), List{String("x")}}, true},
		{"int vs float", Int(1), Float(1), false},
		{"null", Null{}, Null{}, true},
		{
			"maps ignore order",
			NewMap(Entry{Key: Symbol("a"), Value: Int(1)}, Entry{Key: Symbol("b"), Value: Int(2)}),
			NewMap(Entry{Key: Symbol("b"), Value: Int(2)}, Entry{Key: Symbol("a"), Value: Int(1)}),
			true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Fatalf("Equal(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tree := List{
		Symbol("a"),
		List{List{Symbol("href"), String("/x")}},
		String("click"),
		Vector{Int(1), Float(2.5), Bool(true), Null{}},
	}
	want := `(a ((href "/x")) "click" #(1 2.5 #t null))`
	if got := Format(tree); got != want {
		t.Fatalf("Format mismatch\nwant: %s\ngot:  %s", want, got)
	}

	m := NewMap(
		Entry{Key: Symbol("title"), Value: String("Hi")},
		Entry{Key: Symbol("date"), Value: String("2025")},
	)
	if got := m.String(); got != `#hash((date . "2025") (title . "Hi"))` {
		t.Fatalf("unexpected map format: %s", got)
	}
}

func TestKindString(t *testing.T) {
	if KindVector.String() != "vector" {
		t.Fatalf("unexpected kind label %q", KindVector.String())
	}
	if (List{}).Kind() != KindList {
		t.Fatal("expected list kind")
	}
}
