package sexp

import (
	"strconv"
	"strings"
)

// Format prints v as s-expression text. It is meant for diagnostics and log
// output; the markup renderer never uses it.
func Format(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case Bool:
		if x {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case Int:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case Float:
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 64))
	case String:
		b.WriteString(strconv.Quote(string(x)))
	case Symbol:
		b.WriteString(string(x))
	case List:
		writeSeq(b, "(", x)
	case Vector:
		writeSeq(b, "#(", x)
	case Map:
		b.WriteString("#hash(")
		for i, entry := range x.Entries() {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('(')
			writeValue(b, entry.Key)
			b.WriteString(" . ")
			writeValue(b, entry.Value)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	}
}

func writeSeq(b *strings.Builder, open string, items []Value) {
	b.WriteString(open)
	for i, item := range items {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeValue(b, item)
	}
	b.WriteByte(')')
}
