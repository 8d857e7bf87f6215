// Package markup turns value trees into HTML-like markup text.
//
// A List headed by a Symbol is an element: (tag attrs? children...). Any
// other List, and every Vector, is a fragment whose items are concatenated.
// Render never fails. Shapes it does not understand render as nothing.
//
// Text is written exactly as given. No entity escaping happens here; callers
// must hand in trusted or pre-escaped content.
package markup

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-bower/pkg/sexp"
)

// Render returns the markup for v.
func Render(v sexp.Value) string {
	var b strings.Builder
	write(&b, v)
	return b.String()
}

func write(b *strings.Builder, v sexp.Value) {
	switch x := v.(type) {
	case sexp.String:
		b.WriteString(string(x))
	case sexp.Symbol:
		b.WriteString(string(x))
	case sexp.Int:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case sexp.Float:
		b.WriteString(formatFloat(float64(x)))
	case sexp.Bool:
		b.WriteString(strconv.FormatBool(bool(x)))
	case sexp.Vector:
		writeAll(b, x)
	case sexp.List:
		writeList(b, x)
	default:
		// Null, Map and anything unknown are dropped.
	}
}

func writeAll(b *strings.Builder, items []sexp.Value) {
	for _, item := range items {
		write(b, item)
	}
}

func writeList(b *strings.Builder, list sexp.List) {
	if len(list) == 0 {
		return
	}
	tag, ok := list[0].(sexp.Symbol)
	if !ok {
		writeAll(b, list)
		return
	}

	children := list[1:]
	var attrs sexp.List
	if len(children) > 0 {
		if candidate, ok := children[0].(sexp.List); ok && isAttrList(candidate) {
			attrs = candidate
			children = children[1:]
		}
	}

	b.WriteByte('<')
	b.WriteString(string(tag))
	writeAttrs(b, attrs)
	b.WriteByte('>')
	writeAll(b, children)
	b.WriteString("</")
	b.WriteString(string(tag))
	b.WriteByte('>')
}

// isAttrList reports whether every member is a two element List. An empty
// list qualifies, so (div ()) always reads as "no attributes".
func isAttrList(list sexp.List) bool {
	for _, item := range list {
		pair, ok := item.(sexp.List)
		if !ok || len(pair) != 2 {
			return false
		}
	}
	return true
}

func writeAttrs(b *strings.Builder, attrs sexp.List) {
	for _, item := range attrs {
		pair := item.(sexp.List)
		key, ok := attrKey(pair[0])
		if !ok {
			continue
		}
		val, ok := attrValue(pair[1])
		if !ok {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(val)
		b.WriteByte('"')
	}
}

func attrKey(v sexp.Value) (string, bool) {
	switch x := v.(type) {
	case sexp.Symbol:
		return string(x), true
	case sexp.String:
		return string(x), true
	default:
		return "", false
	}
}

func attrValue(v sexp.Value) (string, bool) {
	switch x := v.(type) {
	case sexp.String:
		return string(x), true
	case sexp.Symbol:
		return string(x), true
	case sexp.Int:
		return strconv.FormatInt(int64(x), 10), true
	default:
		return "", false
	}
}

// formatFloat writes non-finite values as inf, -inf and NaN.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
