// Package metadata reads the parenthesized metadata block that heads every
// post, e.g.
//
//	(post
//	  (title "Hello")
//	  (date "2025-01-01"))
//
// Only the pairs one level inside the outer form are extracted. Anything
// nested deeper is kept as its flattened source text.
package metadata

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Record is a parsed metadata block.
type Record struct {
	// Tag is the symbol that opens the outer form ("post" above).
	Tag string
	// Fields holds the top-level pairs. Later duplicates overwrite earlier ones.
	Fields map[string]string
}

// Parse extracts the top-level key/value pairs of a metadata block. source
// identifies the document in errors.
func Parse(source, text string) (map[string]string, error) {
	record, err := ParseRecord(source, text)
	if err != nil {
		return nil, err
	}
	return record.Fields, nil
}

// ParseRecord is Parse plus the record tag.
func ParseRecord(source, text string) (Record, error) {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	if trimmed == "" {
		return Record{}, newParseError(MissingHeader, source, "metadata block is empty")
	}
	if trimmed[0] != '(' {
		return Record{}, newParseError(MissingHeader, source, fmt.Sprintf("expected '(' but found %q", firstRune(trimmed)))
	}

	// Text is copied byte for byte, so invalid UTF-8 survives unchanged.
	sc := newScanner()
	for i := 0; i < len(trimmed); {
		r, size := utf8.DecodeRuneInString(trimmed[i:])
		if sc.step(r, trimmed[i:i+size]) {
			return sc.record(), nil
		}
		i += size
	}

	if sc.state == stateInString {
		return Record{}, newParseError(UnterminatedBlock, source, "input ended inside a quoted string")
	}
	return Record{}, newParseError(UnterminatedBlock, source, fmt.Sprintf("input ended at nesting depth %d", sc.depth))
}

type state uint8

const (
	// stateAwaitingPair sits at depth 1 between pairs.
	stateAwaitingPair state = iota
	// stateReadingKey accumulates the key of a depth-2 pair.
	stateReadingKey
	// stateReadingValue accumulates the value of a depth-2 pair, including
	// any deeper content as raw text.
	stateReadingValue
	// stateInString treats every rune literally until the closing quote.
	stateInString
)

const pairDepth = 2

type scanner struct {
	state  state
	resume state
	depth  int

	// keepQuotes is set for strings nested below pairDepth, where the raw
	// text is preserved including its delimiters.
	keepQuotes bool

	tag     strings.Builder
	tagDone bool
	key     strings.Builder
	value   strings.Builder

	fields map[string]string
}

func newScanner() *scanner {
	return &scanner{
		state:  stateAwaitingPair,
		fields: map[string]string{},
	}
}

func (s *scanner) record() Record {
	return Record{
		Tag:    s.tag.String(),
		Fields: s.fields,
	}
}

// step consumes one rune, whose source bytes are raw, and reports whether
// the outer form just closed.
func (s *scanner) step(r rune, raw string) bool {
	if s.state == stateInString {
		s.stepString(r, raw)
		return false
	}

	switch {
	case r == '"':
		s.openString()
	case r == '(':
		s.open()
	case r == ')':
		return s.close()
	case unicode.IsSpace(r):
		s.space(raw)
	default:
		s.text(raw)
	}
	return false
}

func (s *scanner) open() {
	s.depth++
	switch {
	case s.depth < pairDepth:
		s.state = stateAwaitingPair
	case s.depth == pairDepth:
		s.tagDone = true
		s.key.Reset()
		s.value.Reset()
		s.state = stateReadingKey
	default:
		s.state = stateReadingValue
		s.value.WriteRune('(')
	}
}

func (s *scanner) close() bool {
	switch {
	case s.depth > pairDepth:
		s.value.WriteRune(')')
		s.depth--
		return false
	case s.depth == pairDepth:
		s.commit()
		s.depth--
		s.state = stateAwaitingPair
		return false
	default:
		s.depth--
		return s.depth == 0
	}
}

func (s *scanner) commit() {
	key := s.key.String()
	if key == "" {
		return
	}
	s.fields[key] = strings.TrimSpace(s.value.String())
}

func (s *scanner) openString() {
	s.keepQuotes = false
	switch {
	case s.depth > pairDepth:
		s.keepQuotes = true
		s.value.WriteRune('"')
		s.resume = stateReadingValue
	case s.state == stateReadingKey && s.key.Len() > 0:
		s.resume = stateReadingValue
	case s.state == stateAwaitingPair:
		s.tagDone = true
		s.resume = stateAwaitingPair
	default:
		s.resume = s.state
	}
	s.state = stateInString
}

func (s *scanner) stepString(r rune, raw string) {
	if r == '"' {
		if s.keepQuotes {
			s.value.WriteString(raw)
		}
		s.state = s.resume
		return
	}
	switch s.resume {
	case stateReadingKey:
		s.key.WriteString(raw)
	case stateReadingValue:
		s.value.WriteString(raw)
	}
}

func (s *scanner) space(raw string) {
	switch s.state {
	case stateReadingKey:
		if s.key.Len() > 0 {
			s.state = stateReadingValue
		}
	case stateReadingValue:
		s.value.WriteString(raw)
	case stateAwaitingPair:
		if s.tag.Len() > 0 {
			s.tagDone = true
		}
	}
}

func (s *scanner) text(raw string) {
	switch s.state {
	case stateReadingKey:
		s.key.WriteString(raw)
	case stateReadingValue:
		s.value.WriteString(raw)
	case stateAwaitingPair:
		if !s.tagDone {
			s.tag.WriteString(raw)
		}
	}
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
