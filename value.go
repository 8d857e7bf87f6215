package bower

import (
	"github.com/goliatone/go-bower/internal/markup"
	"github.com/goliatone/go-bower/internal/metadata"
	"github.com/goliatone/go-bower/pkg/sexp"
)

type (
	Value  = sexp.Value
	Null   = sexp.Null
	Bool   = sexp.Bool
	Int    = sexp.Int
	Float  = sexp.Float
	String = sexp.String
	Symbol = sexp.Symbol
	List   = sexp.List
	Vector = sexp.Vector
	Map    = sexp.Map
	Entry  = sexp.Entry

	// MetadataRecord is a parsed metadata block with its leading tag.
	MetadataRecord = metadata.Record
	// MetadataError reports a malformed metadata block.
	MetadataError = metadata.ParseError
)

var (
	ErrMissingHeader     = metadata.ErrMissingHeader
	ErrUnterminatedBlock = metadata.ErrUnterminatedBlock
)

// ParseMetadata reads a metadata block into flat string fields. source names
// the document in errors.
func ParseMetadata(source, text string) (map[string]string, error) {
	return metadata.Parse(source, text)
}

// ParseMetadataRecord is ParseMetadata that also returns the block's tag.
func ParseMetadataRecord(source, text string) (MetadataRecord, error) {
	return metadata.ParseRecord(source, text)
}

// Render converts a value tree to markup. It never fails.
func Render(v Value) string {
	return markup.Render(v)
}
