package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-bower/internal/metadata"
)

// MetadataDelimiter fences the metadata block at the top of a post:
//
//	---
//	(post (title "Hello") (date "2025-01-01"))
//	---
//	Markdown body...
const MetadataDelimiter = "---"

// SplitDocument separates the metadata block from the Markdown body and
// parses the block. A document without a fenced block is treated as having
// an empty one, which fails with metadata.ErrMissingHeader.
func SplitDocument(path string, source []byte) (metadata.Record, []byte, error) {
	var (
		record   metadata.Record
		parseErr error
		seen     bool
	)

	format := frontmatter.NewFormat(MetadataDelimiter, MetadataDelimiter, func(data []byte, _ any) error {
		seen = true
		record, parseErr = metadata.ParseRecord(path, string(data))
		return parseErr
	})

	body, err := frontmatter.Parse(bytes.NewReader(source), &record, format)
	if parseErr != nil {
		return metadata.Record{}, nil, parseErr
	}
	if err != nil {
		return metadata.Record{}, nil, fmt.Errorf("markdown split %s: %w", path, err)
	}
	if !seen {
		if opensBlock(source) {
			return metadata.Record{}, nil, &metadata.ParseError{
				Kind:   metadata.MissingHeader,
				Source: path,
				Reason: "metadata block is missing its closing " + MetadataDelimiter,
			}
		}
		if _, err := metadata.ParseRecord(path, ""); err != nil {
			return metadata.Record{}, nil, err
		}
	}
	return record, body, nil
}

// opensBlock reports whether the first non-blank line is the opening fence.
func opensBlock(source []byte) bool {
	for _, line := range bytes.Split(source, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		return string(line) == MetadataDelimiter
	}
	return false
}
