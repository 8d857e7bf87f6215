// Package markdown loads posts from disk. A post is a fenced metadata block
// followed by a Markdown body; the block is parsed by internal/metadata and
// the body is converted to HTML with goldmark.
package markdown
