// Package generator builds a static site: every post is evaluated through
// the theme's post and page templates, rendered to markup and written as
// <id>.html next to an index.html listing all posts. Incremental builds
// keep a manifest in the output directory and skip posts whose inputs did
// not change.
package generator
