package staticcmd

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-bower/internal/generator"
)

const (
	buildSiteMessageType = "bower.static.build"
	cleanSiteMessageType = "bower.static.clean"
)

var postIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ResultCallback receives the build result, including partial results of
// failed builds. It runs synchronously inside the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a static command execution.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand renders the site, optionally limited to some posts.
type BuildSiteCommand struct {
	PostIDs        []string       `json:"post_ids,omitempty"`
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures post identifiers look like output file stems.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	for _, id := range m.PostIDs {
		if !postIDPattern.MatchString(strings.TrimSpace(id)) {
			errs["post_ids"] = validation.NewError("bower.static.build.post_id_invalid", "post_ids must contain lowercase slugs")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CleanSiteCommand removes everything from the output directory.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message.
func (CleanSiteCommand) Validate() error { return nil }
