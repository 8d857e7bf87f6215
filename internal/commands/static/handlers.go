package staticcmd

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-bower/internal/commands"
	"github.com/goliatone/go-bower/internal/generator"
	"github.com/goliatone/go-bower/internal/logging"
	"github.com/goliatone/go-bower/pkg/interfaces"
)

// ErrServiceRequired is returned when a handler has no generator to call.
var ErrServiceRequired = errors.New("static commands: generator service is required")

// BuildSiteHandler runs generator builds through the shared command handler.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		result, err := service.Build(ctx, generator.BuildOptions{
			PostIDs: normalizeIDs(msg.PostIDs),
			Force:   msg.Force,
			DryRun:  msg.DryRun,
		})
		operation := "build"
		if msg.DryRun {
			operation = "dry_run"
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": operation,
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](logger),
		commands.WithOperation[BuildSiteCommand]("static.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.PostIDs) > 0 {
				fields["post_ids"] = len(msg.PostIDs)
			}
			if msg.Force {
				fields["force"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears generator output.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, _ CleanSiteCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](logger),
		commands.WithOperation[CleanSiteCommand]("static.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

func normalizeIDs(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, id := range values {
		trimmed := strings.TrimSpace(id)
		if _, ok := seen[trimmed]; ok || trimmed == "" {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
