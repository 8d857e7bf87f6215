// Command bower builds a static blog from posts with s-expression metadata
// blocks and a theme of expression templates.
//
//	bower build [-config site.hcl] [-force] [-dry-run] [-post id]...
//	bower clean [-config site.hcl]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/goliatone/go-bower/cmd/bower/internal/bootstrap"
	staticcmd "github.com/goliatone/go-bower/internal/commands/static"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("bower: %v", err)
	}
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			*s = append(*s, trimmed)
		}
	}
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	subcommand := "build"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		subcommand, args = args[0], args[1:]
	}
	if subcommand != "build" && subcommand != "clean" {
		return fmt.Errorf("unknown command %q (want build or clean)", subcommand)
	}

	fs := flag.NewFlagSet("bower "+subcommand, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to the HCL site file (defaults to ./site.hcl when present)")
	output := fs.String("output", "", "Override the output directory")
	force := fs.Bool("force", false, "Rebuild posts even when the manifest says they are current")
	dryRun := fs.Bool("dry-run", false, "Render everything but write nothing")
	logProvider := fs.String("log-provider", "", "Logger provider: console or gologger")
	logLevel := fs.String("log-level", "", "Minimum log level")
	logFormat := fs.String("log-format", "", "gologger output format: json, console or pretty")
	metricsFile := fs.String("metrics-file", "", "Write build metrics in the Prometheus textfile format")
	var postIDs stringList
	fs.Var(&postIDs, "post", "Only render this post ID (repeatable, comma separated)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath:  *configPath,
		OutputDir:   *output,
		LogProvider: *logProvider,
		LogLevel:    *logLevel,
		LogFormat:   *logFormat,
		MetricsFile: *metricsFile,
		LogWriter:   stderr,
	})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if subcommand == "clean" {
		if err := module.Clean.Execute(ctx, staticcmd.CleanSiteCommand{}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "cleaned %s\n", module.Config.Build.OutputDir)
		return nil
	}

	cmd := staticcmd.BuildSiteCommand{
		PostIDs: postIDs,
		Force:   *force,
		DryRun:  *dryRun,
		ResultCallback: func(env staticcmd.ResultEnvelope) {
			if env.Result == nil {
				return
			}
			r := env.Result
			verb := "built"
			if r.DryRun {
				verb = "would build"
			}
			fmt.Fprintf(stdout, "%s %d posts, skipped %d, %d errors in %s (build %s)\n",
				verb, r.PostsBuilt, r.PostsSkipped, len(r.Errors), r.Duration.Round(time.Millisecond), r.BuildID)
		},
	}
	buildErr := module.Build.Execute(ctx, cmd)

	if path := module.Config.Build.MetricsFile; path != "" && module.Metrics != nil {
		if err := module.Metrics.WriteTextfile(path); err != nil {
			module.Logger.Error("cli.metrics.write_failed", "path", path, "error", err)
		}
	}
	return buildErr
}
