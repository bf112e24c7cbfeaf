// Command igor materializes niches from their thunderclouds into a
// consumer project, per the project manifest and each niche's settings
// file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/igor-vendor/igor/igor"
	"github.com/igor-vendor/igor/internal/cli"
	"github.com/igor-vendor/igor/internal/clip"
	"github.com/igor-vendor/igor/internal/logctx"
	"github.com/igor-vendor/igor/internal/manifest"
	"github.com/igor-vendor/igor/internal/report"
	"github.com/igor-vendor/igor/internal/watch"
)

const manifestFilename = "igor.toml"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(rawArgs []string) int {
	args := cli.Parse(rawArgs)

	if args.VersionRequested {
		fmt.Println("igor (dev build)")
		return 0
	}
	if args.HelpRequested || args.Command == "" {
		printUsage()
		return 0
	}

	logger := logctx.New(os.Stderr, args.BoolFlag("debug"))
	ctx := logctx.With(context.Background(), logger)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := os.Getwd()
	if err != nil {
		logger.Error("resolving working directory", "error", err)
		return 1
	}

	switch args.Command {
	case "run":
		return runCommand(ctx, root, args)
	case "watch":
		return watchCommand(ctx, root, args)
	case "init":
		return initCommand(ctx, root, args)
	case "reset":
		return resetCommand(ctx, root, args)
	default:
		fmt.Fprintf(os.Stderr, "igor: unknown command %q\n\n", args.Command)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println(`usage: igor <command> [flags]

commands:
  run     materialize every niche once
  watch   run with a live psychotropic dashboard
  init    scaffold a new project manifest and starter niche
  reset   remove the .igor-cache scratch directory

flags:
  --debug           verbose logging
  --history <dir>   save a run report to this directory
  --copy-summary    copy the run summary to the clipboard`)
}

func runTimestamp() string {
	return time.Now().UTC().Format("20060102-150405")
}

func loadProject(root string) (igor.Project, error) {
	cacheDir := filepath.Join(root, ".igor-cache")
	data, err := os.ReadFile(filepath.Join(root, manifestFilename))
	if err != nil {
		return igor.Project{}, fmt.Errorf("reading %s: %w", manifestFilename, err)
	}
	return manifest.BuildProject(root, cacheDir, data)
}

func runCommand(ctx context.Context, root string, args cli.Args) int {
	logger := logctx.From(ctx)

	project, err := loadProject(root)
	if err != nil {
		logger.Error("loading project", "error", err)
		return 1
	}
	project.Target = igor.OSTarget{Root: root}
	if v, ok := args.StringFlag("concurrency"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			project.Concurrency = n
		} else {
			logger.Warn("ignoring invalid --concurrency value", "value", v)
		}
	}

	result, err := igor.RunOnce(ctx, project, igor.NewWriteTracker())
	if err != nil {
		logger.Error("psychotropic validation failed", "error", err)
		return 1
	}

	summary := logResult(logger, result)

	if dir, ok := args.StringFlag("history"); ok {
		rr := report.FromResult(runTimestamp(), result)
		if path, err := report.Save(dir, rr); err != nil {
			logger.Warn("saving run report", "error", err)
		} else if path != "" {
			logger.Info("run report saved", "path", path)
		}
	}

	if args.BoolFlag("copy-summary") {
		if err := clip.CopySummary(summary); err != nil {
			logger.Warn("copying summary to clipboard", "error", err)
		}
	}

	return igor.ExitCode(result)
}

func watchCommand(ctx context.Context, root string, args cli.Args) int {
	logger := logctx.From(ctx)

	project, err := loadProject(root)
	if err != nil {
		logger.Error("loading project", "error", err)
		return 1
	}
	project.Target = igor.OSTarget{Root: root}

	names := make([]string, 0, len(project.Cues))
	for _, c := range project.Cues {
		names = append(names, c.Name)
	}

	updates := make(chan watch.StateUpdate, len(names)*4+1)
	project.OnCueState = func(name string, state igor.CueState) {
		select {
		case updates <- watch.StateUpdate{Name: name, State: state}:
		default:
		}
	}

	done := make(chan int, 1)
	go func() {
		result, err := igor.RunOnce(ctx, project, igor.NewWriteTracker())
		close(updates)
		if err != nil {
			logger.Error("psychotropic validation failed", "error", err)
			done <- 1
			return
		}
		logResult(logger, result)
		done <- igor.ExitCode(result)
	}()

	if err := watch.Run(ctx, names, updates); err != nil {
		logger.Error("dashboard exited", "error", err)
	}

	return <-done
}

// starterNicheName is the one niche initCommand scaffolds so a fresh
// project has something for `igor run` to materialize immediately.
const starterNicheName = "example"

// initCommand scaffolds a new consumer project: a manifest at
// igor.toml declaring one psychotropic cue, a niches directory, and one
// starter niche carrying a settings file and a thundercloud directory
// holding a single dot_README.md. Modeled on the teacher's Scaffold:
// refuse to clobber an existing manifest, then generate.
func initCommand(ctx context.Context, root string, args cli.Args) int {
	logger := logctx.From(ctx)

	manifestPath := filepath.Join(root, manifestFilename)
	if _, err := os.Stat(manifestPath); err == nil {
		logger.Error("init", "error", fmt.Sprintf("%s already exists", manifestFilename))
		return 1
	}

	nicheDir := filepath.Join(root, manifest.DefaultNichesDirectory, starterNicheName)
	cloudDir := filepath.Join(nicheDir, "cloud")
	if err := os.MkdirAll(cloudDir, 0o755); err != nil {
		logger.Error("init", "error", fmt.Sprintf("creating %s: %v", cloudDir, err))
		return 1
	}

	settingsPath := filepath.Join(nicheDir, manifest.SettingsFilename)
	settings := "[thundercloud]\ndirectory = \"cloud\"\n"
	if err := os.WriteFile(settingsPath, []byte(settings), 0o644); err != nil {
		logger.Error("init", "error", fmt.Sprintf("writing %s: %v", settingsPath, err))
		return 1
	}

	readme := filepath.Join(cloudDir, "dot_README.md")
	if err := os.WriteFile(readme, []byte("# example niche\n\nReplace this thundercloud with real files.\n"), 0o644); err != nil {
		logger.Error("init", "error", fmt.Sprintf("writing %s: %v", readme, err))
		return 1
	}

	manifestBody := fmt.Sprintf("niches-directory = %q\n\n[[psychotropic.cues]]\nname = %q\n",
		manifest.DefaultNichesDirectory, starterNicheName)
	if err := os.WriteFile(manifestPath, []byte(manifestBody), 0o644); err != nil {
		logger.Error("init", "error", fmt.Sprintf("writing %s: %v", manifestPath, err))
		return 1
	}

	logger.Info("init: scaffolded project", "manifest", manifestPath, "niche", nicheDir)
	return 0
}

// resetCommand removes the .igor-cache scratch directory (git-backed
// thundercloud checkouts and any other run-local state), the same
// clean-slate shape as the teacher's *Reset methods.
func resetCommand(ctx context.Context, root string, args cli.Args) int {
	logger := logctx.From(ctx)

	cacheDir := filepath.Join(root, ".igor-cache")
	if err := os.RemoveAll(cacheDir); err != nil {
		logger.Error("reset", "error", fmt.Sprintf("removing %s: %v", cacheDir, err))
		return 1
	}

	logger.Info("reset: cache cleared", "path", cacheDir)
	return 0
}

func logResult(logger interface {
	Info(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
}, result igor.RunResult) string {
	summary := ""
	for _, n := range result.Niches {
		line := fmt.Sprintf("niche=%s state=%s planned=%d emitted=%d skipped=%d warnings=%d",
			n.Niche, n.State, n.Planned, n.Emitted, n.Skipped, len(n.Warnings))
		summary += line + "\n"
		if n.Err != nil {
			logger.Error("niche failed", "niche", n.Niche, "error", n.Err)
		} else {
			logger.Info("niche complete", "niche", n.Niche, "state", n.State.String(),
				"planned", n.Planned, "emitted", n.Emitted, "skipped", n.Skipped)
		}
		for _, w := range n.Warnings {
			logger.Warn(w.Message, "niche", n.Niche, "path", w.Path)
		}
	}
	return summary
}
