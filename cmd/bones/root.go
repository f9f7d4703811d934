// Package bones implements the bones CLI command tree using cobra. Every
// leaf command prints exactly one JSON value to stdout — the requested
// payload on success, or {"error": "..."} on failure — and exits 1 on
// failure.
package bones

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bones-game/bones/internal/orchestrator"
	"github.com/bones-game/bones/internal/output"
	"github.com/bones-game/bones/internal/workdir"
)

// envLogFile redirects slog to a file if BONES_LOG_FILE is set. Diagnostics
// never go to stdout — only JSON command payloads do.
const envLogFile = "BONES_LOG_FILE"

func initLogFile() *os.File {
	path := os.Getenv(envLogFile)
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return f
}

var rootCmd = &cobra.Command{
	Use:           "bones",
	Short:         "Bones runs a competitive multi-agent code-review tournament",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// SetVersion sets the version string reported by `bones --version`.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command, exiting 1 if it returned an error. Every
// leaf command has already reported {"error": "..."} to stdout by the time
// this sees the error, so there is nothing left to print here.
func Execute() {
	if f := initLogFile(); f != nil {
		defer f.Close()
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "phase", Title: "Phase commands:"},
		&cobra.Group{ID: "agent", Title: "Agent commands:"},
		&cobra.Group{ID: "query", Title: "Read-only queries:"},
	)
}

// withOrchestrator resolves the data directory, opens the store, runs fn,
// and closes the store — converting any error into the CLI's JSON error
// payload before returning it so cobra's Execute exits 1 without printing
// anything further.
func withOrchestrator(fn func(o *orchestrator.Orchestrator) error) error {
	dir, err := workdir.ResolveDataDir()
	if err != nil {
		output.JSONError(err.Error())
		return err
	}

	o, err := orchestrator.Open(dir)
	if err != nil {
		output.JSONError(err.Error())
		return err
	}
	defer o.Close()

	if err := fn(o); err != nil {
		output.JSONError(err.Error())
		return err
	}
	return nil
}
