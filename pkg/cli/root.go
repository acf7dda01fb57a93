package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/rgvalidator/pkg/logging"
)

const (
	name           = "rgvalidator"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/rgvalidator/pkg/cli.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes returned by Execute.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitCanceled = 2
)

// NewCommand returns the root command writing results to out.
func NewCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Score Azure resource groups and virtual machines against a compliance policy",
		Version:               fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		EnableShellCompletion: true,
		Writer:                out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Output logs in JSON format",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := logging.LevelFromEnv()
			if cmd.Bool("debug") {
				level = slog.LevelDebug
			}
			logging.SetDefaultCLILogger(level, cmd.Bool("log-json"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			validateCmd(),
			policyCmd(),
		},
	}
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, out io.Writer, args []string) int {
	if err := NewCommand(out).Run(ctx, args); err != nil {
		slog.Error("command failed", "error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ExitCanceled
		}
		return ExitError
	}
	return ExitOK
}
