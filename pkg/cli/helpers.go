/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/rgvalidator/pkg/api"
	"github.com/NVIDIA/rgvalidator/pkg/serializer"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatJSON),
		Usage:   "Output format: " + strings.Join(serializer.SupportedFormats(), ", "),
	}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output destination: file path, - for stdout, or cm://namespace/name (default: stdout)",
	}
}

func policyFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "policy",
		Aliases: []string{"p"},
		Usage: `Scoring policy to apply instead of the built-in default.
	Supports: file paths, HTTP/HTTPS URLs, or ConfigMap URIs (cm://namespace/name).`,
		Sources: cli.EnvVars(api.EnvPolicy),
	}
}

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %s",
			outFormat, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return outFormat, nil
}

// writeResult serializes v to the --output destination, or to the command
// writer when none is given.
func writeResult(ctx context.Context, cmd *cli.Command, v any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	var s serializer.Serializer
	if out := strings.TrimSpace(cmd.String("output")); out == "" || out == serializer.StdoutURI {
		s = serializer.NewWriter(format, cmd.Root().Writer)
	} else {
		if s, err = serializer.NewFileWriterOrStdout(format, out); err != nil {
			return err
		}
	}

	if c, ok := s.(serializer.Closer); ok {
		defer func() {
			_ = c.Close()
		}()
	}

	if err := s.Serialize(ctx, v); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
