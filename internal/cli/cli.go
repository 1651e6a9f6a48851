// Package cli implements the envfmt command: read the parameters below a
// path, normalize their names and print them in the requested format.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akupila/envfmt"
	"github.com/akupila/envfmt/internal/config"
	"github.com/akupila/envfmt/internal/logger"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitError  = 1 // anything not classified below
	ExitUsage  = 2 // bad arguments, flags or format
	ExitSource = 3 // parameters could not be listed
	ExitKey    = 4 // a parameter name could not be turned into an identifier
	ExitOutput = 5 // rendered output could not be written
)

// ErrOutput wraps failures writing the rendered output.
var ErrOutput = errors.New("write output")

// Set at build time.
var version = "dev"

// A Source lists the parameters below a path.
type Source interface {
	List(ctx context.Context, path string) ([]envfmt.Parameter, error)
}

// App wires the command to its environment.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// NewSource builds the parameter source once configuration is resolved.
	NewSource func(ctx context.Context, cfg config.Config, log *zap.Logger) (Source, error)
}

// New returns an App using the process's standard streams and Parameter
// Store.
func New() *App {
	a := &App{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
	a.NewSource = a.paramStore
	return a
}

// Execute runs the command with args and returns the process exit code.
// Errors are reported on a single line on stderr.
func (a *App) Execute(ctx context.Context, args []string) int {
	cmd := a.NewRootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(a.Stderr, "envfmt: %s\n", strings.ReplaceAll(err.Error(), "\n", " "))
	}
	return ExitCode(err)
}

// NewRootCmd returns the envfmt command.
func (a *App) NewRootCmd() *cobra.Command {
	var cfg config.Config
	cmd := &cobra.Command{
		Use:   "envfmt <path> <format>",
		Short: "Print SSM parameters below a path as environment variables",
		Long: `Reads every parameter below path from AWS Systems Manager Parameter Store
and prints it in the given format, one of: ` + strings.Join(envfmt.FormatNames(), ", ") + `.

  envfmt /app/prod/ dot-env > .env
  envfmt /app/prod/ php-fpm --region eu-west-1 > env.conf

Parameter names are relative to path, upper-cased, with / replaced by _:
/app/prod/db/host becomes DB_HOST.`,
		Args:          exactArgs(2),
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Path = args[0]
			f, err := envfmt.ParseFormat(args[1])
			if err != nil {
				return err
			}
			cfg.Format = f
			if err := cfg.Validate(); err != nil {
				return usageError{err}
			}
			return a.Run(cmd.Context(), cfg)
		},
	}
	cfg.BindFlags(cmd.Flags())
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	cmd.SetIn(a.Stdin)
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)
	return cmd
}

// Run fetches, normalizes, renders and writes the parameters for cfg.
// Nothing is written unless every step succeeds.
func (a *App) Run(ctx context.Context, cfg config.Config) error {
	log, err := logger.New(a.Stderr, cfg.LogLevel(a.getenv))
	if err != nil {
		return usageError{err}
	}
	defer log.Sync() //nolint:errcheck

	src, err := a.NewSource(ctx, cfg, log)
	if err != nil {
		return err
	}

	params, err := src.List(ctx, cfg.Path)
	if err != nil {
		return err
	}

	vars, err := envfmt.NormalizeAll(cfg.Path, params)
	if err != nil {
		return err
	}
	log.Debug("normalized parameters", zap.Int("count", len(vars)), zap.Stringer("format", cfg.Format))

	out := cfg.Format.Render(vars)
	if cfg.Out == "" {
		if _, err := io.WriteString(a.Stdout, out); err != nil {
			return fmt.Errorf("%w: %w", ErrOutput, err)
		}
		return nil
	}
	if err := writeFile(cfg.Out, out); err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	log.Debug("wrote output", zap.String("file", cfg.Out))
	return nil
}

func (a *App) paramStore(ctx context.Context, cfg config.Config, log *zap.Logger) (Source, error) {
	awsCfg, err := cfg.AWS(ctx, a.Stdin, a.Stderr)
	if err != nil {
		return nil, &envfmt.SourceError{Path: cfg.Path, Err: err}
	}
	log.Debug("resolved aws config", zap.String("region", awsCfg.Region), zap.String("profile", cfg.Profile))
	return envfmt.NewParamStore(
		envfmt.WithConfig(awsCfg),
		envfmt.WithLogger(log),
	)
}

func (a *App) getenv(key string) string {
	if a.Getenv == nil {
		return ""
	}
	return a.Getenv(key)
}

// ExitCode maps an error returned by the command to an exit code.
func ExitCode(err error) int {
	var uerr usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &uerr), errors.Is(err, envfmt.ErrUnsupportedFormat):
		return ExitUsage
	case errors.Is(err, envfmt.ErrSourceUnavailable):
		return ExitSource
	case errors.Is(err, envfmt.ErrMalformedKey),
		errors.Is(err, envfmt.ErrEmptyIdentifier),
		errors.Is(err, envfmt.ErrDuplicateIdentifier):
		return ExitKey
	case errors.Is(err, ErrOutput):
		return ExitOutput
	}
	return ExitError
}

type usageError struct {
	err error
}

func (e usageError) Error() string { return "usage: " + e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{fmt.Errorf("%w: %s", err, cmd.UseLine())}
		}
		return nil
	}
}

// writeFile replaces name with data, via a temporary file in the same
// directory so a failed write leaves the old file in place.
func writeFile(name, data string) error {
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), name)
}
