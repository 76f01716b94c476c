package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"posort/internal/catalog"
	"posort/internal/config"
	perrors "posort/internal/errors"
	"posort/internal/slogutil"
	"posort/internal/version"

	"github.com/spf13/cobra"
)

// usageLine mirrors cobra's Use for flag error output.
const usageLine = "usage: posort [options] <filename>"

// expectedArgsMessage is printed when the argument count is wrong.
const expectedArgsMessage = "Expected 1 argument"

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitFlags = 2
)

type options struct {
	configPath string
	verbosity  int
	quiet      bool
	showConfig string
}

// flagError marks a command line that cobra could not parse.
type flagError struct {
	err error
}

func (e *flagError) Error() string { return e.err.Error() }
func (e *flagError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "posort [options] <filename>",
		Short: "Sort the entries of a gettext PO/POT catalog",
		Long: `posort rewrites a gettext PO or POT catalog in place with its entries
sorted by msgid, then msgctxt. The header entry stays first and obsolete
entries stay last. Metadata and every entry field are preserved.`,
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showConfig != "" {
				return nil
			}
			if len(args) != 1 {
				return perrors.New(perrors.UsageError, expectedArgsMessage, nil)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, opts, args, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("posort version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &flagError{err: err}
	})

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a json, yaml or toml config file")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress all log output")
	flags.StringVar(&opts.showConfig, "show-config", "", "Print the effective configuration (json, yaml or toml) and exit")
	flags.Lookup("show-config").NoOptDefVal = "yaml"

	return cmd
}

func runSort(cmd *cobra.Command, opts *options, args []string, stderr io.Writer) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return perrors.New(perrors.ConfigError, "cannot load config", err).WithPath(opts.configPath)
	}

	if opts.showConfig != "" {
		data, err := cfg.Marshal(opts.showConfig)
		if err != nil {
			return perrors.New(perrors.ConfigError, "cannot render config", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	level := slogutil.ResolveLevel(opts.verbosity, opts.quiet, cfg.Logging.Level)
	logger := slogutil.NewLogger(stderr, level)

	sorter := catalog.NewSorter(logger, catalog.WriteOptions{WrapWidth: cfg.WrapWidth})
	if _, err := sorter.SortFile(args[0]); err != nil {
		logFailure(logger, err)
		return err
	}
	return nil
}

func logFailure(logger *slog.Logger, err error) {
	code := perrors.CodeOf(err)
	if hint := perrors.GetHint(code); hint != "" {
		logger.Debug("Sort failed", "code", string(code), "hint", hint)
	}
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	var fe *flagError
	if errors.As(err, &fe) {
		fmt.Fprintln(stderr, usageLine)
		fmt.Fprintf(stderr, "Error: %v\n", fe)
		return exitFlags
	}

	switch perrors.CodeOf(err) {
	case perrors.UsageError, perrors.NotFound:
		// The argument and path checks report on stdout.
		fmt.Fprintln(stdout, messageOf(err))
	default:
		fmt.Fprintln(stderr, diagnostic(err))
	}
	return exitError
}

func messageOf(err error) string {
	var pe *perrors.PosortError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}

// diagnostic formats err as "Error: <path>:<line>: <reason>".
func diagnostic(err error) string {
	var pe *perrors.PosortError
	if !errors.As(err, &pe) {
		return "Error: " + err.Error()
	}

	reason := pe.Message
	if cause := pe.Unwrap(); cause != nil {
		reason = cause.Error()
	}
	if parseErr, ok := catalog.AsParseError(err); ok {
		reason = parseErr.Msg
		if parseErr.Line > 0 && pe.Path != "" {
			return fmt.Sprintf("Error: %s:%d: %s", pe.Path, parseErr.Line, reason)
		}
	}
	if pe.Path != "" {
		return fmt.Sprintf("Error: %s: %s", pe.Path, reason)
	}
	return "Error: " + reason
}
