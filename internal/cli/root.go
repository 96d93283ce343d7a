// Package cli implements the facets command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/facets/internal/paths"
	"github.com/mesh-intelligence/facets/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by bad input or arguments.
func userError(err error) error { return &exitError{code: exitUserError, err: err} }

// sysError marks err as an environment failure.
func sysError(err error) error { return &exitError{code: exitSysError, err: err} }

// ExitCode returns the exit code for an error returned by a command.
// Errors without a code, such as cobra's flag errors, are user errors.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
	delimiter string
}

// app is the state shared by the commands of one invocation, resolved
// before any subcommand runs.
type app struct {
	flags   rootFlags
	v       *viper.Viper
	cfg     types.Config
	dataDir string
	log     zerolog.Logger
}

// NewRootCmd creates the top-level "facets" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "facets",
		Short: "Faceted queries over in-memory tables",
		Long: "Facets loads delimited, JSON lines and SQLite inputs into memory and answers\n" +
			"which rows match a selection and which values stay reachable across joined tables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/facets)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "base directory for relative input paths (default: $(CWD))")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.StringVar(&a.flags.delimiter, "delimiter", "", "field delimiter for delimited input")
	_ = a.v.BindPFlag(cfgKeyLogLevel, pf.Lookup("log-level"))
	_ = a.v.BindPFlag(cfgKeyDelimiter, pf.Lookup("delimiter"))

	root.AddCommand(newVersionCmd())
	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newEvalCmd(a))
	root.AddCommand(newPossibleCmd(a))
	root.AddCommand(newValuesCmd(a))
	root.AddCommand(newJoinCmd(a))
	root.AddCommand(newShellCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "facets:", err)
		os.Exit(ExitCode(err))
	}
}

// setup resolves directories, loads config.yaml and attaches the logger to
// the command context.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := loadConfig(a.v, configDir); err != nil {
		return sysError(err)
	}
	cfg, err := decodeConfig(a.v)
	if err != nil {
		return userError(err)
	}
	a.cfg = cfg

	a.dataDir, err = paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	a.log, err = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return userError(err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(a.log.WithContext(ctx))
	a.log.Debug().Str("config_dir", configDir).Str("data_dir", a.dataDir).Msg("configured")
	return nil
}

// out returns the writer command output goes to.
func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
