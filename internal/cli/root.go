// Package cli is the fractalreg command tree. It is the external interface
// layer: it resolves configuration, supplies the authenticated caller and
// the time reference, and formats registry results.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/fractalreg/internal/config"
	"github.com/roach88/fractalreg/internal/logging"
)

// RootOptions holds global flags and the configuration they resolve to.
type RootOptions struct {
	// ConfigPath is the --config flag.
	ConfigPath string

	// Config is resolved in PersistentPreRunE, before any subcommand runs.
	Config config.Config

	viper *viper.Viper
}

// NewRootCommand creates the root command for the fractalreg CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{viper: config.New()}

	cmd := &cobra.Command{
		Use:   "fractalreg",
		Short: "FractalRegistry - access grant registry",
		Long: `A registry of access grants: records that an owner account grants a
public key access to a piece of data, optionally time-locked.

Configuration is read from flags, FRACTALREG_* environment variables and
a YAML config file (--config, $FRACTALREG_CONFIG_PATH or ./fractalreg.yaml).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "config file path")
	pf.String(config.KeyDB, "fractalreg.db", "SQLite database path (:memory: for a throwaway store)")
	pf.String(config.KeyFormat, "text", "output format (json|text)")
	pf.String(config.KeyLogLevel, "info", "log level (debug|info|warn|error)")
	pf.String(config.KeyLogFormat, logging.LogFormatConsole, "log format (json|console)")
	pf.String(config.KeyEvents, config.EventsStderr, "where notifications go (stderr|stdout|log|none)")
	pf.String(config.KeyCaller, "", "authenticated caller account id")
	pf.Uint64(config.KeyNow, 0, "time reference in Unix nanoseconds (0 reads the system clock)")
	pf.BoolP(config.KeyVerbose, "v", false, "verbose output")
	// Binding only fails for a nil flag.
	_ = config.BindFlags(opts.viper, pf)

	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewGrantsForCommand(opts))
	cmd.AddCommand(NewDeriveIDCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// load resolves configuration and installs the logger on the command context.
func (o *RootOptions) load(cmd *cobra.Command) error {
	if err := config.ReadFile(o.viper, o.ConfigPath); err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	cfg, err := config.Load(o.viper)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg

	ctx, err := logging.Init(cmd.Context(),
		logging.WithLogLevel(cfg.LogLevel),
		logging.WithLogFormat(cfg.LogFormat),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize logging", err)
	}
	cmd.SetContext(ctx)
	return nil
}
