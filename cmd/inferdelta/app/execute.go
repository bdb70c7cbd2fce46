package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/inferdelta/pkg/constants"
	"github.com/agentstation/inferdelta/pkg/delta"
	"github.com/agentstation/inferdelta/pkg/errors"
	"github.com/agentstation/inferdelta/pkg/reconciler"
)

// Execute runs the inferdelta CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "inferdelta [flags] <stated> <inferred> [additional] <output>",
		Short:   "Reconcile a stated relationship snapshot with its inferred form",
		Version: a.version,
		Long: `inferdelta compares a stated relationship snapshot with the inferred
snapshot a classifier produced from it and writes a release delta file that
moves the stated form toward the inferred one.

Stated relationships without an exact inferred counterpart are inactivated
and, where a replacement can be found, the replacement is activated. Rows in
the optional additional file are added as they are. The effective date is
taken from the 8-digit date in the output file name.`,
		Args:              validateArgs,
		PersistentPreRunE: a.setupCommand,
		RunE:              a.runReconcile,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.inferdelta.yaml)")
	pf.BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	pf.BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	pf.BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	// Reconciliation flags
	f := rootCmd.Flags()
	f.StringVarP(&a.config.Format, "format", "o", a.config.Format, "report format: table, wide, json, yaml")
	f.BoolVarP(&a.config.Interactive, "interactive", "i", false, "inspect concepts after the run; enter concept ids, quit to exit")
	f.BoolVar(&a.config.DryRun, "dry-run", a.config.DryRun, "plan and report the delta without writing it")
	f.StringVar(&a.config.Identifiers, "identifiers", a.config.Identifiers, "ids of activated and added rows: blank, keep, uuid")
	f.BoolVar(&a.config.IncludeIsA, "include-isa", a.config.IncludeIsA, "reconcile is-a relationships as well as attributes")
	f.Int64Var(&a.config.IsAType, "is-a-type", a.config.IsAType, "type id of is-a relationships")
	f.StringVar(&a.config.CharacteristicType, "characteristic-type", a.config.CharacteristicType, "characteristic type written on activated rows")
	f.IntVar(&a.config.MaxUnresolved, "max-unresolved", a.config.MaxUnresolved, "unresolved relationships listed in the report and log")
	f.StringVar(&a.config.MetricsFile, "metrics-file", a.config.MetricsFile, "write run metrics in Prometheus text format to this file")

	rootCmd.SetVersionTemplate("inferdelta {{.Version}}\n")

	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// validateArgs accepts 3 or 4 positional arguments.
func validateArgs(cmd *cobra.Command, args []string) error {
	return errors.WrapValidation("args", cobra.RangeArgs(3, 4)(cmd, args))
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		fileConfig, err := LoadConfig(mustGetString(cmd, "config"))
		if err != nil {
			return err
		}
		a.config.merge(fileConfig, cmd.Flags().Changed)
	}

	logger := NewLogger(a.config, a.logLevel)
	a.logger = &logger

	return nil
}

// reconcilerOptions builds reconciler options from the configuration.
func (a *App) reconcilerOptions() ([]reconciler.Option, error) {
	policy, err := delta.ParseIdentifierPolicy(a.config.Identifiers)
	if err != nil {
		return nil, err
	}
	return []reconciler.Option{
		reconciler.WithIdentifierPolicy(policy),
		reconciler.WithIncludeIsA(a.config.IncludeIsA),
		reconciler.WithIsAType(a.config.IsAType),
		reconciler.WithCharacteristicType(a.config.CharacteristicType),
		reconciler.WithDryRun(a.config.DryRun),
		reconciler.WithMaxUnresolved(a.config.MaxUnresolved),
		reconciler.WithProgressInterval(constants.ProgressInterval),
		reconciler.WithMetricsFile(a.config.MetricsFile),
	}, nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
