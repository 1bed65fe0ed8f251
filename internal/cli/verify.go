package cli

import (
	"github.com/spf13/cobra"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every grant is indexed exactly once under its own keys",
		Long: `Scan the grants table and the owner, grantee and data_id indices and
report every inconsistency between them.

Exit codes:
  0 - Indices consistent
  1 - Violations found
  2 - Command error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd)
		},
	}
}

func runVerify(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	reg, closeFn, err := opts.openRegistry(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := reg.Verify(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "verification failed to run", err)
	}

	if err := out.Result(report.String(), report); err != nil {
		return err
	}
	if !report.OK() {
		return NewExitError(ExitFailure, "index consistency violations found")
	}
	return nil
}
