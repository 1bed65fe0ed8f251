package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/fractalreg/internal/grant"
	"github.com/roach88/fractalreg/internal/registry"
)

// DeriveOptions holds flags for the derive-id command.
type DeriveOptions struct {
	*RootOptions
	Owner       string
	Grantee     string
	DataID      string
	LockedUntil uint64
}

// NewDeriveIDCommand creates the derive-id command.
func NewDeriveIDCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeriveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "derive-id",
		Short: "Print the identifier of a grant without touching storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeriveID(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner account id")
	cmd.Flags().StringVar(&opts.Grantee, "grantee", "", "grantee public key")
	cmd.Flags().StringVar(&opts.DataID, "data-id", "", "data identifier")
	cmd.Flags().Uint64Var(&opts.LockedUntil, "locked-until", 0, "lock in Unix nanoseconds")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("grantee")
	_ = cmd.MarkFlagRequired("data-id")

	return cmd
}

func runDeriveID(opts *DeriveOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	owner, err := grant.ParseAccountID(opts.Owner)
	if err != nil {
		return out.RegistryError(registry.NewInvalidArgumentError("invalid owner", err))
	}
	grantee, err := grant.ParsePublicKey(opts.Grantee)
	if err != nil {
		return out.RegistryError(registry.NewInvalidArgumentError("invalid grantee", err))
	}

	view := viewOf(grant.Grant{
		Owner:       owner,
		Grantee:     grantee,
		DataID:      opts.DataID,
		LockedUntil: opts.LockedUntil,
	})
	return out.Result(view.ID, view)
}
