package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fractalreg/internal/grant"
	"github.com/roach88/fractalreg/internal/registry"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	Owner   string
	Grantee string
	DataID  string
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find",
		Short: "List grants matching every given criterion",
		Long: `List grants matching every given criterion. At least one of --owner or
--grantee is required.

Exit codes:
  0 - Query ran (possibly matching nothing)
  1 - Rejected (INVALID_QUERY, INVALID_ARGUMENT)
  2 - Command error

Examples:
  fractalreg find --owner alice.near
  fractalreg find --owner alice.near --data-id doc-1 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner account id")
	cmd.Flags().StringVar(&opts.Grantee, "grantee", "", "grantee public key")
	cmd.Flags().StringVar(&opts.DataID, "data-id", "", "data identifier")

	return cmd
}

func runFind(opts *FindOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	var req registry.FindRequest
	if cmd.Flags().Changed("owner") {
		req.Owner = &opts.Owner
	}
	if cmd.Flags().Changed("grantee") {
		req.Grantee = &opts.Grantee
	}
	if cmd.Flags().Changed("data-id") {
		req.DataID = &opts.DataID
	}

	q, err := req.Parse()
	if err != nil {
		return out.RegistryError(err)
	}

	reg, closeFn, err := opts.openRegistry(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	grants, err := reg.FindGrants(cmd.Context(), q)
	if err != nil {
		return out.RegistryError(err)
	}
	return outputGrants(out, grants)
}

// GrantsForOptions holds flags for the grants-for command.
type GrantsForOptions struct {
	*RootOptions
	Grantee string
	DataID  string
}

// NewGrantsForCommand creates the grants-for command.
func NewGrantsForCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GrantsForOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "grants-for",
		Short: "List grants giving a public key access to data, from any owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrantsFor(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Grantee, "grantee", "", "grantee public key")
	cmd.Flags().StringVar(&opts.DataID, "data-id", "", "data identifier")
	_ = cmd.MarkFlagRequired("grantee")
	_ = cmd.MarkFlagRequired("data-id")

	return cmd
}

func runGrantsFor(opts *GrantsForOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	req := registry.GrantRequest{Grantee: opts.Grantee, DataID: opts.DataID}
	grantee, err := req.Parse()
	if err != nil {
		return out.RegistryError(err)
	}

	reg, closeFn, err := opts.openRegistry(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	grants, err := reg.GrantsFor(cmd.Context(), grantee, req.DataID)
	if err != nil {
		return out.RegistryError(err)
	}
	return outputGrants(out, grants)
}

// outputGrants prints one grant per line, or a JSON list with ids.
func outputGrants(out *OutputFormatter, grants []grant.Grant) error {
	views := make([]GrantView, len(grants))
	lines := make([]string, len(grants))
	for i, g := range grants {
		views[i] = viewOf(g)
		lines[i] = views[i].ID + "  " + g.String()
	}

	text := "no grants"
	if len(lines) > 0 {
		text = strings.Join(lines, "\n")
	}
	return out.Result(text, views)
}
