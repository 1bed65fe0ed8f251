package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fractalreg/internal/grant"
	"github.com/roach88/fractalreg/internal/registry"
)

// GrantOptions holds flags shared by insert and delete.
type GrantOptions struct {
	*RootOptions
	Grantee     string
	DataID      string
	LockedUntil uint64
}

func (o *GrantOptions) addFlags(cmd *cobra.Command, lockUsage string) {
	cmd.Flags().StringVar(&o.Grantee, "grantee", "", "grantee public key (ed25519:<base58> or secp256k1:<base58>)")
	cmd.Flags().StringVar(&o.DataID, "data-id", "", "data identifier")
	cmd.Flags().Uint64Var(&o.LockedUntil, "locked-until", 0, lockUsage)
	_ = cmd.MarkFlagRequired("grantee")
	_ = cmd.MarkFlagRequired("data-id")
}

// request builds the grant request, leaving LockedUntil absent unless the
// flag was given.
func (o *GrantOptions) request(cmd *cobra.Command) registry.GrantRequest {
	req := registry.GrantRequest{Grantee: o.Grantee, DataID: o.DataID}
	if cmd.Flags().Changed("locked-until") {
		lock := o.LockedUntil
		req.LockedUntil = &lock
	}
	return req
}

// GrantView is a grant with its identifier, as printed in JSON output.
type GrantView struct {
	ID string `json:"id"`
	grant.Grant
}

func viewOf(g grant.Grant) GrantView {
	return GrantView{ID: g.ID(), Grant: g}
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GrantOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Grant a public key access to data",
		Long: `Record that the caller grants a public key access to a piece of data.

With --locked-until the grant cannot be deleted until that time (Unix
nanoseconds) has passed.

Exit codes:
  0 - Grant inserted
  1 - Rejected (DUPLICATE_GRANT, INVALID_ARGUMENT)
  2 - Command error

Examples:
  fractalreg insert --caller alice.near --grantee ed25519:9jLk... --data-id doc-1
  fractalreg insert --caller alice.near --grantee ed25519:9jLk... --data-id doc-1 --locked-until 1717243200000000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, cmd)
		},
	}
	opts.addFlags(cmd, "time in Unix nanoseconds before which the grant cannot be deleted")

	return cmd
}

func runInsert(opts *GrantOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	req := opts.request(cmd)
	grantee, err := req.Parse()
	if err != nil {
		return out.RegistryError(err)
	}
	call, err := opts.call(out)
	if err != nil {
		return err
	}

	reg, closeFn, err := opts.openRegistry(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	id, err := reg.InsertGrant(cmd.Context(), call, grantee, req.DataID, req.LockedUntil)
	if err != nil {
		return out.RegistryError(err)
	}

	stored, err := reg.FindGrants(cmd.Context(), registry.Query{Owner: &call.Caller, Grantee: &grantee, DataID: &req.DataID})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read back grant", err)
	}
	view := GrantView{ID: id}
	for _, g := range stored {
		if g.ID() == id {
			view.Grant = g
		}
	}
	out.VerboseLog("caller=%s now=%d", call.Caller, call.Now)
	return out.Result(fmt.Sprintf("inserted %s", id), view)
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GrantOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the caller's grants to a public key",
		Long: `Delete the caller's grants giving a public key access to a piece of data.

Without --locked-until (or with 0) every matching grant is deleted;
otherwise only the grant with exactly that lock. If any of them is still
time-locked at --now, nothing is deleted.

Exit codes:
  0 - Matching grants deleted (possibly none)
  1 - Rejected (TIMELOCKED, INVALID_ARGUMENT)
  2 - Command error

Examples:
  fractalreg delete --caller alice.near --grantee ed25519:9jLk... --data-id doc-1
  fractalreg delete --caller alice.near --grantee ed25519:9jLk... --data-id doc-1 --locked-until 1717243200000000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, cmd)
		},
	}
	opts.addFlags(cmd, "delete only the grant with this lock (0 deletes every match)")

	return cmd
}

func runDelete(opts *GrantOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	req := opts.request(cmd)
	grantee, err := req.Parse()
	if err != nil {
		return out.RegistryError(err)
	}
	call, err := opts.call(out)
	if err != nil {
		return err
	}

	reg, closeFn, err := opts.openRegistry(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := reg.DeleteGrant(cmd.Context(), call, grantee, req.DataID, req.LockedUntil); err != nil {
		return out.RegistryError(err)
	}

	out.VerboseLog("caller=%s now=%d", call.Caller, call.Now)
	return out.Result("deleted", map[string]any{
		"owner":   call.Caller,
		"grantee": grantee,
		"data_id": req.DataID,
	})
}
