package cli

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/fractalreg/internal/clock"
	"github.com/roach88/fractalreg/internal/config"
	"github.com/roach88/fractalreg/internal/event"
	"github.com/roach88/fractalreg/internal/registry"
	"github.com/roach88/fractalreg/internal/store"
)

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Config.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Config.Verbose,
	}
}

// timeSource returns the configured time reference source.
func (o *RootOptions) timeSource() clock.Clock {
	if o.Config.Now != 0 {
		return clock.Fixed(o.Config.Now)
	}
	return clock.System{}
}

func (o *RootOptions) emitter(cmd *cobra.Command) event.Emitter {
	switch o.Config.Events {
	case config.EventsStdout:
		return event.NewWriterEmitter(cmd.OutOrStdout())
	case config.EventsLog:
		return event.LogEmitter{}
	case config.EventsNone:
		return event.Discard{}
	default:
		return event.NewWriterEmitter(cmd.ErrOrStderr())
	}
}

// openRegistry opens the configured store. The caller must call the
// returned close function.
func (o *RootOptions) openRegistry(cmd *cobra.Command) (*registry.Registry, func(), error) {
	st, err := store.Open(o.Config.DB)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	l := ctxzap.Extract(cmd.Context())
	l.Debug("database opened", zap.String("db", o.Config.DB))

	closeFn := func() {
		if err := st.Close(); err != nil {
			l.Error("failed to close database", zap.Error(err))
		}
	}
	return registry.New(st, registry.WithEmitter(o.emitter(cmd))), closeFn, nil
}

// call builds the ambient inputs of a mutating call.
func (o *RootOptions) call(out *OutputFormatter) (registry.Call, error) {
	if o.Config.Caller == "" {
		return registry.Call{}, NewExitError(ExitCommandError, "caller is required: set --caller or FRACTALREG_CALLER")
	}
	caller, err := registry.ParseCaller(o.Config.Caller)
	if err != nil {
		return registry.Call{}, out.RegistryError(err)
	}
	return registry.Call{Caller: caller, Now: o.timeSource().Now()}, nil
}
