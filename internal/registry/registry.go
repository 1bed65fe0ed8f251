package registry

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/roach88/fractalreg/internal/event"
	"github.com/roach88/fractalreg/internal/grant"
	"github.com/roach88/fractalreg/internal/store"
)

// Call carries the ambient inputs of one registry call.
type Call struct {
	// Caller is the authenticated account making the call. Mutating calls
	// act on grants owned by Caller.
	Caller grant.AccountID

	// Now is the time reference, in Unix nanoseconds, used for time-lock
	// checks.
	Now uint64
}

func (c Call) validate() error {
	if _, err := grant.ParseAccountID(string(c.Caller)); err != nil {
		return NewInvalidArgumentError("invalid caller", err)
	}
	return nil
}

// validateGrantee rejects keys that did not come through
// grant.ParsePublicKey, so one logical grant always derives one id.
func validateGrantee(k grant.PublicKey) error {
	if err := k.Validate(); err != nil {
		return NewInvalidArgumentError("invalid grantee", err)
	}
	return nil
}

// Registry is the grant registry over a Store.
//
// Registry holds no grant state of its own; every call reads and writes
// the store inside a single atomic unit.
type Registry struct {
	store   store.Store
	emitter event.Emitter
	callIDs CallIDGenerator
}

// Option configures a Registry.
type Option func(*Registry)

// WithEmitter sets where notifications go. Default: event.Discard.
func WithEmitter(e event.Emitter) Option {
	return func(r *Registry) {
		r.emitter = e
	}
}

// WithCallIDGenerator sets the correlation id source. Default: UUIDv7Generator.
func WithCallIDGenerator(g CallIDGenerator) Option {
	return func(r *Registry) {
		r.callIDs = g
	}
}

// New creates a Registry over s.
func New(s store.Store, opts ...Option) *Registry {
	r := &Registry{
		store:   s,
		emitter: event.Discard{},
		callIDs: UUIDv7Generator{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// logger returns the context logger tagged for one call.
func (r *Registry) logger(ctx context.Context, op string) *zap.Logger {
	return ctxzap.Extract(ctx).With(
		zap.String("call_id", r.callIDs.Generate()),
		zap.String("op", op),
	)
}

// emit hands committed notifications to the emitter. The call has already
// committed, so a failing emitter is logged rather than returned.
func (r *Registry) emit(ctx context.Context, l *zap.Logger, events ...event.Event) {
	for _, e := range events {
		if err := r.emitter.Emit(ctx, e); err != nil {
			l.Error("failed to emit event", zap.String("event", string(e.Event)), zap.Error(err))
		}
	}
}

// fileGrant writes g under id and appends id to all three indices.
func fileGrant(ctx context.Context, tx store.Tx, id string, g grant.Grant) error {
	if err := tx.Grants().Put(ctx, id, g); err != nil {
		return err
	}
	for _, name := range store.IndexNames {
		if err := tx.Index(name).Append(ctx, store.KeyOf(name, g), id); err != nil {
			return fmt.Errorf("file grant %s: %w", id, err)
		}
	}
	return nil
}

// unfileGrant removes g from the primary table and all three indices.
func unfileGrant(ctx context.Context, tx store.Tx, id string, g grant.Grant) error {
	if err := tx.Grants().Remove(ctx, id); err != nil {
		return err
	}
	for _, name := range store.IndexNames {
		if err := tx.Index(name).Remove(ctx, store.KeyOf(name, g), id); err != nil {
			return fmt.Errorf("unfile grant %s: %w", id, err)
		}
	}
	return nil
}
