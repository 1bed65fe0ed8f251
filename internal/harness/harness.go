package harness

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/roach88/fractalreg/internal/event"
	"github.com/roach88/fractalreg/internal/grant"
	"github.com/roach88/fractalreg/internal/registry"
	"github.com/roach88/fractalreg/internal/store"
)

// Harness is the test execution engine for one scenario.
type Harness struct {
	scenario *Scenario
	store    store.Store
	registry *registry.Registry
	recorder *event.Recorder
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh store. Calls whose outcome differs
// from the step's expectation are recorded as result errors, not returned;
// an error return means the scenario could not be executed at all.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := openStore(scenario.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	rec := &event.Recorder{}
	h := &Harness{
		scenario: scenario,
		store:    st,
		recorder: rec,
		registry: registry.New(st,
			registry.WithEmitter(rec),
			registry.WithCallIDGenerator(registry.NewFixedGenerator("harness-"+scenario.Name)),
		),
	}

	result := NewResult()
	if err := h.executeFlow(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Registry: h.registry,
		Keys:     scenario.Keys,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	ctxzap.Extract(ctx).Debug("scenario finished",
		zap.String("scenario", scenario.Name),
		zap.Bool("pass", result.Pass),
		zap.Int("steps", len(result.Trace)),
	)
	return result, nil
}

func openStore(backend string) (store.Store, error) {
	switch backend {
	case "", StoreMemory:
		return store.NewMemory(), nil
	case StoreSQLite:
		return store.Open(":memory:")
	default:
		return nil, fmt.Errorf("unknown store %q", backend)
	}
}

// executeFlow runs all flow steps and validates expect clauses.
func (h *Harness) executeFlow(ctx context.Context, result *Result) error {
	for i, step := range h.scenario.Flow {
		ts := TraceStep{
			Seq:    i + 1,
			Invoke: step.Invoke,
			Caller: step.Caller,
			Now:    h.scenario.Now,
		}
		if ts.Caller == "" && !ts.query() {
			ts.Caller = h.scenario.Caller
		}
		if step.Now != nil {
			ts.Now = *step.Now
		}

		before := len(h.recorder.Events())
		grants, err := h.invoke(ctx, ts, step.Args)
		ts.Outcome = OutcomeOK
		if err != nil {
			code := registry.CodeOf(err)
			if code == "" {
				return fmt.Errorf("flow[%d] %s: %w", i, step.Invoke, err)
			}
			ts.Outcome = string(code)
		}
		ts.Grants = grants
		ts.Events = h.recorder.Events()[before:]
		result.Trace = append(result.Trace, ts)

		for _, msg := range checkExpect(ts, step.Expect, h.scenario.Keys) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
		}
	}
	return nil
}

// invoke makes one registry call, parsing arguments the way an external
// caller's would be.
func (h *Harness) invoke(ctx context.Context, ts TraceStep, args StepArgs) ([]grant.Grant, error) {
	grantee := resolveKey(h.scenario.Keys, args.Grantee)

	switch ts.Invoke {
	case OpInsertGrant, OpDeleteGrant:
		caller, err := registry.ParseCaller(ts.Caller)
		if err != nil {
			return nil, err
		}
		req := registry.GrantRequest{
			Grantee:     deref(grantee),
			DataID:      deref(args.DataID),
			LockedUntil: args.LockedUntil,
		}
		pk, err := req.Parse()
		if err != nil {
			return nil, err
		}

		call := registry.Call{Caller: caller, Now: ts.Now}
		if ts.Invoke == OpInsertGrant {
			_, err := h.registry.InsertGrant(ctx, call, pk, req.DataID, req.LockedUntil)
			return nil, err
		}
		return nil, h.registry.DeleteGrant(ctx, call, pk, req.DataID, req.LockedUntil)

	case OpFindGrants:
		q, err := registry.FindRequest{Owner: args.Owner, Grantee: grantee, DataID: args.DataID}.Parse()
		if err != nil {
			return nil, err
		}
		return h.registry.FindGrants(ctx, q)

	case OpGrantsFor:
		req := registry.GrantRequest{Grantee: deref(grantee), DataID: deref(args.DataID)}
		pk, err := req.Parse()
		if err != nil {
			return nil, err
		}
		return h.registry.GrantsFor(ctx, pk, req.DataID)

	default:
		return nil, fmt.Errorf("unknown operation %q", ts.Invoke)
	}
}

// checkExpect compares a step's outcome with its expect clause. A step
// without one must succeed.
func checkExpect(ts TraceStep, expect *ExpectClause, keys map[string]string) []string {
	want := OutcomeOK
	if expect != nil && expect.Error != "" {
		want = expect.Error
	}
	if ts.Outcome != want {
		return []string{fmt.Sprintf("expected outcome %s, got %s", want, ts.Outcome)}
	}
	if expect == nil {
		return nil
	}

	var errs []string
	if expect.Count != nil && len(ts.Grants) != *expect.Count {
		errs = append(errs, fmt.Sprintf("expected %d grants, got %d", *expect.Count, len(ts.Grants)))
	}
	if len(expect.Grants) > 0 {
		if msg := compareGrants(expect.Grants, ts.Grants, keys); msg != "" {
			errs = append(errs, msg)
		}
	}
	return errs
}

// compareGrants reports the first difference between want and got, or "".
func compareGrants(want []ExpectedGrant, got []grant.Grant, keys map[string]string) string {
	if len(want) != len(got) {
		return fmt.Sprintf("expected %d grants, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		g := got[i]
		wantKey := deref(resolveKey(keys, &w.Grantee))
		if w.Owner != g.Owner.String() || wantKey != g.Grantee.String() ||
			w.DataID != g.DataID || w.LockedUntil != g.LockedUntil {
			return fmt.Sprintf("grant %d: expected %s -> %s on %q (locked_until=%d), got %s",
				i, w.Owner, wantKey, w.DataID, w.LockedUntil, g)
		}
	}
	return ""
}

// resolveKey replaces a key alias with the key it names.
func resolveKey(keys map[string]string, s *string) *string {
	if s == nil {
		return nil
	}
	if k, ok := keys[*s]; ok {
		return &k
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
