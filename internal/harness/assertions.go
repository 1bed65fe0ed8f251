package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/fractalreg/internal/event"
	"github.com/roach88/fractalreg/internal/registry"
)

// AssertionContext provides what assertions need beyond the trace.
type AssertionContext struct {
	Ctx      context.Context
	Registry *registry.Registry
	Keys     map[string]string
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Events   []event.Event
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Events) > 0 {
		fmt.Fprintf(&buf, "\nEmitted events:\n")
		for i, ev := range e.Events {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s on %q\n",
				i+1, ev.Event, ev.Data.Owner, ev.Data.Grantee, ev.Data.DataID)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	events := result.Events()

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertEventCount:
			err = assertEventCount(events, a)
		case AssertEventOrder:
			err = assertEventOrder(events, a)
		case AssertFinalState:
			err = assertFinalState(actx, a)
		case AssertConsistent:
			err = assertConsistent(actx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return errs
}

// assertEventCount checks that exactly Count notifications of kind Event
// were emitted.
func assertEventCount(events []event.Event, a Assertion) error {
	count := 0
	for _, e := range events {
		if string(e.Event) == a.Event {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d %s events", a.Count, a.Event),
			Actual:   fmt.Sprintf("%d %s events", count, a.Event),
			Events:   events,
		}
	}
	return nil
}

// assertEventOrder checks that the emitted kinds are exactly Events.
func assertEventOrder(events []event.Event, a Assertion) error {
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = string(e.Event)
	}
	if !slices.Equal(kinds, a.Events) {
		return &AssertionError{
			Type:     AssertEventOrder,
			Expected: fmt.Sprintf("%v", a.Events),
			Actual:   fmt.Sprintf("%v", kinds),
			Events:   events,
		}
	}
	return nil
}

// assertFinalState queries the registry and compares the exact result.
func assertFinalState(actx *AssertionContext, a Assertion) error {
	q, err := registry.FindRequest{
		Owner:   a.Query.Owner,
		Grantee: resolveKey(actx.Keys, a.Query.Grantee),
		DataID:  a.Query.DataID,
	}.Parse()
	if err != nil {
		return fmt.Errorf("final_state query: %w", err)
	}

	got, err := actx.Registry.FindGrants(actx.Ctx, q)
	if err != nil {
		return fmt.Errorf("final_state query: %w", err)
	}

	if msg := compareGrants(a.Expect, got, actx.Keys); msg != "" {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%d grants", len(a.Expect)),
			Actual:   msg,
		}
	}
	return nil
}

// assertConsistent checks the index consistency invariant.
func assertConsistent(actx *AssertionContext) error {
	report, err := actx.Registry.Verify(actx.Ctx)
	if err != nil {
		return err
	}
	if !report.OK() {
		return &AssertionError{
			Type:     AssertConsistent,
			Expected: "indices consistent",
			Actual:   report.String(),
		}
	}
	return nil
}
