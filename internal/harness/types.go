package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/fractalreg/internal/event"
	"github.com/roach88/fractalreg/internal/grant"
)

// OutcomeOK is the outcome of a call that succeeded.
const OutcomeOK = "ok"

// TraceStep records one executed call.
type TraceStep struct {
	Seq    int    `json:"seq"`
	Invoke string `json:"invoke"`
	Caller string `json:"caller,omitempty"`
	Now    uint64 `json:"now"`

	// Outcome is OutcomeOK or the registry error code.
	Outcome string `json:"outcome"`

	// Grants is the result of a successful query step.
	Grants []grant.Grant `json:"grants,omitempty"`

	// Events are the notifications this call emitted.
	Events []event.Event `json:"events,omitempty"`
}

func (s TraceStep) query() bool {
	return s.Invoke == OpFindGrants || s.Invoke == OpGrantsFor
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed call in order.
	Trace []TraceStep `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceStep{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Events returns every notification in the trace, in emission order.
func (r *Result) Events() []event.Event {
	var out []event.Event
	for _, s := range r.Trace {
		out = append(out, s.Events...)
	}
	return out
}

// Transcript renders the trace as text, one header line per call followed
// by indented result grants or notification lines.
func (r *Result) Transcript(name string) (string, error) {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", name)

	for _, s := range r.Trace {
		fmt.Fprintf(&buf, "[%d] %s", s.Seq, s.Invoke)
		if s.Caller != "" {
			fmt.Fprintf(&buf, " caller=%s", s.Caller)
		}
		fmt.Fprintf(&buf, " now=%d -> ", s.Now)

		if s.query() && s.Outcome == OutcomeOK {
			fmt.Fprintf(&buf, "%d grants\n", len(s.Grants))
		} else {
			fmt.Fprintf(&buf, "%s\n", s.Outcome)
		}

		for _, g := range s.Grants {
			fmt.Fprintf(&buf, "    %s\n", g)
		}
		for _, e := range s.Events {
			line, err := e.Line()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&buf, "    %s\n", line)
		}
	}

	return buf.String(), nil
}
