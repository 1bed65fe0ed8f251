package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Store selects the backend: "memory" (default) or "sqlite", an
	// in-memory SQLite database.
	Store string `yaml:"store,omitempty"`

	// Caller is the default caller for steps that do not name one.
	Caller string `yaml:"caller,omitempty"`

	// Now is the default time reference in Unix nanoseconds. Required.
	Now uint64 `yaml:"now"`

	// Keys maps short names to public keys. Grantee arguments and expected
	// grantees may use either.
	Keys map[string]string `yaml:"keys,omitempty"`

	// Flow lists the calls to make, in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the notifications and final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Operations a flow step may invoke.
const (
	OpInsertGrant = "insert_grant"
	OpDeleteGrant = "delete_grant"
	OpFindGrants  = "find_grants"
	OpGrantsFor   = "grants_for"
)

// Backends a scenario may select.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// FlowStep is one registry call.
type FlowStep struct {
	// Invoke is the operation name.
	Invoke string `yaml:"invoke"`

	// Caller overrides Scenario.Caller.
	Caller string `yaml:"caller,omitempty"`

	// Now overrides Scenario.Now.
	Now *uint64 `yaml:"now,omitempty"`

	Args StepArgs `yaml:"args"`

	// Expect validates the outcome. If nil, the call must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// StepArgs are the call arguments. Absent fields are absent arguments.
type StepArgs struct {
	Owner       *string `yaml:"owner,omitempty"`
	Grantee     *string `yaml:"grantee,omitempty"`
	DataID      *string `yaml:"data_id,omitempty"`
	LockedUntil *uint64 `yaml:"locked_until,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected error code, e.g. DUPLICATE_GRANT. Empty means
	// the call must succeed.
	Error string `yaml:"error,omitempty"`

	// Grants is the exact, ordered result of a query step.
	Grants []ExpectedGrant `yaml:"grants,omitempty"`

	// Count is the expected number of grants a query step returns.
	Count *int `yaml:"count,omitempty"`
}

// ExpectedGrant is a grant as written in a scenario.
type ExpectedGrant struct {
	Owner       string `yaml:"owner"`
	Grantee     string `yaml:"grantee"`
	DataID      string `yaml:"data_id"`
	LockedUntil uint64 `yaml:"locked_until"`
}

// Assertion validates notifications or final state after the flow.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Event is the notification kind (event_count).
	Event string `yaml:"event,omitempty"`

	// Count is the expected number of notifications (event_count).
	Count int `yaml:"count,omitempty"`

	// Events is the exact sequence of notification kinds (event_order).
	Events []string `yaml:"events,omitempty"`

	// Query selects grants (final_state). Owner or grantee is required.
	Query *StepArgs `yaml:"query,omitempty"`

	// Expect is the exact, ordered query result (final_state). Empty means
	// no grant matches.
	Expect []ExpectedGrant `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertEventCount = "event_count"
	AssertEventOrder = "event_order"
	AssertFinalState = "final_state"
	AssertConsistent = "consistent"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Store {
	case "", StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", s.Store)
	}

	if s.Now == 0 {
		return fmt.Errorf("now is required and must be positive")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		switch step.Invoke {
		case OpInsertGrant, OpDeleteGrant:
			if step.Caller == "" && s.Caller == "" {
				return fmt.Errorf("flow[%d]: caller is required for %s", i, step.Invoke)
			}
		case OpFindGrants, OpGrantsFor:
		case "":
			return fmt.Errorf("flow[%d]: invoke is required", i)
		default:
			return fmt.Errorf("flow[%d]: unknown operation %q", i, step.Invoke)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertFinalState:
		if a.Query == nil {
			return fmt.Errorf("assertions[%d]: query is required for final_state", index)
		}
	case AssertConsistent:
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
