package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fractalreg/internal/event"
)

func TestRun_TestdataGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		scenario, err := LoadScenario(f)
		require.NoError(t, err)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_SameTranscriptOnBothBackends(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, f := range files {
		scenario, err := LoadScenario(f)
		require.NoError(t, err)

		t.Run(scenario.Name, func(t *testing.T) {
			var transcripts []string
			for _, backend := range []string{StoreMemory, StoreSQLite} {
				scenario.Store = backend
				result, err := Run(context.Background(), scenario)
				require.NoError(t, err)
				require.True(t, result.Pass, "%s: %v", backend, result.Errors)

				transcript, err := result.Transcript(scenario.Name)
				require.NoError(t, err)
				transcripts = append(transcripts, transcript)
			}
			assert.Equal(t, transcripts[0], transcripts[1])
		})
	}
}

func TestRun_ReportsUnexpectedOutcome(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_expectation
description: the second insert is a duplicate but is expected to succeed
caller: alice.near
now: 1000
keys:
  bob: "ed25519:9jLkNAaW9E47LQMHvjohy2uAAyr1331bAxgJKFRU7wF6"
flow:
  - invoke: insert_grant
    args: {grantee: bob, data_id: A1}
  - invoke: insert_grant
    args: {grantee: bob, data_id: A1}
  - invoke: find_grants
    args: {owner: alice.near}
    expect: {count: 2}
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "flow[1] insert_grant: expected outcome ok, got DUPLICATE_GRANT", result.Errors[0])
	assert.Equal(t, "flow[2] find_grants: expected 2 grants, got 1", result.Errors[1])
}

func TestRun_InvalidArgumentsAreOutcomes(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: invalid_arguments
description: malformed inputs fail the call, not the run
now: 1000
flow:
  - invoke: insert_grant
    caller: Not An Account
    args: {grantee: "ed25519:9jLkNAaW9E47LQMHvjohy2uAAyr1331bAxgJKFRU7wF6", data_id: A1}
    expect: {error: INVALID_ARGUMENT}
  - invoke: insert_grant
    caller: alice.near
    args: {grantee: "ed25519:tooShort", data_id: A1}
    expect: {error: INVALID_ARGUMENT}
  - invoke: grants_for
    args: {data_id: A1}
    expect: {error: INVALID_ARGUMENT}
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Events())
}

func TestResult_Transcript(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace,
		TraceStep{Seq: 1, Invoke: OpFindGrants, Now: 7, Outcome: "INVALID_QUERY"},
		TraceStep{Seq: 2, Invoke: OpGrantsFor, Now: 7, Outcome: OutcomeOK},
	)

	transcript, err := result.Transcript("t")
	require.NoError(t, err)
	assert.Equal(t, "scenario: t\n[1] find_grants now=7 -> INVALID_QUERY\n[2] grants_for now=7 -> 0 grants\n", transcript)
}

func TestResult_Events(t *testing.T) {
	ins := event.New(event.GrantInserted, event.Data{DataID: "A1"})
	del := event.New(event.GrantDeleted, event.Data{DataID: "A1"})

	result := NewResult()
	result.Trace = []TraceStep{
		{Events: []event.Event{ins}},
		{},
		{Events: []event.Event{del}},
	}
	assert.Equal(t, []event.Event{ins, del}, result.Events())

	result.AddError("boom")
	assert.False(t, result.Pass)
	assert.True(t, strings.Contains(result.Errors[0], "boom"))
}
