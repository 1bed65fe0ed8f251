// Package harness runs conformance scenarios against the registry.
//
// A scenario is a YAML file listing registry calls, each made by a named
// caller at an explicit time reference, with optional expectations on the
// outcome. Every scenario runs against a fresh store, so scenarios are
// independent and deterministic. After the flow, assertions check the
// emitted notifications and the final state.
//
// The transcript of a run (each call, its outcome, the grants a query
// returned and the notification lines a mutation emitted) can be compared
// against a golden file:
//
//	go test ./internal/harness -update
//
// regenerates testdata/golden/*.golden.
package harness
