// Package store provides the durable tables behind the grant registry.
//
// The registry keeps four logical tables:
//   - grants: grant id -> grant record (the primary store)
//   - grant_ids_by_owner: owner -> ordered grant ids
//   - grant_ids_by_grantee: grantee -> ordered grant ids
//   - grant_ids_by_data_id: data id -> ordered grant ids
//
// The store does not enforce consistency between the primary table and the
// indices. That is the registry's job. What the store guarantees is that
// every Update runs as one atomic unit: either all of its writes commit or
// none of them are visible to any later View or Update.
//
// # Backends
//
//   - SQLite (Open): durable, WAL mode, one writer. Statements are built
//     with goqu against the sqlite3 dialect.
//   - Memory (NewMemory): process-local maps with an undo journal, used by
//     tests and by the scenario harness.
//
// # Index ordering
//
// Index lists preserve insertion order. Appending an id already present in
// a list, or removing an id that is not present, reports ErrIndexCorrupt:
// the registry never does either while the tables are consistent.
package store
