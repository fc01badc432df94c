// Package journal persists applied call records to SQLite so that test
// runs can be queried after the fact. Every call a double applies is
// mirrored into the journal with its logical sequence number, giving
// assertions a queryable view of execution order without holding the
// whole history in process memory.
//
// The journal is an in-memory database by default (Open(":memory:")).
// A file path can be given instead to keep the record across runs.
package journal
