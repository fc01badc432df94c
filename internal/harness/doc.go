// Package harness runs declarative test scenarios against the double
// engine. A scenario YAML file declares surfaces, doubles, stub
// configuration, a flow of calls, and assertions over the observed trace.
//
// Scenarios execute with deterministic identities and a fresh in-memory
// journal, so the same scenario always produces a byte-identical trace.
// Golden files capture those traces as the source of truth for regression
// comparison.
//
// The harness exercises the real engine: every configured stub is
// registered through engine.Double.Configure, every call step goes through
// engine.Double.Call, and assertions read the actual inbox history and
// journal rows that execution produced.
package harness
