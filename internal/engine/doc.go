// Package engine implements the rules engine that matches sensor readings
// against stored rules.
//
// The engine is a thin orchestrator: rules live in a storage.Backend, the
// condition language lives in package rule, and the engine's only state of
// its own is the statistics accumulator. Processing is strictly sequential -
// one message at a time, every rule evaluated in storage-returned order with
// no short-circuit, so cumulative alerting works the way IoT rule sets
// expect.
package engine
