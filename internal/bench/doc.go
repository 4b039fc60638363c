// Package bench drives identical workloads through each storage backend
// and produces one comparable result record per backend.
//
// A run executes backends strictly sequentially. For each backend the
// harness runs two timed phases - rule addition, then message processing
// against seeded synthetic readings - while a sampler polls host process
// CPU and resident memory on a fixed cadence. One failing backend never
// aborts the run: its result carries a failure marker and the harness
// proceeds to the next.
//
// The JSON result artifact written at the end is the output contract
// consumed by external visualization; nothing else crosses that boundary.
package bench
