// Package ingestion tracks document ingestion jobs.
//
// Trigger records a job as running and hands it to the Runner, a bounded
// worker pool that marks it completed after a fixed delay. When the pool is
// stopped or its queue is full the job is left pending. Jobs that never
// finish are reclaimed by SweepStuckJobs, either on demand or from a Sweeper
// loop, which completes every running or pending job older than a threshold.
//
// Job lifecycle:
//
//	running -> completed  (worker or sweep)
//	running -> failed     (completion could not be recorded)
//	pending -> completed  (sweep only)
package ingestion
