// Package replay runs recorded measurement traces through Kalman filters.
//
// A Job names a trace blob, an optional output blob and the model to filter
// with. The Runner decodes the trace (plain, zstd or lz4 CSV), sizes an arena
// with kalman.EstimateArenaSize from the first row, and feeds every row to
// Filter.Update. Rows the filter refuses, because they are older than the
// filter or make the innovation covariance singular, are counted in the
// Report's Rejected bitmap and the replay goes on.
//
//	runner := replay.NewRunner(blobstore.NewLocalStore("/data"),
//	    replay.WithController(resource.NewController(resource.Config{
//	        MemoryLimitBytes:     64 << 20,
//	        MaxConcurrentReplays: 4,
//	    })),
//	)
//	reports, err := runner.RunAll(ctx, jobs)
//
// Arenas draw their capacity from the resource controller, and each job is
// traced as an OpenTelemetry span named "replay.Run".
package replay
