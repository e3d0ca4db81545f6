// Package s3 stores traces and estimates in Amazon S3.
//
// # Usage
//
//	store, err := s3.NewFromConfig(ctx, "my-bucket", "replays/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	runner := replay.NewRunner(store)
//
// Writes go through the SDK upload manager, so large estimate files are sent
// as multipart uploads and a failed or aborted write is cleaned up instead of
// leaving orphaned parts.
package s3
