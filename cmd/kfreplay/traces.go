package main

import (
	"context"
	"strings"

	"github.com/hupe1980/kalman/blobstore"
)

// listTraces returns every blob under prefix that is not itself an estimate
// output.
func listTraces(ctx context.Context, store blobstore.BlobStore, prefix, outSuffix string) ([]string, error) {
	names, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	traces := names[:0]
	for _, name := range names {
		if outSuffix != "" && strings.Contains(name, outSuffix) {
			continue
		}
		traces = append(traces, name)
	}
	return traces, nil
}
