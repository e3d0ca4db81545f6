// Package trace reads measurement traces and writes filter estimates.
//
// Both are CSV with a millisecond timestamp in the first column. A trace row
// holds the measured values:
//
//	# time,x,y
//	0,1.02,0.98
//	100,1.21,1.05
//
// An estimate row holds the state followed by the diagonal of its
// covariance. Blobs whose names end in ".zst" or ".lz4" are transparently
// compressed; see Open and Create.
package trace
