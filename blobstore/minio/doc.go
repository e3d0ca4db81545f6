// Package minio stores traces and estimates on MinIO or any other
// S3-compatible server (Ceph, Garage, SeaweedFS) through the MinIO client.
//
// # Basic Usage
//
//	store, err := minio.New(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "replays", "nightly/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Writes are streamed with an unknown content length, so the client switches
// to multipart uploads for large estimate files on its own.
package minio
