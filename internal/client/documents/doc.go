// Package documents implements provider.DocumentStore backends: the
// clinicauth server over gRPC, Google Cloud Datastore, and S3-compatible
// object storage.
//
// Only the gRPC backend gets a true server timestamp. Datastore and S3 have
// no write-time stamping, so ServerTimestamp fields are filled with the
// client's UTC clock at write time.
package documents
