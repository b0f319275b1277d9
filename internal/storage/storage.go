package storage

import "context"

// ObjectStore is the transfer contract between the pipeline and remote
// object storage. Buckets are role-scoped: uploads-source, guidance-output,
// and model-assets.
type ObjectStore interface {
	// Get downloads bucket/key to localPath, creating parent directories.
	Get(ctx context.Context, bucket, key, localPath string) error

	// Put uploads localPath to bucket/key with the given content type.
	Put(ctx context.Context, localPath, bucket, key, contentType string) error
}
