package object

import (
	"context"
	"io"
)

// Buckets the application uploads attachments into.
const (
	BucketImageUpload = "image.upload"
	BucketAudioUpload = "audio.upload"
)

// ErrNotFound is returned by Open when no object exists at the key.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "object not found" }

// ObjectStore defines the contract for saving and retrieving binary objects
// in named buckets.
type ObjectStore interface {
	Save(ctx context.Context, bucket, key, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	// PublicURL resolves the publicly reachable URL for a stored object.
	PublicURL(bucket, key string) string
}
