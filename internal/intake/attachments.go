package intake

import (
	"context"
	"fmt"
	"io"
	"time"

	"triage-backend/internal/shared/storage/object"
	"triage-backend/internal/shared/util"
)

// Attachment categories and the single content type each accepts.
const (
	CategoryImage = "image"
	CategoryAudio = "audio"

	contentTypePNG = "image/png"
	contentTypeWAV = "audio/wav"
)

const maxAttachmentBytes = 10 << 20

// categoryFor maps an upload content type to its category and bucket.
func categoryFor(contentType string) (category, bucket string, ok bool) {
	switch contentType {
	case contentTypePNG:
		return CategoryImage, object.BucketImageUpload, true
	case contentTypeWAV:
		return CategoryAudio, object.BucketAudioUpload, true
	}
	return "", "", false
}

// storeAttachment writes the upload and returns its public URL. Keys are
// namespaced by a hash of the user ID so URLs never expose the raw ID, and
// carry a timestamp prefix so repeated uploads of the same file name never
// collide.
func storeAttachment(ctx context.Context, store object.ObjectStore, bucket, userID, fileName, contentType string, r io.Reader) (string, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%d-%s", util.HashUserKey(userID)[:16], time.Now().UnixMilli(), sanitized)
	if _, err := store.Save(ctx, bucket, key, contentType, io.LimitReader(r, maxAttachmentBytes)); err != nil {
		return "", err
	}
	return store.PublicURL(bucket, key), nil
}
