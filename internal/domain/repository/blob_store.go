package repository

import "context"

// BlobStore is the port for attachment storage. Put writes the bytes under a
// caller-chosen path (unique per logical attachment) and returns a
// retrievable URL. Callers must not link a URL they did not get back from a
// successful Put.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) (url string, err error)
}
