package images

import "context"

// Store archives uploaded label images and returns where they ended up.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
