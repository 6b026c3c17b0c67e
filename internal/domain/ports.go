package domain

import (
	"context"
	"io"
)

// HotelStore persists the whole hotel collection as one unit. Load returns an
// empty slice when nothing has been saved yet; Save replaces everything.
type HotelStore interface {
	Load(ctx context.Context) ([]Hotel, error)
	Save(ctx context.Context, hotels []Hotel) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	// SetNX stores v only when key holds nothing and reports whether it did.
	SetNX(ctx context.Context, key string, v any, ttlSec int) (bool, error)
	Del(ctx context.Context, key string) error
}

// FileStore keeps uploaded image bytes under a generated name.
type FileStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader, size int64) error
	Delete(ctx context.Context, name string) error
}
