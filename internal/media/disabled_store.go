package media

import (
	"context"
	"errors"
	"io"
)

// ErrStorageDisabled is returned when no bucket is configured.
var ErrStorageDisabled = errors.New("media storage is not configured")

// DisabledStore backs the media service when object storage is not set up.
// Catalog reads keep working; uploads fail with a dependency error.
type DisabledStore struct{}

func (DisabledStore) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrStorageDisabled
}

func (DisabledStore) Delete(context.Context, string) error {
	return ErrStorageDisabled
}

func (DisabledStore) PublicURL(name string) string {
	return name
}
