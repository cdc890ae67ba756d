package media

import (
	"context"
	"errors"
	"io"
)

// Kind distinguishes the stored blob types so callers can scope deletes.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// Asset references an uploaded blob on the media host.
type Asset struct {
	URL      string
	PublicID string
}

// ErrHostUnavailable indicates the media host client is not configured.
var ErrHostUnavailable = errors.New("media host unavailable")

// Host is the external blob-storage boundary. Both calls are possibly-failing
// remote operations with no built-in retry.
type Host interface {
	Upload(ctx context.Context, kind Kind, name string, r io.Reader) (Asset, error)
	Delete(ctx context.Context, publicID string, kind Kind) error
}
