package media

import (
	"context"
	"errors"
	"io"
)

var ErrNotConfigured = errors.New("media storage is not configured")

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Upload is what the media host hands back for a stored payload.
type Upload struct {
	URL      string
	PublicID string
	Kind     Kind
}

type Uploader interface {
	Upload(ctx context.Context, r io.Reader, filename string) (Upload, error)
}

type Deleter interface {
	Delete(ctx context.Context, publicID string, kind Kind) error
}
