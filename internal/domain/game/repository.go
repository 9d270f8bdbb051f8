package game

import (
	"context"
	"errors"
)

// ErrMalformed marks a document that cannot become a valid Record. The
// loader skips such documents and keeps going.
var ErrMalformed = errors.New("malformed game record")

// Repository lists and decodes raw game documents. Sources are opaque,
// stable identifiers (file names for the filesystem implementation);
// ListSources returns them in the order that decides duplicate-id wins.
type Repository interface {
	ListSources(ctx context.Context) ([]string, error)
	Load(ctx context.Context, source string) (Record, error)
}
