package storage

import (
	"context"
	"io"
)

type Uploader interface {
	// Upload stores the object and returns a URL the client can fetch.
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (publicURL string, err error)
}
