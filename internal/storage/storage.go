package storage

import (
	"context"
	"io"
	"time"

	"github.com/yoockh/yoorecord/internal/models"
)

// BlobStore persists raw audio under timestamp-derived names.
type BlobStore interface {
	Write(ctx context.Context, data []byte) (filename string, err error)
	List(ctx context.Context) ([]models.BlobEntry, error)
	Read(ctx context.Context, filename string) ([]byte, error)
	Open(ctx context.Context, filename string) (*Blob, error)
}

// Blob is an opened stored file. Callers must Close it.
type Blob struct {
	io.ReadSeekCloser
	Name    string
	Size    int64
	ModTime time.Time
}

// Uploader copies objects to a remote bucket.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}
