package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yoockh/yoorecord/internal/models"
	"github.com/yoockh/yoorecord/internal/utils"
)

// maxSameSecond bounds the collision suffix search within one second.
const maxSameSecond = 1000

// LocalBlobStore keeps blobs as files in a single content directory.
type LocalBlobStore struct {
	dir string
	now func() time.Time
}

// NewLocalBlobStore returns a store rooted at dir. now defaults to time.Now.
func NewLocalBlobStore(dir string, now func() time.Time) *LocalBlobStore {
	if now == nil {
		now = time.Now
	}
	return &LocalBlobStore{dir: dir, now: now}
}

func (s *LocalBlobStore) Dir() string { return s.dir }

func (s *LocalBlobStore) Write(ctx context.Context, data []byte) (string, error) {
	const op = "BlobStore.Write"

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to create content directory", utils.Kind(utils.ErrStorage, err))
	}

	ts := s.now()
	for seq := 1; seq <= maxSameSecond; seq++ {
		if err := ctx.Err(); err != nil {
			return "", utils.E(utils.CodeInternal, op, "write cancelled", utils.Kind(utils.ErrStorage, err))
		}

		name := BlobName(ts, seq)
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", utils.E(utils.CodeInternal, op, "failed to create blob", utils.Kind(utils.ErrStorage, err))
		}

		_, werr := f.Write(data)
		cerr := f.Close()
		if werr == nil {
			werr = cerr
		}
		if werr != nil {
			_ = os.Remove(path)
			return "", utils.E(utils.CodeInternal, op, "failed to write blob", utils.Kind(utils.ErrStorage, werr))
		}
		return name, nil
	}

	return "", utils.E(utils.CodeInternal, op, "too many blobs within one second", utils.ErrStorage)
}

func (s *LocalBlobStore) List(ctx context.Context) ([]models.BlobEntry, error) {
	const op = "BlobStore.List"

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read content directory", utils.Kind(utils.ErrStorage, err))
	}

	out := make([]models.BlobEntry, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, BlobExt) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, models.BlobEntry{
			Filename:  name,
			Timestamp: ParseBlobName(name),
			SizeBytes: info.Size(),
		})
	}
	return out, nil
}

// Read returns the whole blob. Streaming callers use Open.
func (s *LocalBlobStore) Read(ctx context.Context, filename string) ([]byte, error) {
	b, err := s.Open(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	data, err := io.ReadAll(b)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "BlobStore.Read", "failed to read blob", utils.Kind(utils.ErrStorage, err))
	}
	return data, nil
}

func (s *LocalBlobStore) Open(ctx context.Context, filename string) (*Blob, error) {
	const op = "BlobStore.Open"

	path, err := s.path(op, filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, s.openErr(op, filename, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, utils.E(utils.CodeInternal, op, "failed to stat blob", utils.Kind(utils.ErrStorage, err))
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, utils.E(utils.CodeNotFound, op, "recording not found", utils.ErrNotFound)
	}
	return &Blob{ReadSeekCloser: f, Name: filename, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (s *LocalBlobStore) path(op, filename string) (string, error) {
	if err := ValidateName(filename); err != nil {
		return "", utils.E(utils.CodeInvalidArgument, op, "invalid filename", err)
	}
	return filepath.Join(s.dir, filename), nil
}

func (s *LocalBlobStore) openErr(op, filename string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return utils.E(utils.CodeNotFound, op, "recording not found", utils.Kind(utils.ErrNotFound, err))
	}
	return utils.E(utils.CodeInternal, op, "failed to read blob", utils.Kind(utils.ErrStorage, err))
}
