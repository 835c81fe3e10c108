package services

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/klauspost/compress/zip"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoorecord/internal/storage"
	"github.com/yoockh/yoorecord/internal/utils"
)

const ArchiveName = "selected_recordings.zip"

// Archive is an in-memory zip of selected blobs.
type Archive struct {
	Name    string
	Data    []byte
	Entries []string // names actually added, in request order
}

type ExportService interface {
	BuildArchive(ctx context.Context, filenames []string) (*Archive, error)
}

type exportService struct {
	blobs storage.BlobStore
	log   *logrus.Logger
}

func NewExportService(blobs storage.BlobStore, log *logrus.Logger) ExportService {
	if log == nil {
		log = logrus.New()
	}
	return &exportService{blobs: blobs, log: log}
}

// BuildArchive zips every requested blob that exists. Unknown or invalid
// names are skipped; an archive with no entries is still a valid result.
func (s *exportService) BuildArchive(ctx context.Context, filenames []string) (*Archive, error) {
	const op = "ExportService.BuildArchive"

	if len(filenames) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no files selected", utils.ErrNoSelection)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	out := &Archive{Name: ArchiveName}
	seen := make(map[string]struct{}, len(filenames))

	for _, name := range filenames {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		added, err := s.addBlob(ctx, zw, name)
		if err != nil {
			_ = zw.Close()
			return nil, utils.E(utils.CodeInternal, op, "failed to build archive", err)
		}
		if added {
			out.Entries = append(out.Entries, name)
		} else {
			s.log.WithField("filename", name).Debug("export skipped missing recording")
		}
	}

	if err := zw.Close(); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to finish archive", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func (s *exportService) addBlob(ctx context.Context, zw *zip.Writer, name string) (bool, error) {
	b, err := s.blobs.Open(ctx, name)
	if errors.Is(err, utils.ErrNotFound) || errors.Is(err, utils.ErrInvalidName) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer b.Close()

	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	hdr.Modified = b.ModTime
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(w, b); err != nil {
		return false, err
	}
	return true, nil
}
