package fs

import (
	"context"
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoorecord/internal/models"
	"github.com/yoockh/yoorecord/internal/storage"
	"github.com/yoockh/yoorecord/internal/utils"
)

const transcriptExt = ".json"

// TranscriptRepo stores one JSON document per transcript in a directory.
type TranscriptRepo struct {
	dir string
	log *logrus.Logger
}

func NewTranscriptRepo(dir string, log *logrus.Logger) *TranscriptRepo {
	if log == nil {
		log = logrus.New()
	}
	return &TranscriptRepo{dir: dir, log: log}
}

func (r *TranscriptRepo) Write(ctx context.Context, baseName string, t *models.Transcript) (string, error) {
	const op = "TranscriptRepo.Write"

	if err := storage.ValidateName(baseName); err != nil {
		return "", utils.E(utils.CodeInvalidArgument, op, "invalid transcript name", err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to create transcript directory", utils.Kind(utils.ErrStorage, err))
	}

	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to encode transcript", utils.Kind(utils.ErrStorage, err))
	}

	// write-then-rename so readers never see a half-written file
	tmp, err := os.CreateTemp(r.dir, "."+baseName+"-*.tmp")
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to create transcript file", utils.Kind(utils.ErrStorage, err))
	}
	_, werr := tmp.Write(b)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	path := filepath.Join(r.dir, baseName+transcriptExt)
	if werr == nil {
		werr = os.Rename(tmp.Name(), path)
	}
	if werr != nil {
		_ = os.Remove(tmp.Name())
		return "", utils.E(utils.CodeInternal, op, "failed to write transcript", utils.Kind(utils.ErrStorage, werr))
	}
	return path, nil
}

func (r *TranscriptRepo) LoadAll(ctx context.Context) ([]models.Transcript, error) {
	const op = "TranscriptRepo.LoadAll"

	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read transcript directory", utils.Kind(utils.ErrStorage, err))
	}

	out := make([]models.Transcript, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, transcriptExt) || strings.HasPrefix(name, ".") || !e.Type().IsRegular() {
			continue
		}
		t, err := r.readFile(filepath.Join(r.dir, name))
		if err != nil {
			r.log.WithError(err).WithField("file", name).Warn("skipping unreadable transcript")
			continue
		}
		if t.Filename == "" {
			t.Filename = strings.TrimSuffix(name, transcriptExt)
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *TranscriptRepo) Get(ctx context.Context, baseName string) (*models.Transcript, error) {
	const op = "TranscriptRepo.Get"

	if err := storage.ValidateName(baseName); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid transcript name", err)
	}
	t, err := r.readFile(filepath.Join(r.dir, baseName+transcriptExt))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, utils.E(utils.CodeNotFound, op, "transcript not found", utils.Kind(utils.ErrNotFound, err))
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read transcript", utils.Kind(utils.ErrStorage, err))
	}
	if t.Filename == "" {
		t.Filename = baseName
	}
	return t, nil
}

func (r *TranscriptRepo) readFile(path string) (*models.Transcript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t models.Transcript
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
