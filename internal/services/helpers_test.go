package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yoockh/yoorecord/internal/logger"
	"github.com/yoockh/yoorecord/internal/models"
	"github.com/yoockh/yoorecord/internal/providers/stt"
	fsrepo "github.com/yoockh/yoorecord/internal/repositories/fs"
	"github.com/yoockh/yoorecord/internal/storage"
)

// stepClock returns successive instants, one per call.
type stepClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func at(h, m, s int) time.Time {
	return time.Date(2025, 5, 1, h, m, s, 0, time.Local)
}

type fakeTranscriber struct {
	res   *stt.Result
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, name string, audio []byte) (*stt.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type failingTranscripts struct{}

func (failingTranscripts) Write(context.Context, string, *models.Transcript) (string, error) {
	return "", errors.New("disk full")
}
func (failingTranscripts) LoadAll(context.Context) ([]models.Transcript, error) { return nil, nil }
func (failingTranscripts) Get(context.Context, string) (*models.Transcript, error) {
	return nil, errors.New("disk full")
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(context.Context) { c.n++ }

type fixture struct {
	blobs       *storage.LocalBlobStore
	transcripts *fsrepo.TranscriptRepo
	blobDir     string
	txDir       string
}

func newFixture(t *testing.T, clock func() time.Time) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		blobDir: filepath.Join(root, "uploads_raw"),
		txDir:   filepath.Join(root, "transcripts"),
	}
	f.blobs = storage.NewLocalBlobStore(f.blobDir, clock)
	f.transcripts = fsrepo.NewTranscriptRepo(f.txDir, logger.Discard())
	return f
}

func tptr(t time.Time) *time.Time { return &t }
