package services

import (
	"bytes"
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoorecord/config"
	"github.com/yoockh/yoorecord/internal/models"
	"github.com/yoockh/yoorecord/internal/providers/stt"
	pgrepo "github.com/yoockh/yoorecord/internal/repositories/postgres"
	"github.com/yoockh/yoorecord/internal/storage"
	"github.com/yoockh/yoorecord/internal/utils"
)

// Transcriber is the black-box engine as the orchestrator sees it.
// workers.TranscribePool satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, name string, audio []byte) (*stt.Result, error)
}

// Invalidator drops cached listings after new data lands.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type IngestResult struct {
	Filename string

	Transcribed    bool
	TranscriptPath string
	Text           string
	Language       *string
	Duration       *float64
}

type IngestService interface {
	Ingest(ctx context.Context, data []byte) (*IngestResult, error)
}

// IngestDeps lists collaborators; Blobs is required, the rest are optional.
type IngestDeps struct {
	Blobs       storage.BlobStore
	Transcripts TranscriptRepository
	Transcriber Transcriber
	Catalog     pgrepo.RecordingRepository
	Mirror      storage.Uploader
	Records     Invalidator
	Logger      *logrus.Logger
	Now         func() time.Time
}

type ingestService struct {
	cfg  config.TranscriptionConfig
	deps IngestDeps
	log  *logrus.Logger
}

func NewIngestService(cfg config.TranscriptionConfig, deps IngestDeps) IngestService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = logrus.New()
	}
	return &ingestService{cfg: cfg, deps: deps, log: log}
}

// Ingest runs save -> [transcribe -> save transcript] strictly in order.
// Any stage failure is terminal; the blob stays on disk once saved.
func (s *ingestService) Ingest(ctx context.Context, data []byte) (*IngestResult, error) {
	const op = "IngestService.Ingest"

	if len(data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no data", utils.ErrEmptyPayload)
	}

	filename, err := s.deps.Blobs.Write(ctx, data)
	if err != nil {
		return nil, utils.Staged(utils.StageSaveAudio, op, "save failed", err)
	}
	log := s.log.WithFields(logrus.Fields{"filename": filename, "bytes": len(data)})
	log.Info("saved audio")

	s.afterAudio(ctx, log, filename, data)

	res := &IngestResult{Filename: filename}
	if !s.cfg.Enabled {
		return res, nil
	}

	if s.deps.Transcriber == nil || s.deps.Transcripts == nil {
		return nil, utils.Staged(utils.StageTranscribe, op, "transcription is not configured", utils.ErrTranscription)
	}

	out, err := s.deps.Transcriber.Transcribe(ctx, filename, data)
	if err != nil {
		log.WithError(err).Error("transcription failed; audio kept without transcript")
		return nil, utils.Staged(utils.StageTranscribe, op, "transcription failed", utils.Kind(utils.ErrTranscription, err))
	}

	base := storage.BaseName(filename)
	t := s.buildTranscript(base, out)
	path, err := s.deps.Transcripts.Write(ctx, base, t)
	if err != nil {
		log.WithError(err).Error("transcript save failed; audio kept without transcript")
		return nil, utils.Staged(utils.StageSaveTranscript, op, "transcript save failed", utils.Kind(utils.ErrTranscriptPersist, err))
	}
	log.WithField("transcript", path).Info("saved transcript")

	s.afterTranscript(ctx, log, filename, t)

	res.Transcribed = true
	res.TranscriptPath = path
	res.Text = t.Text
	res.Language = t.Language
	res.Duration = t.Duration
	return res, nil
}

func (s *ingestService) buildTranscript(base string, out *stt.Result) *models.Transcript {
	t := &models.Transcript{
		Filename:  base,
		CreatedAt: s.deps.Now().Format(time.RFC3339Nano),
		Duration:  out.Duration,
		Segments:  make([]models.Segment, 0, len(out.Segments)),
		Source:    s.cfg.SourceTag,
	}
	if t.Source == "" {
		t.Source = models.DefaultTranscriptSource
	}
	if out.Language != "" {
		lang := out.Language
		t.Language = &lang
	}
	for i, seg := range out.Segments {
		t.Segments = append(t.Segments, models.Segment{ID: i, Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	t.Text = models.JoinSegments(t.Segments)
	return t
}

// afterAudio runs best-effort side effects; failures are logged only.
func (s *ingestService) afterAudio(ctx context.Context, log *logrus.Entry, filename string, data []byte) {
	if s.deps.Catalog != nil {
		if err := s.deps.Catalog.UpsertBlob(ctx, filename, storage.ParseBlobName(filename), int64(len(data))); err != nil {
			log.WithError(err).Warn("catalog upsert failed")
		}
	}
	if s.deps.Mirror != nil {
		if where, err := s.deps.Mirror.Upload(ctx, filename, storage.AudioMIMEType, bytes.NewReader(data)); err != nil {
			log.WithError(err).Warn("mirror upload failed")
		} else {
			log.WithField("mirror", where).Debug("mirrored audio")
		}
	}
	if s.deps.Records != nil {
		s.deps.Records.Invalidate(ctx)
	}
}

func (s *ingestService) afterTranscript(ctx context.Context, log *logrus.Entry, filename string, t *models.Transcript) {
	if s.deps.Catalog != nil {
		if err := s.deps.Catalog.SetTranscript(ctx, filename, t); err != nil {
			log.WithError(err).Warn("catalog transcript update failed")
		}
	}
	if s.deps.Records != nil {
		s.deps.Records.Invalidate(ctx)
	}
}
