package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
	"github.com/yoockh/yoorecord/internal/models"
	"github.com/yoockh/yoorecord/internal/storage"
	"github.com/yoockh/yoorecord/internal/utils"
)

// TranscriptRepository persists transcripts keyed by blob base name.
type TranscriptRepository interface {
	Write(ctx context.Context, baseName string, t *models.Transcript) (path string, err error)
	LoadAll(ctx context.Context) ([]models.Transcript, error)
	Get(ctx context.Context, baseName string) (*models.Transcript, error)
}

// SubtitleFile is a rendered transcript ready for download.
type SubtitleFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type TranscriptService interface {
	Get(ctx context.Context, filename string) (*models.Transcript, error)
	Export(ctx context.Context, filename, format string) (*SubtitleFile, error)
}

type transcriptService struct {
	repo TranscriptRepository
}

func NewTranscriptService(repo TranscriptRepository) TranscriptService {
	return &transcriptService{repo: repo}
}

// Get accepts either a blob filename or its base name.
func (s *transcriptService) Get(ctx context.Context, filename string) (*models.Transcript, error) {
	const op = "TranscriptService.Get"

	if err := storage.ValidateName(filename); err != nil {
		return nil, utils.E(utils.CodeNotFound, op, "transcript not found", err)
	}
	return s.repo.Get(ctx, storage.BaseName(filename))
}

func (s *transcriptService) Export(ctx context.Context, filename, format string) (*SubtitleFile, error) {
	const op = "TranscriptService.Export"

	t, err := s.Get(ctx, filename)
	if err != nil {
		return nil, err
	}

	base := storage.BaseName(filename)
	var (
		buf bytes.Buffer
		ct  string
	)
	switch format {
	case "json":
		b, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to encode transcript", err)
		}
		buf.Write(b)
		ct = "application/json"
	case "srt":
		err = toSubtitles(t).WriteToSRT(&buf)
		ct = "application/x-subrip"
	case "vtt":
		err = toSubtitles(t).WriteToWebVTT(&buf)
		ct = "text/vtt"
	case "ttml":
		err = toSubtitles(t).WriteToTTML(&buf)
		ct = "application/ttml+xml"
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "unsupported format: "+format, nil)
	}
	if errors.Is(err, astisub.ErrNoSubtitlesToWrite) {
		return nil, utils.E(utils.CodeNotFound, op, "transcript has no segments", utils.Kind(utils.ErrNotFound, err))
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to render subtitles", err)
	}

	return &SubtitleFile{Name: base + "." + format, ContentType: ct, Data: buf.Bytes()}, nil
}

func toSubtitles(t *models.Transcript) *astisub.Subtitles {
	subs := astisub.NewSubtitles()
	for _, seg := range t.Segments {
		item := &astisub.Item{
			StartAt: secondsToDuration(seg.Start),
			EndAt:   secondsToDuration(seg.End),
		}
		item.Lines = append(item.Lines, astisub.Line{Items: []astisub.LineItem{{Text: strings.TrimSpace(seg.Text)}}})
		subs.Items = append(subs.Items, item)
	}
	return subs
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
