package services

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoorecord/internal/cache"
	"github.com/yoockh/yoorecord/internal/models"
	pgrepo "github.com/yoockh/yoorecord/internal/repositories/postgres"
	"github.com/yoockh/yoorecord/internal/storage"
	"github.com/yoockh/yoorecord/internal/utils"
)

// RecordSource produces one ViewRecord per stored blob, unordered.
type RecordSource interface {
	Name() string
	Load(ctx context.Context) ([]models.ViewRecord, error)
}

// BlobSource lists the content directory; text is always empty.
type BlobSource struct {
	Blobs storage.BlobStore
}

func (BlobSource) Name() string { return "blobs" }

func (s BlobSource) Load(ctx context.Context) ([]models.ViewRecord, error) {
	entries, err := s.Blobs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ViewRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.ViewRecord{Filename: e.Filename, Timestamp: e.Timestamp})
	}
	return out, nil
}

// TranscriptSource joins blobs with their transcripts by base name. A
// transcript's created_at wins over the filename time; blobs without a
// transcript still show up with empty text.
type TranscriptSource struct {
	Blobs       storage.BlobStore
	Transcripts TranscriptRepository
}

func (TranscriptSource) Name() string { return "transcripts" }

func (s TranscriptSource) Load(ctx context.Context) ([]models.ViewRecord, error) {
	entries, err := s.Blobs.List(ctx)
	if err != nil {
		return nil, err
	}
	transcripts, err := s.Transcripts.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	byBase := make(map[string]*models.Transcript, len(transcripts))
	for i := range transcripts {
		byBase[transcripts[i].Filename] = &transcripts[i]
	}

	out := make([]models.ViewRecord, 0, len(entries))
	for _, e := range entries {
		rec := models.ViewRecord{Filename: e.Filename, Timestamp: e.Timestamp}
		if t, ok := byBase[storage.BaseName(e.Filename)]; ok {
			rec.Text = t.Text
			if ts := t.Timestamp(); ts != nil {
				rec.Timestamp = ts
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// CatalogSource joins blobs with their Postgres catalog rows by filename.
// The catalog supplies text and recording time; a blob the catalog never
// heard of still shows up with empty text.
type CatalogSource struct {
	Blobs storage.BlobStore
	Repo  pgrepo.RecordingRepository
}

func (CatalogSource) Name() string { return "catalog" }

func (s CatalogSource) Load(ctx context.Context) ([]models.ViewRecord, error) {
	entries, err := s.Blobs.List(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "CatalogSource.Load", "failed to list catalog", utils.Kind(utils.ErrStorage, err))
	}

	byName := make(map[string]*models.RecordingRow, len(rows))
	for i := range rows {
		byName[rows[i].Filename] = &rows[i]
	}

	out := make([]models.ViewRecord, 0, len(entries))
	for _, e := range entries {
		rec := models.ViewRecord{Filename: e.Filename, Timestamp: e.Timestamp}
		if row, ok := byName[e.Filename]; ok {
			rec.Text = row.Text
			if row.RecordedAt != nil {
				rec.Timestamp = row.RecordedAt
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

type RecordService interface {
	ListRecords(ctx context.Context) ([]models.ViewRecord, error)
	Search(ctx context.Context, start, end *time.Time) ([]models.ViewRecord, error)
	Invalidate(ctx context.Context)
}

type recordService struct {
	src   RecordSource
	cache cache.Cache
	ttl   time.Duration
	log   *logrus.Logger
}

func NewRecordService(src RecordSource, c cache.Cache, ttl time.Duration, log *logrus.Logger) RecordService {
	if c == nil || ttl <= 0 {
		c = cache.Nop{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &recordService{src: src, cache: c, ttl: ttl, log: log}
}

func (s *recordService) genKey() string { return "records:" + s.src.Name() + ":gen" }

func (s *recordService) cacheKey(gen int64) string {
	return "records:" + s.src.Name() + ":" + strconv.FormatInt(gen, 10)
}

// generation is bumped by Invalidate. Listings are cached per generation, so a
// load that raced an invalidation lands under a key nobody reads again.
func (s *recordService) generation(ctx context.Context) (int64, error) {
	var gen int64
	if _, err := s.cache.GetJSON(ctx, s.genKey(), &gen); err != nil {
		return 0, err
	}
	return gen, nil
}

func (s *recordService) ListRecords(ctx context.Context) ([]models.ViewRecord, error) {
	const op = "RecordService.ListRecords"

	gen, genErr := s.generation(ctx)
	if genErr != nil {
		s.log.WithError(genErr).Warn("record cache generation read failed")
	}

	if genErr == nil {
		var cached []models.ViewRecord
		hit, err := s.cache.GetJSON(ctx, s.cacheKey(gen), &cached)
		if err != nil {
			s.log.WithError(err).Warn("record cache read failed")
		}
		if hit {
			return cached, nil
		}
	}

	recs, err := s.src.Load(ctx)
	if err != nil {
		if utils.IsCode(err, utils.CodeInternal) {
			return nil, err
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load records", err)
	}
	SortRecords(recs)

	if genErr == nil {
		if err := s.cache.SetJSON(ctx, s.cacheKey(gen), recs, s.ttl); err != nil {
			s.log.WithError(err).Warn("record cache write failed")
		}
	}
	return recs, nil
}

func (s *recordService) Search(ctx context.Context, start, end *time.Time) ([]models.ViewRecord, error) {
	recs, err := s.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByRange(recs, start, end), nil
}

func (s *recordService) Invalidate(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, s.genKey()); err != nil {
		s.log.WithError(err).Warn("record cache invalidation failed")
	}
}

// SortRecords orders newest first. Nil timestamps sort last; ties fall back
// to filename, descending, so the order is total.
func SortRecords(recs []models.ViewRecord) {
	slices.SortStableFunc(recs, func(a, b models.ViewRecord) int {
		switch {
		case a.Timestamp == nil && b.Timestamp == nil:
		case a.Timestamp == nil:
			return 1
		case b.Timestamp == nil:
			return -1
		default:
			if c := b.Timestamp.Compare(*a.Timestamp); c != 0 {
				return c
			}
		}
		return strings.Compare(b.Filename, a.Filename)
	})
}

// FilterByRange keeps records with start <= ts <= end for the bounds given.
// With no bounds the input is returned as is, nil timestamps included.
func FilterByRange(recs []models.ViewRecord, start, end *time.Time) []models.ViewRecord {
	if start == nil && end == nil {
		return recs
	}
	out := make([]models.ViewRecord, 0, len(recs))
	for _, r := range recs {
		if r.Timestamp == nil {
			continue
		}
		if start != nil && r.Timestamp.Before(*start) {
			continue
		}
		if end != nil && r.Timestamp.After(*end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

const (
	DateLayout       = "2006-01-02"
	ClockLayout      = "15:04"
	DefaultStartTime = "00:00"
	DefaultEndTime   = "23:59"
)

// ParseBound combines a search form date and HH:MM clock into a local
// instant. An end bound covers its whole minute. Empty or malformed input
// yields nil, meaning unbounded.
func ParseBound(date, clock string, isEnd bool) *time.Time {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return nil
	}
	if clock == "" {
		clock = DefaultStartTime
		if isEnd {
			clock = DefaultEndTime
		}
	}
	ts, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, time.Local)
	if err != nil {
		return nil
	}
	if isEnd {
		ts = ts.Add(time.Minute - time.Nanosecond)
	}
	return &ts
}
