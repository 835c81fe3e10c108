package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yoockh/yoorecord/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordingRepository is the optional Postgres catalog of stored blobs.
type RecordingRepository interface {
	UpsertBlob(ctx context.Context, filename string, recordedAt *time.Time, sizeBytes int64) error
	SetTranscript(ctx context.Context, filename string, t *models.Transcript) error
	ListAll(ctx context.Context) ([]models.RecordingRow, error)
}

type recordingRepo struct {
	db *gorm.DB
}

func NewRecordingRepo(db *gorm.DB) RecordingRepository {
	return &recordingRepo{db: db}
}

// Migrate creates or updates the recordings table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.RecordingRow{})
}

func (r *recordingRepo) UpsertBlob(ctx context.Context, filename string, recordedAt *time.Time, sizeBytes int64) error {
	row := &models.RecordingRow{
		Filename:   filename,
		RecordedAt: recordedAt,
		SizeBytes:  sizeBytes,
		CreatedAt:  time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "filename"}},
			DoUpdates: clause.AssignmentColumns([]string{"recorded_at", "size_bytes"}),
		}).
		Create(row).Error
}

func (r *recordingRepo) SetTranscript(ctx context.Context, filename string, t *models.Transcript) error {
	segs, err := json.Marshal(t.Segments)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.RecordingRow{}).
		Where("filename = ?", filename).
		Updates(map[string]any{
			"text":             t.Text,
			"language":         t.Language,
			"duration_seconds": t.Duration,
			"segments":         datatypes.JSON(segs),
			"transcribed_at":   t.Timestamp(),
		}).Error
}

func (r *recordingRepo) ListAll(ctx context.Context) ([]models.RecordingRow, error) {
	var rows []models.RecordingRow
	err := r.db.WithContext(ctx).
		Order("recorded_at DESC NULLS LAST").
		Order("filename DESC").
		Find(&rows).Error
	return rows, err
}
