package models

import (
	"time"

	"gorm.io/datatypes"
)

// RecordingRow is the Postgres catalog entry of one blob.
type RecordingRow struct {
	Filename   string     `gorm:"column:filename;type:text;primaryKey" json:"filename"`
	RecordedAt *time.Time `gorm:"column:recorded_at;type:timestamptz;index" json:"recorded_at"`
	SizeBytes  int64      `gorm:"column:size_bytes;type:bigint" json:"size_bytes"`

	Text            string         `gorm:"column:text;type:text" json:"text"`
	Language        *string        `gorm:"column:language;type:text" json:"language,omitempty"`
	DurationSeconds *float64       `gorm:"column:duration_seconds;type:double precision" json:"duration_seconds,omitempty"`
	Segments        datatypes.JSON `gorm:"column:segments;type:jsonb" json:"segments,omitempty"`
	TranscribedAt   *time.Time     `gorm:"column:transcribed_at;type:timestamptz" json:"transcribed_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (RecordingRow) TableName() string { return "recordings" }
