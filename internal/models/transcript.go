package models

import (
	"strings"
	"time"
)

const DefaultTranscriptSource = "esp32"

type Segment struct {
	ID    int     `json:"id" bson:"id"`
	Start float64 `json:"start" bson:"start"`
	End   float64 `json:"end" bson:"end"`
	Text  string  `json:"text" bson:"text"`
}

// Transcript is the persisted speech-to-text result of one blob.
// Filename is the blob's base name (no extension) and joins the two stores.
type Transcript struct {
	Filename  string    `json:"filename" bson:"filename"`
	CreatedAt string    `json:"created_at" bson:"created_at"` // ISO-8601
	Text      string    `json:"text" bson:"text"`
	Language  *string   `json:"language,omitempty" bson:"language,omitempty"`
	Duration  *float64  `json:"duration,omitempty" bson:"duration,omitempty"`
	Segments  []Segment `json:"segments" bson:"segments"`
	Source    string    `json:"source" bson:"source"`
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp parses CreatedAt. Values without a zone are read as local time.
func (t *Transcript) Timestamp() *time.Time {
	v := strings.TrimSpace(t.CreatedAt)
	if v == "" {
		return nil
	}
	for i, layout := range createdAtLayouts {
		var (
			ts  time.Time
			err error
		)
		if i == 0 {
			ts, err = time.Parse(layout, v)
		} else {
			ts, err = time.ParseInLocation(layout, v, time.Local)
		}
		if err == nil {
			return &ts
		}
	}
	return nil
}

// JoinSegments concatenates segment texts into a whitespace-trimmed string.
func JoinSegments(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return strings.TrimSpace(sb.String())
}
