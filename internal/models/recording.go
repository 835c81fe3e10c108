package models

import "time"

// ViewRecord is one stored recording as the search page sees it.
// Timestamp is nil when it could not be recovered from the stored data.
type ViewRecord struct {
	Filename  string     `json:"filename"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Text      string     `json:"text"`
}

// BlobEntry is a listed audio file with the instant parsed from its name.
type BlobEntry struct {
	Filename  string
	Timestamp *time.Time
	SizeBytes int64
}
