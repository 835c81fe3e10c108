package models

import (
	"testing"
	"time"
)

func TestTranscriptTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		createdAt string
		want      *time.Time
	}{
		{"rfc3339", "2025-03-04T10:11:12+09:00", ptr(time.Date(2025, 3, 4, 1, 11, 12, 0, time.UTC))},
		{"naive", "2025-03-04T10:11:12.500000", ptr(time.Date(2025, 3, 4, 10, 11, 12, 500000000, time.Local))},
		{"empty", "", nil},
		{"garbage", "yesterday", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Transcript{CreatedAt: tt.createdAt}
			got := tr.Timestamp()
			switch {
			case tt.want == nil && got != nil:
				t.Fatalf("Timestamp() = %v, want nil", got)
			case tt.want != nil && got == nil:
				t.Fatalf("Timestamp() = nil, want %v", tt.want)
			case tt.want != nil && !got.Equal(*tt.want):
				t.Fatalf("Timestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoinSegments(t *testing.T) {
	segs := []Segment{{Text: " hello"}, {Text: " world "}}
	if got := JoinSegments(segs); got != "hello world" {
		t.Errorf("JoinSegments() = %q", got)
	}
	if got := JoinSegments(nil); got != "" {
		t.Errorf("JoinSegments(nil) = %q", got)
	}
}

func ptr(t time.Time) *time.Time { return &t }
