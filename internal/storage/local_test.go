package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yoockh/yoorecord/internal/utils"
)

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestWriteReadRoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 7, 8, 9, 10, 0, time.Local)
	s := NewLocalBlobStore(filepath.Join(t.TempDir(), "uploads_raw"), fixedClock(ts))
	ctx := context.Background()

	payload := []byte("RIFF....WAVEfmt ")
	name, err := s.Write(ctx, payload)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if name != "uploaded_20250607_080910.wav" {
		t.Fatalf("name = %q", name)
	}

	got, err := s.Read(ctx, name)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Read = %q, want %q", got, payload)
	}

	parsed := ParseBlobName(name)
	if parsed == nil || !parsed.Equal(ts) {
		t.Fatalf("ParseBlobName = %v, want %v", parsed, ts)
	}
}

func TestWriteSameSecondGetsSuffix(t *testing.T) {
	ts := time.Date(2025, 6, 7, 8, 9, 10, 0, time.Local)
	s := NewLocalBlobStore(t.TempDir(), fixedClock(ts))
	ctx := context.Background()

	first, _ := s.Write(ctx, []byte("one"))
	second, err := s.Write(ctx, []byte("two"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if first == second {
		t.Fatalf("names collided: %q", first)
	}
	if second != "uploaded_20250607_080910_2.wav" {
		t.Fatalf("second = %q", second)
	}
	if p := ParseBlobName(second); p == nil || !p.Equal(ts) {
		t.Fatalf("suffix name parsed to %v", p)
	}

	data, _ := s.Read(ctx, first)
	if string(data) != "one" {
		t.Fatalf("first blob overwritten: %q", data)
	}
}

func TestWriteConcurrentSameSecond(t *testing.T) {
	ts := time.Date(2025, 6, 7, 8, 9, 10, 0, time.Local)
	s := NewLocalBlobStore(t.TempDir(), fixedClock(ts))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		names = map[string]bool{}
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := s.Write(context.Background(), []byte("x"))
			if err != nil {
				t.Errorf("Write: %v", err)
				return
			}
			mu.Lock()
			names[name] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(names) != 8 {
		t.Fatalf("got %d distinct names, want 8", len(names))
	}
}

func TestWriteFailsOnUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewLocalBlobStore(filepath.Join(blocker, "sub"), nil)
	_, err := s.Write(context.Background(), []byte("data"))
	if !errors.Is(err, utils.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalBlobStore(dir, nil)

	files := []string{
		"uploaded_20250101_120000.wav",
		"uploaded_20250101_120000_3.wav",
		"random.wav",
		"uploaded_20250101_120000.txt",
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.wav"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(entries), entries)
	}

	byName := map[string]bool{}
	for _, e := range entries {
		byName[e.Filename] = e.Timestamp != nil
	}
	if !byName["uploaded_20250101_120000.wav"] || !byName["uploaded_20250101_120000_3.wav"] {
		t.Errorf("expected parsed timestamps: %+v", byName)
	}
	if parsed, ok := byName["random.wav"]; !ok || parsed {
		t.Errorf("random.wav should be listed with nil timestamp: %+v", byName)
	}
}

func TestListMissingDir(t *testing.T) {
	s := NewLocalBlobStore(filepath.Join(t.TempDir(), "nope"), nil)
	entries, err := s.List(context.Background())
	if err != nil || len(entries) != 0 {
		t.Fatalf("List = %v, %v", entries, err)
	}
}

func TestReadRejectsTraversal(t *testing.T) {
	s := NewLocalBlobStore(t.TempDir(), nil)
	for _, name := range []string{"", "..", "../secret.wav", "a/b.wav", `a\b.wav`, "..wav"} {
		_, err := s.Read(context.Background(), name)
		if !errors.Is(err, utils.ErrInvalidName) {
			t.Errorf("Read(%q) err = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestReadNotFound(t *testing.T) {
	s := NewLocalBlobStore(t.TempDir(), nil)
	_, err := s.Read(context.Background(), "uploaded_20250101_120000.wav")
	if !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if utils.HTTPStatus(err) != 404 {
		t.Fatalf("status = %d", utils.HTTPStatus(err))
	}
}

func TestOpen(t *testing.T) {
	ts := time.Date(2025, 6, 7, 8, 9, 10, 0, time.Local)
	s := NewLocalBlobStore(t.TempDir(), fixedClock(ts))
	name, _ := s.Write(context.Background(), []byte("payload"))

	b, err := s.Open(context.Background(), name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if b.Size != int64(len("payload")) {
		t.Errorf("Size = %d", b.Size)
	}
	data, _ := io.ReadAll(b)
	if string(data) != "payload" {
		t.Errorf("data = %q", data)
	}
}

func TestParseBlobName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"uploaded_20250101_235959.wav", true},
		{"uploaded_20250101_235959_12.wav", true},
		{"uploaded_20250101_235959_1.wav", false},
		{"uploaded_20250101_235959_02.wav", false},
		{"uploaded_20250101_235959_+2.wav", false},
		{"uploaded_20250101_235959_.wav", false},
		{"uploaded_20250101_235959x.wav", false},
		{"uploaded_20251301_000000.wav", false},
		{"recorded_20250101_000000.wav", false},
		{"uploaded_20250101_000000.mp3", false},
	}
	for _, tt := range tests {
		if got := ParseBlobName(tt.name); (got != nil) != tt.ok {
			t.Errorf("ParseBlobName(%q) = %v, want ok=%v", tt.name, got, tt.ok)
		}
	}
}
