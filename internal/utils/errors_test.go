package utils

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", E(CodeInvalidArgument, "op", "bad", nil), http.StatusBadRequest},
		{"not found", E(CodeNotFound, "op", "missing", nil), http.StatusNotFound},
		{"unavailable", E(CodeUnavailable, "op", "down", nil), http.StatusServiceUnavailable},
		{"timeout", E(CodeTimeout, "op", "slow", nil), http.StatusGatewayTimeout},
		{"staged", Staged(StageTranscribe, "op", "failed", nil), http.StatusInternalServerError},
		{"bare not found", ErrNotFound, http.StatusNotFound},
		{"bare no selection", ErrNoSelection, http.StatusBadRequest},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindWrapsBoth(t *testing.T) {
	err := E(CodeInternal, "BlobStore.Write", "write failed", Kind(ErrStorage, fs.ErrPermission))

	if !errors.Is(err, ErrStorage) {
		t.Error("expected ErrStorage in chain")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("expected fs.ErrPermission in chain")
	}
	if !IsCode(err, CodeInternal) {
		t.Error("expected CodeInternal")
	}
}

func TestStagedError(t *testing.T) {
	err := Staged(StageSaveTranscript, "IngestService.Ingest", "failed to save transcript", ErrTranscriptPersist)

	if got := StageOf(err); got != StageSaveTranscript {
		t.Errorf("StageOf() = %q, want %q", got, StageSaveTranscript)
	}
	if !strings.Contains(err.Error(), "[save_transcript]") {
		t.Errorf("Error() = %q, missing stage", err.Error())
	}
	if StageOf(errors.New("plain")) != "" {
		t.Error("plain error should carry no stage")
	}
}
