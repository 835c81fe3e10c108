package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeTimeout         Code = "TIMEOUT"
	CodeInternal        Code = "INTERNAL"
)

// Ingestion stages reported on failure.
const (
	StageSaveAudio      = "save_audio"
	StageTranscribe     = "transcribe"
	StageSaveTranscript = "save_transcript"
)

// AppError is the unified error contract across layers.
type AppError struct {
	Code    Code
	Op      string // operation name, ex: "IngestService.Ingest"
	Stage   string // ingestion stage, empty outside the orchestrator
	Message string // safe message
	Err     error  // wrapped error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := e.Op
	if e.Stage != "" {
		op = fmt.Sprintf("%s[%s]", e.Op, e.Stage)
	}
	switch {
	case op != "" && e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", op, e.Message, e.Err)
	case op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", op, e.Message)
	case op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", op, e.Err)
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "error"
	}
}

func (e *AppError) Unwrap() error { return e.Err }

func E(code Code, op, msg string, err error) error {
	return &AppError{Code: code, Op: op, Message: msg, Err: err}
}

// Staged builds an internal error tagged with the ingestion stage that failed.
func Staged(stage, op, msg string, err error) error {
	return &AppError{Code: CodeInternal, Op: op, Stage: stage, Message: msg, Err: err}
}

// Kind wraps cause with one of the sentinel kinds below so errors.Is matches both.
func Kind(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

func IsCode(err error, code Code) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// StageOf returns the ingestion stage carried by err, if any.
func StageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Stage
	}
	return ""
}

func HTTPStatus(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		switch ae.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeUnavailable:
			return http.StatusServiceUnavailable
		case CodeTimeout:
			return http.StatusGatewayTimeout
		default:
			return http.StatusInternalServerError
		}
	}
	// fallback
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidName):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyPayload), errors.Is(err, ErrNoSelection):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyPayload      = errors.New("empty payload")
	ErrStorage           = errors.New("storage error")
	ErrInvalidName       = errors.New("invalid name")
	ErrNoSelection       = errors.New("no selection")
	ErrTranscription     = errors.New("transcription failure")
	ErrTranscriptPersist = errors.New("transcript persist failure")
)
