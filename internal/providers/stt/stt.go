package stt

import "context"

type Segment struct {
	Start float64 // seconds
	End   float64
	Text  string
}

// Result is what an engine hands back for one recording.
type Result struct {
	Language string   // empty when the engine did not report one
	Duration *float64 // seconds, nil when unknown
	Segments []Segment
}

// Options carries the engine settings chosen at startup.
type Options struct {
	Language string // "" = auto-detect
	Model    string
	Device   string
}

type Provider interface {
	Transcribe(ctx context.Context, audio []byte, opts Options) (*Result, error)
	Close() error
}
