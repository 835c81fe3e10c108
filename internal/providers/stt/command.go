package stt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command runs an external speech-to-text program once per recording.
// The program receives --audio <path> --model <m> --device <d> [--language <l>]
// and must print {"language", "duration", "segments":[{"start","end","text"}]} on stdout.
type Command struct {
	Path string
	Args []string
}

func NewCommand(cmdline string) (*Command, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, errors.New("stt command is empty")
	}
	return &Command{Path: fields[0], Args: fields[1:]}, nil
}

type commandOut struct {
	Language string   `json:"language"`
	Duration *float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (c *Command) Transcribe(ctx context.Context, audio []byte, opts Options) (*Result, error) {
	f, err := os.CreateTemp("", "yoorecord-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp audio: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write temp audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write temp audio: %w", err)
	}

	device := opts.Device
	if device == "" {
		device = "auto"
	}
	args := append([]string{}, c.Args...)
	args = append(args, "--audio", f.Name(), "--device", device)
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}

	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Env = os.Environ()
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return nil, fmt.Errorf("stt command failed: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("run stt command: %w", err)
	}

	var parsed commandOut
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse stt output: %w", err)
	}

	res := &Result{Language: parsed.Language, Duration: parsed.Duration}
	for _, s := range parsed.Segments {
		res.Segments = append(res.Segments, Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return res, nil
}

func (c *Command) Close() error { return nil }
