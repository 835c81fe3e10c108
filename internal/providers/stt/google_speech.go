package stt

import (
	"context"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

type GoogleSpeech struct {
	c *speech.Client

	Encoding     speechpb.RecognitionConfig_AudioEncoding
	SampleRateHz int32
}

func NewGoogleSpeech(ctx context.Context, opts ...option.ClientOption) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{
		c:            c,
		Encoding:     speechpb.RecognitionConfig_LINEAR16,
		SampleRateHz: 16000,
	}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// language example: "ja-JP", "en-US"
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, opts Options) (*Result, error) {
	language := opts.Language
	if language == "" {
		language = "ja-JP"
	}

	cfg := &speechpb.RecognitionConfig{
		Encoding:                   g.Encoding,
		SampleRateHertz:            g.SampleRateHz,
		LanguageCode:               language,
		EnableAutomaticPunctuation: true,
	}
	if opts.Model != "" {
		cfg.Model = opts.Model
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return nil, err
	}

	out := &Result{Language: language}
	var prevEnd float64
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		end := prevEnd
		if r.ResultEndTime != nil {
			end = r.ResultEndTime.AsDuration().Seconds()
		}
		out.Segments = append(out.Segments, Segment{
			Start: prevEnd,
			End:   end,
			Text:  r.Alternatives[0].Transcript,
		})
		if r.LanguageCode != "" {
			out.Language = r.LanguageCode
		}
		prevEnd = end
	}
	if resp.TotalBilledTime != nil {
		d := resp.TotalBilledTime.AsDuration().Seconds()
		if prevEnd > d {
			d = prevEnd
		}
		out.Duration = &d
	} else if prevEnd > 0 {
		d := prevEnd
		out.Duration = &d
	}

	return out, nil
}
