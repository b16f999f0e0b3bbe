package ai

import (
	"context"
	"fmt"
	"io"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/kgwiazdak/sprint-planning-copilot/pkg/config"
)

// Utterance is one diarized speech segment of a transcript
type Utterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	StartTime  float64 `json:"start_time"` // seconds
	EndTime    float64 `json:"end_time"`   // seconds
	Confidence float64 `json:"confidence"`
}

// Transcript is the diarized result of one transcription job
type Transcript struct {
	Text       string      `json:"text"`
	Utterances []Utterance `json:"utterances"`
}

// Transcriber turns meeting audio into a diarized transcript
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (*Transcript, error)
}

// AssemblyAIClient wraps the official SDK with upload-then-poll semantics
type AssemblyAIClient struct {
	sdk          *aai.Client
	pollInterval time.Duration
}

// NewAssemblyAIClient creates a transcriber backed by AssemblyAI
func NewAssemblyAIClient(cfg *config.TranscriptionConfig) *AssemblyAIClient {
	pollInterval := 3 * time.Second
	if cfg != nil && cfg.PollInterval > 0 {
		pollInterval = cfg.PollInterval
	}
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	return &AssemblyAIClient{
		sdk:          aai.NewClient(apiKey),
		pollInterval: pollInterval,
	}
}

// Transcribe uploads the audio, submits a diarized transcription job and
// polls until the job reaches a terminal status or ctx is done.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audio io.Reader) (*Transcript, error) {
	uploadURL, err := c.sdk.Upload(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio: %w", err)
	}

	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}
	submitted, err := c.sdk.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to submit transcription: %w", err)
	}
	if submitted.ID == nil {
		return nil, fmt.Errorf("transcription submitted without an id")
	}
	transcriptID := *submitted.ID

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		transcript, err := c.sdk.Transcripts.Get(ctx, transcriptID)
		if err != nil {
			// Might be a temporary API error, keep polling
			continue
		}

		switch transcript.Status {
		case aai.TranscriptStatusCompleted:
			return mapTranscript(&transcript), nil
		case aai.TranscriptStatusError:
			errorMsg := "transcription failed"
			if transcript.Error != nil {
				errorMsg = *transcript.Error
			}
			return nil, fmt.Errorf("assemblyai error: %s", errorMsg)
		case aai.TranscriptStatusQueued, aai.TranscriptStatusProcessing:
			// Still in flight
		default:
			return nil, fmt.Errorf("unknown transcript status %q", transcript.Status)
		}
	}
}

func mapTranscript(t *aai.Transcript) *Transcript {
	out := &Transcript{}
	if t.Text != nil {
		out.Text = *t.Text
	}
	for _, utt := range t.Utterances {
		u := Utterance{}
		if utt.Speaker != nil {
			u.Speaker = *utt.Speaker
		}
		if utt.Text != nil {
			u.Text = *utt.Text
		}
		if utt.Start != nil {
			u.StartTime = float64(*utt.Start) / 1000.0 // ms to seconds
		}
		if utt.End != nil {
			u.EndTime = float64(*utt.End) / 1000.0
		}
		if utt.Confidence != nil {
			u.Confidence = *utt.Confidence
		}
		out.Utterances = append(out.Utterances, u)
	}
	return out
}
