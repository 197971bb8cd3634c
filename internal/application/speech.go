package application

import (
	"context"

	"shopping-list/internal/domain"
)

type SpeechToText interface {
	Transcribe(ctx context.Context, upload domain.Upload) (string, error)
}

// NoopSTT stands in when no provider key is configured. Every call fails with
// a configuration error.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(_ context.Context, _ domain.Upload) (string, error) {
	return "", domain.NewError(domain.KindConfiguration, "speech-to-text not configured: set openai.api_key to enable transcription")
}
