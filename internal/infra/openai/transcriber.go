package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"shopping-list/internal/domain"
)

const (
	DefaultModel    = "gpt-4o-transcribe"
	DefaultLanguage = "de"
)

type Transcriber struct {
	client   *goopenai.Client
	model    string
	language string
}

func NewTranscriber(apiKey, model, language string) *Transcriber {
	return NewTranscriberWithURL(apiKey, model, language, "")
}

// NewTranscriberWithURL points the client at a different API root, such as a
// proxy or a test server.
func NewTranscriberWithURL(apiKey, model, language, baseURL string) *Transcriber {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if language == "" {
		language = DefaultLanguage
	}
	return &Transcriber{
		client:   goopenai.NewClientWithConfig(cfg),
		model:    model,
		language: language,
	}
}

// Transcribe sends the clip once. Provider API errors are returned as
// upstream errors carrying the provider's message.
func (t *Transcriber) Transcribe(ctx context.Context, upload domain.Upload) (string, error) {
	filename := upload.Filename
	if filename == "" {
		filename = "audio" + upload.Extension()
	}

	resp, err := t.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    t.model,
		FilePath: filename,
		Reader:   bytes.NewReader(upload.Data),
		Language: t.language,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "", domain.WrapError(domain.KindUpstream, apiErr.Message, err)
		}
		return "", fmt.Errorf("creating transcription: %w", err)
	}

	return resp.Text, nil
}
