package metrics

import (
	"context"
	"time"

	"shopping-list/internal/application"
	"shopping-list/internal/domain"
)

type transcriber struct {
	next    application.SpeechToText
	metrics *Metrics
}

// InstrumentTranscriber counts and times calls to next.
func InstrumentTranscriber(next application.SpeechToText, m *Metrics) application.SpeechToText {
	return &transcriber{next: next, metrics: m}
}

func (t *transcriber) Transcribe(ctx context.Context, upload domain.Upload) (string, error) {
	start := time.Now()
	text, err := t.next.Transcribe(ctx, upload)

	t.metrics.TranscriptionDuration.Observe(time.Since(start).Seconds())
	t.metrics.TranscriptionBytes.Observe(float64(len(upload.Data)))
	t.metrics.Transcriptions.WithLabelValues(result(err)).Inc()

	return text, err
}

type listStore struct {
	next    application.ListStore
	metrics *Metrics
}

// InstrumentListStore counts store operations and list mutations.
func InstrumentListStore(next application.ListStore, m *Metrics) application.ListStore {
	return &listStore{next: next, metrics: m}
}

func (s *listStore) Append(ctx context.Context, item string) error {
	err := s.next.Append(ctx, item)
	s.metrics.StoreOperations.WithLabelValues("append", result(err)).Inc()
	if err == nil {
		s.metrics.ItemsAdded.Inc()
	}
	return err
}

func (s *listStore) All(ctx context.Context) ([]string, error) {
	items, err := s.next.All(ctx)
	s.metrics.StoreOperations.WithLabelValues("read_all", result(err)).Inc()
	return items, err
}

func (s *listStore) Remove(ctx context.Context, item string) error {
	err := s.next.Remove(ctx, item)
	s.metrics.StoreOperations.WithLabelValues("remove", result(err)).Inc()
	if err == nil {
		s.metrics.ItemsRemoved.Inc()
	}
	return err
}
