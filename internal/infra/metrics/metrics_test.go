package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"shopping-list/internal/domain"
	"shopping-list/internal/infra/metrics"
)

type stubSTT struct {
	err error
}

func (s *stubSTT) Transcribe(_ context.Context, _ domain.Upload) (string, error) {
	return "Brot", s.err
}

type stubStore struct {
	err error
}

func (s *stubStore) Append(_ context.Context, _ string) error { return s.err }
func (s *stubStore) All(_ context.Context) ([]string, error)  { return []string{}, s.err }
func (s *stubStore) Remove(_ context.Context, _ string) error { return s.err }

func TestInstrumentTranscriber(t *testing.T) {
	m := metrics.NewMetrics()
	ctx := context.Background()

	ok := metrics.InstrumentTranscriber(&stubSTT{}, m)
	failing := metrics.InstrumentTranscriber(&stubSTT{err: errors.New("quota")}, m)

	if text, err := ok.Transcribe(ctx, domain.Upload{Data: []byte("abc")}); err != nil || text != "Brot" {
		t.Fatalf("Transcribe: text=%q err=%v", text, err)
	}
	if _, err := failing.Transcribe(ctx, domain.Upload{}); err == nil {
		t.Fatal("expected error to pass through")
	}

	if got := testutil.ToFloat64(m.Transcriptions.WithLabelValues("success")); got != 1 {
		t.Errorf("success count: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Transcriptions.WithLabelValues("failure")); got != 1 {
		t.Errorf("failure count: got %v, want 1", got)
	}
}

func TestInstrumentListStore(t *testing.T) {
	m := metrics.NewMetrics()
	ctx := context.Background()

	store := metrics.InstrumentListStore(&stubStore{}, m)
	_ = store.Append(ctx, "Brot")
	_ = store.Append(ctx, "Milch")
	_, _ = store.All(ctx)
	_ = store.Remove(ctx, "Brot")

	broken := metrics.InstrumentListStore(&stubStore{err: errors.New("down")}, m)
	_ = broken.Append(ctx, "Käse")

	if got := testutil.ToFloat64(m.ItemsAdded); got != 2 {
		t.Errorf("items added: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ItemsRemoved); got != 1 {
		t.Errorf("items removed: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StoreOperations.WithLabelValues("append", "failure")); got != 1 {
		t.Errorf("append failures: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StoreOperations.WithLabelValues("read_all", "success")); got != 1 {
		t.Errorf("read_all successes: got %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := metrics.NewMetrics()
	m.RecordHTTPRequest("GET", "/list-items", "200", 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `shoplist_http_requests_total{method="GET",route="/list-items",status="200"} 1`) {
		t.Errorf("metric not exposed:\n%s", body)
	}
}
