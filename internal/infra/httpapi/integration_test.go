package httpapi_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"shopping-list/internal/application"
	"shopping-list/internal/infra/audio"
	"shopping-list/internal/infra/httpapi"
	"shopping-list/internal/infra/kv"
	"shopping-list/internal/infra/metrics"
	"shopping-list/internal/infra/openai"
	"shopping-list/internal/infra/pushover"
)

type pushRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (p *pushRecorder) handler(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := r.ParseForm(); err == nil {
		p.messages = append(p.messages, r.PostForm.Get("message"))
	}
	w.WriteHeader(http.StatusOK)
}

func TestIntegration_DictateAndReadBack(t *testing.T) {
	transcripts := []string{"Milch.", "Äpfel!!", "Brot."}
	var (
		mu    sync.Mutex
		calls int
	)
	openaiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		text := transcripts[calls%len(transcripts)]
		calls++
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": text})
	}))
	defer openaiServer.Close()

	pushes := &pushRecorder{}
	pushServer := httptest.NewServer(http.HandlerFunc(pushes.handler))
	defer pushServer.Close()

	mr := miniredis.RunT(t)
	client, err := kv.Connect("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer client.Close()

	m := metrics.NewMetrics()
	store := kv.NewStore(client, kv.DefaultKey)
	captureDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := application.NewShoppingList(
		metrics.InstrumentTranscriber(openai.NewTranscriberWithURL("sk-test", "", "", openaiServer.URL), m),
		metrics.InstrumentListStore(store, m),
		audio.NewArchive(captureDir),
		pushover.NewClientWithURL("app-token", "user-key", pushServer.URL),
		logger,
	)

	server := httpapi.NewServer(httpapi.Options{
		ListToken:       listToken,
		TranscribeToken: transcribeToken,
		MaxDuration:     5 * time.Second,
		BodyLimit:       1 << 20,
		Metrics:         m,
	}, svc, store, logger)
	env := &testEnv{server: server, mr: mr}

	var last map[string]any
	for _, name := range []string{"a.wav", "b.webm", "c.m4a"} {
		resp, body := env.do(t, audioRequest(t, "/list-items", listToken, "file", name, "", []byte("audio")))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d (%v)", name, resp.StatusCode, body)
		}
		last = body
	}

	if last["added"] != "Brot" {
		t.Errorf("added: got %v, want Brot", last["added"])
	}
	want := []string{"Brot", "Äpfel", "Milch"}
	if got := stringsOf(t, last["items"]); !reflect.DeepEqual(got, want) {
		t.Errorf("items: got %v, want %v", got, want)
	}

	_, body := env.do(t, authorized(http.MethodGet, "/list-items", listToken, nil))
	if got := stringsOf(t, body["items"]); !reflect.DeepEqual(got, want) {
		t.Errorf("read back: got %v, want %v", got, want)
	}

	entries, err := os.ReadDir(captureDir)
	if err != nil {
		t.Fatalf("reading capture dir: %v", err)
	}
	if len(entries) == 0 {
		t.Error("expected captured uploads")
	}

	pushes.mu.Lock()
	if len(pushes.messages) != 3 || pushes.messages[2] != "Added to shopping list: Brot" {
		t.Errorf("push messages: %v", pushes.messages)
	}
	pushes.mu.Unlock()

	if got := testutil.ToFloat64(m.ItemsAdded); got != 3 {
		t.Errorf("items added metric: got %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.Transcriptions.WithLabelValues("success")); got != 3 {
		t.Errorf("transcriptions metric: got %v, want 3", got)
	}
}
