package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"shopping-list/config"
	"shopping-list/internal/application"
	"shopping-list/internal/infra/audio"
	"shopping-list/internal/infra/httpapi"
	"shopping-list/internal/infra/kv"
	"shopping-list/internal/infra/metrics"
	"shopping-list/internal/infra/openai"
	"shopping-list/internal/infra/pushover"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to env file")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		slog.Error("loading env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	client, err := kv.Connect(cfg.KV.URL)
	if err != nil {
		logger.Error("connecting to kv store", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	store := kv.NewStore(client, cfg.KV.Key)
	if err := store.Ping(ctx); err != nil {
		logger.Warn("kv store not reachable yet", "error", err)
	}

	var m *metrics.Metrics
	if cfg.Server.Metrics {
		m = metrics.NewMetrics()
	}

	stt := createTranscriber(cfg.OpenAI, logger)
	var list application.ListStore = store
	if m != nil {
		stt = metrics.InstrumentTranscriber(stt, m)
		list = metrics.InstrumentListStore(store, m)
	}

	var archive application.UploadArchive = &application.NoopArchive{}
	if cfg.Server.IsDevelopment() {
		archive = audio.NewArchive(cfg.Capture.Dir)
		logger.Info("capturing uploads", "dir", cfg.Capture.Dir)
	}

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	shoppingList := application.NewShoppingList(stt, list, archive, notifier, logger)

	if cfg.Auth.ListToken == "" {
		logger.Warn("BEARER_TOKEN is not set, /list-items will answer 500")
	}
	if cfg.Auth.TranscribeToken == "" {
		logger.Warn("TRANSCRIBE_SECRET is not set, /transcribe will answer 500")
	}

	server := httpapi.NewServer(httpapi.Options{
		Addr:            cfg.Server.Addr,
		ListToken:       cfg.Auth.ListToken,
		TranscribeToken: cfg.Auth.TranscribeToken,
		MaxDuration:     cfg.Server.MaxDuration,
		BodyLimit:       cfg.Server.BodyLimit(),
		RateLimit:       cfg.Server.RateLimit,
		RateWindow:      cfg.Server.RateWindow,
		TrustedProxies:  cfg.Server.TrustedProxies,
		Metrics:         m,
	}, shoppingList, store, logger)

	logger.Info("starting shopping list service",
		"mode", cfg.Server.Mode,
		"kv_key", cfg.KV.Key,
		"model", cfg.OpenAI.Model,
	)

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func createTranscriber(cfg config.OpenAIConfig, logger *slog.Logger) application.SpeechToText {
	if cfg.APIKey == "" {
		logger.Warn("openai.api_key is empty, transcription disabled")
		return &application.NoopSTT{}
	}
	return openai.NewTranscriberWithURL(cfg.APIKey, cfg.Model, cfg.Language, cfg.BaseURL)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
