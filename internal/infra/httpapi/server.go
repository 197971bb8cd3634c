package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"shopping-list/internal/application"
	"shopping-list/internal/domain"
	"shopping-list/internal/infra/metrics"
)

const shutdownTimeout = 10 * time.Second

// Pinger reports whether the list store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr            string
	ListToken       string
	TranscribeToken string
	MaxDuration     time.Duration
	BodyLimit       int
	RateLimit       int
	RateWindow      time.Duration
	TrustedProxies  []string         // peers whose X-Forwarded-For is honoured
	Metrics         *metrics.Metrics // nil disables /metrics
}

type Server struct {
	addr        string
	app         *fiber.App
	svc         *application.ShoppingList
	health      Pinger
	metrics     *metrics.Metrics
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

func NewServer(opts Options, svc *application.ShoppingList, health Pinger, logger *slog.Logger) *Server {
	s := &Server{
		addr:        opts.Addr,
		svc:         svc,
		health:      health,
		metrics:     opts.Metrics,
		rateLimiter: NewRateLimiter(opts.RateLimit, opts.RateWindow),
		logger:      logger,
	}

	cfg := fiber.Config{
		AppName:               "shopping-list",
		DisableStartupMessage: true,
		BodyLimit:             opts.BodyLimit,
		ErrorHandler:          s.handleError,
	}
	if len(opts.TrustedProxies) > 0 {
		cfg.EnableTrustedProxyCheck = true
		cfg.TrustedProxies = opts.TrustedProxies
		cfg.ProxyHeader = fiber.HeaderXForwardedFor
		cfg.EnableIPValidation = true
	}
	if opts.MaxDuration > 0 {
		cfg.ReadTimeout = opts.MaxDuration
		cfg.WriteTimeout = opts.MaxDuration
	}
	s.app = fiber.New(cfg)

	s.app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	s.app.Use(s.observe)
	s.app.Use(recover.New())
	s.app.Use(deadline(opts.MaxDuration))

	s.app.Get("/", s.handleDemo)
	s.app.Post("/", s.handleEcho)
	s.app.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	limit := s.rateLimiter.Middleware()
	listAuth := requireBearer(opts.ListToken, "BEARER_TOKEN")
	transcribeAuth := requireBearer(opts.TranscribeToken, "TRANSCRIBE_SECRET")

	s.app.Get("/list-items", limit, listAuth, s.handleListItems)
	s.app.Post("/list-items", limit, listAuth, s.handleAddItem)
	s.app.Delete("/list-items", limit, listAuth, s.handleRemoveItem)
	s.app.Post("/transcribe", limit, transcribeAuth, s.handleTranscribe)

	return s
}

// App exposes the underlying fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", "addr", s.addr)
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	}
}

// observe turns chain errors into responses, then logs and records every
// request once.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		if herr := s.handleError(c, err); herr != nil {
			s.logger.Error("writing error response", "error", herr)
			c.Status(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	elapsed := time.Since(start)

	attrs := []any{
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", elapsed,
	}
	switch {
	case status >= fiber.StatusInternalServerError:
		s.logger.Error("request failed", append(attrs, "error", err)...)
	case err != nil:
		s.logger.Warn("request rejected", append(attrs, "error", err)...)
	default:
		s.logger.Info("request handled", attrs...)
	}

	if s.metrics != nil {
		s.metrics.RecordHTTPRequest(c.Method(), c.Route().Path, strconv.Itoa(status), elapsed.Seconds())
	}
	return nil
}

func deadline(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// requestError attaches the route's fallback message to a failure.
type requestError struct {
	err      error
	fallback string
}

func (e *requestError) Error() string {
	return domain.MessageOf(e.err, e.fallback)
}

func (e *requestError) Unwrap() error {
	return e.err
}

func fail(err error, fallback string) error {
	return &requestError{err: err, fallback: fallback}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var (
		fe *fiber.Error
		re *requestError
		de *domain.Error
	)

	message := http.StatusText(http.StatusInternalServerError)
	switch {
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(errorResponse{Error: fe.Message})
	case errors.As(err, &re):
		message = domain.MessageOf(re.err, re.fallback)
	case errors.As(err, &de):
		message = domain.MessageOf(de, message)
	}

	kind := domain.KindOf(err)
	if kind == domain.KindAuth {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	return c.Status(statusOf(kind)).JSON(errorResponse{Error: message})
}

func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindAuth:
		return fiber.StatusUnauthorized
	case domain.KindInvalid:
		return fiber.StatusBadRequest
	case domain.KindUnsupportedMedia:
		return fiber.StatusUnsupportedMediaType
	default:
		return fiber.StatusInternalServerError
	}
}
