// Package httpapi serves the lingo operations over HTTP with JSend envelopes.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/hay-kot/lingo/internal/core/history"
	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/internal/lingo"
)

// Service is the part of lingo.Service the API exposes.
type Service interface {
	Languages() []translation.Language
	ProviderNames() []string
	CharLimit() int
	TranslateText(ctx context.Context, req lingo.TextRequest) (*lingo.Result, error)
	History(ctx context.Context, p history.Partition) []translation.Record
	SearchHistory(ctx context.Context, p history.Partition, pattern string) ([]translation.Record, error)
	HistoryRecord(ctx context.Context, p history.Partition, id string) (translation.Record, error)
	SaveFromRecent(ctx context.Context, id string) ([]translation.Record, error)
	DeleteHistory(ctx context.Context, p history.Partition, id string) ([]translation.Record, error)
	ClearHistory(ctx context.Context, p history.Partition) error
}

type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	svc    Service
	logger zerolog.Logger
	opts   Options
}

func NewServer(svc Service, logger zerolog.Logger, opts Options) *Server {
	if strings.TrimSpace(opts.Addr) == "" {
		opts.Addr = "127.0.0.1:7878"
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		// Document and speech requests wait on slow providers.
		opts.WriteTimeout = 2 * time.Minute
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	return &Server{
		svc:    svc,
		logger: logger.With().Str("component", "httpapi").Logger(),
		opts:   opts,
	}
}

// Handler builds the echo instance with all routes registered.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := s.logger.Info()
			if v.Error != nil {
				event = s.logger.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/languages", s.handleLanguages)
	api.POST("/translate", s.handleTranslate)
	api.GET("/history/:partition", s.handleHistory)
	api.DELETE("/history/:partition", s.handleClearHistory)
	api.GET("/history/:partition/:id", s.handleHistoryRecord)
	api.DELETE("/history/:partition/:id", s.handleDeleteHistory)
	api.POST("/history/recent/:id/save", s.handleSaveNote)

	return e
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	e := s.Handler()

	httpServer := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", s.opts.Addr).Msg("lingo api started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("lingo api stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if v, ok := he.Message.(string); ok && strings.TrimSpace(v) != "" {
			message = v
		} else if text := http.StatusText(status); text != "" {
			message = text
		}
	}

	if status >= 500 {
		_ = internalError(c, message)
		return
	}
	_ = fail(c, status, message, nil)
}
