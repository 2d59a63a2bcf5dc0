package ai

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/JustJay7/fir-manager/pkg/logger"
)

// Options configures a Service
type Options struct {
	BaseURL      string
	TranslateURL string
	Timeout      time.Duration
}

// Service bundles the AI capabilities behind one object with an explicit
// lifecycle. It is created once at startup and injected into the components
// that need it.
type Service struct {
	client *Client
	logger *logger.Logger
	ready  atomic.Bool
	closed atomic.Bool
}

// New creates the service and probes the AI backend. A failed probe leaves
// the service usable but not Ready: Predict then returns ErrUnavailable and
// callers fall back.
func New(ctx context.Context, opts Options, logger *logger.Logger) *Service {
	s := &Service{
		client: NewClient(opts.BaseURL, opts.TranslateURL, opts.Timeout),
		logger: logger,
	}
	s.Refresh(ctx)
	return s
}

// Refresh re-runs the health probe
func (s *Service) Refresh(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.client.Health(probeCtx); err != nil {
		s.logger.Warn("AI service not ready, legal suggestions will use defaults", "error", err)
		s.ready.Store(false)
		return false
	}
	s.logger.Info("AI service ready")
	s.ready.Store(true)
	return true
}

// Ready reports whether the classifier backend answered its last probe
func (s *Service) Ready() bool {
	return s.ready.Load() && !s.closed.Load()
}

func (s *Service) Translate(ctx context.Context, text, source, target string) (string, error) {
	if s.closed.Load() {
		return "", ErrUnavailable
	}
	return s.client.Translate(ctx, text, source, target)
}

func (s *Service) Predict(ctx context.Context, text string) (Prediction, error) {
	if !s.Ready() {
		return Prediction{}, ErrUnavailable
	}
	return s.client.Predict(ctx, text)
}

func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error) {
	if s.closed.Load() {
		return "", ErrUnavailable
	}
	return s.client.Transcribe(ctx, audio, filename, language)
}

func (s *Service) ExtractText(ctx context.Context, image io.Reader, filename string) (string, error) {
	if s.closed.Load() {
		return "", ErrUnavailable
	}
	return s.client.ExtractText(ctx, image, filename)
}

// Close releases connections. Calls after Close return ErrUnavailable.
func (s *Service) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.client.CloseIdleConnections()
	return nil
}
