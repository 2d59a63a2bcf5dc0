package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/JustJay7/fir-manager/pkg/logger"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ErrPDFDisabled is returned when PDF rendering is switched off
var ErrPDFDisabled = errors.New("pdf rendering disabled")

// PDFRenderer prints HTML to PDF in a headless Chromium. The browser is
// launched on first use and shared by later renders.
type PDFRenderer struct {
	browserPath string
	timeout     time.Duration
	logger      *logger.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	closed   bool
}

// NewPDFRenderer creates a renderer. An empty browserPath lets rod find or
// download a Chromium build.
func NewPDFRenderer(browserPath string, timeout time.Duration, logger *logger.Logger) *PDFRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFRenderer{browserPath: browserPath, timeout: timeout, logger: logger}
}

func (r *PDFRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrPDFDisabled
	}
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Delete("enable-automation")
	if r.browserPath != "" {
		l = l.Bin(r.browserPath)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	r.logger.Info("PDF browser started")
	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Render prints the HTML document to PDF bytes
func (r *PDFRenderer) Render(ctx context.Context, html []byte) ([]byte, error) {
	browser, err := r.connect()
	if err != nil {
		return nil, err
	}

	renderCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	page, err := browser.Context(renderCtx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		r.logger.Warn("Report page load incomplete", "error", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	return data, nil
}

// Close shuts the browser down. Later renders fail with ErrPDFDisabled.
func (r *PDFRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	r.launcher.Kill()
	r.browser = nil
	r.launcher = nil
	return err
}
