package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable is returned when a capability cannot be reached or is not loaded
var ErrUnavailable = errors.New("ai capability unavailable")

// Translator converts text between languages. source may be "auto".
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Prediction is a classifier result
type Prediction struct {
	Section    string  `json:"ipc_section"`
	Confidence float64 `json:"confidence_score"`
}

// Classifier maps incident text to a legal section
type Classifier interface {
	Predict(ctx context.Context, text string) (Prediction, error)
}

// Transcriber turns recorded speech into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error)
}

// TextExtractor reads printed or handwritten text from an image
type TextExtractor interface {
	ExtractText(ctx context.Context, image io.Reader, filename string) (string, error)
}

// Client talks to the AI service (/predict, /upload, /ocr, /health) and a
// LibreTranslate compatible translation endpoint
type Client struct {
	baseURL      string
	translateURL string
	http         *http.Client
}

// NewClient creates a client with the given per-request timeout
func NewClient(baseURL, translateURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		translateURL: translateURL,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	var resp translateResponse
	err := c.postJSON(ctx, c.translateURL, translateRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("translate: %s", resp.Error)
	}
	return resp.TranslatedText, nil
}

type predictResponse struct {
	Prediction
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (c *Client) Predict(ctx context.Context, text string) (Prediction, error) {
	var resp predictResponse
	if err := c.postJSON(ctx, c.baseURL+"/predict", map[string]string{"text": text}, &resp); err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	if resp.Error != "" {
		return Prediction{}, fmt.Errorf("predict: %s", resp.Error)
	}

	// the service reports its own failures in-band
	switch resp.Section {
	case "", "Unknown", "Prediction failed":
		return Prediction{}, fmt.Errorf("predict: no section for input")
	}
	return resp.Prediction, nil
}

type uploadResponse struct {
	OriginalText string `json:"original_text"`
	Text         string `json:"text"`
	Error        string `json:"error"`
}

func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error) {
	resp, err := c.postFile(ctx, c.baseURL+"/upload", audio, filename, map[string]string{"language": language})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("transcribe: %s", resp.Error)
	}

	// recognizer failures come back as the transcript
	text := strings.TrimSpace(resp.OriginalText)
	switch text {
	case "", "Could not understand the audio.", "Google API request failed.":
		return "", fmt.Errorf("transcribe: no speech recognised (%q)", text)
	}
	return resp.OriginalText, nil
}

func (c *Client) ExtractText(ctx context.Context, image io.Reader, filename string) (string, error) {
	resp, err := c.postFile(ctx, c.baseURL+"/ocr", image, filename, nil)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return resp.Text, nil
}

// Health checks that the AI service is up and its models are loaded
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %s", ErrUnavailable, resp.Status)
	}
	return nil
}

// CloseIdleConnections releases pooled connections
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func (c *Client) postJSON(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) postFile(ctx context.Context, url string, file io.Reader, filename string, fields map[string]string) (*uploadResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp uploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bad status: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
