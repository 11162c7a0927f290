package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPConfig contains configuration for the remote recognizer.
type HTTPConfig struct {
	BaseURL        string
	Timeout        time.Duration
	HealthInterval time.Duration
	HealthTimeout  time.Duration
	Logger         *slog.Logger
}

// DefaultHTTPConfig returns default remote recognizer configuration.
func DefaultHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		BaseURL:        "http://localhost:8000",
		Timeout:        10 * time.Second,
		HealthInterval: 5 * time.Second,
		HealthTimeout:  3 * time.Second,
	}
}

// HTTPRecognizer posts PNG images to a recognition service.
//
// Request:  POST {base}/v1/text?charset=...&psm=single_line|auto, body image/png
// Response: {"text": "..."}
type HTTPRecognizer struct {
	config       *HTTPConfig
	httpClient   *http.Client
	logger       *slog.Logger
	healthy      atomic.Bool
	healthCtx    context.Context
	healthCancel context.CancelFunc
	healthWg     sync.WaitGroup
}

// NewHTTPRecognizer creates a remote recognizer and starts its health checks.
func NewHTTPRecognizer(config *HTTPConfig) *HTTPRecognizer {
	if config == nil {
		config = DefaultHTTPConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &HTTPRecognizer{
		config:       config,
		httpClient:   &http.Client{Timeout: config.Timeout},
		logger:       config.Logger.With("component", "ocr_http"),
		healthCtx:    ctx,
		healthCancel: cancel,
	}

	r.performHealthCheck()

	r.healthWg.Add(1)
	go r.healthCheckLoop()

	return r
}

// Recognize sends img to the service and returns the recognized text.
func (r *HTTPRecognizer) Recognize(ctx context.Context, img image.Image, charset string, mode SegMode) (string, error) {
	if !r.IsHealthy() {
		return "", fmt.Errorf("OCR service is currently unavailable")
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	params := url.Values{}
	params.Set("charset", charset)
	params.Set("psm", mode.String())
	requestURL := fmt.Sprintf("%s/v1/text?%s", r.config.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return apiResp.Text, nil
}

// IsHealthy returns true if the last health check succeeded.
func (r *HTTPRecognizer) IsHealthy() bool {
	return r.healthy.Load()
}

// Close stops the health check loop.
func (r *HTTPRecognizer) Close() {
	if r.healthCancel != nil {
		r.healthCancel()
	}
	r.healthWg.Wait()
}

func (r *HTTPRecognizer) healthCheckLoop() {
	defer r.healthWg.Done()

	ticker := time.NewTicker(r.config.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.healthCtx.Done():
			return
		case <-ticker.C:
			r.performHealthCheck()
		}
	}
}

func (r *HTTPRecognizer) performHealthCheck() {
	ctx, cancel := context.WithTimeout(r.healthCtx, r.config.HealthTimeout)
	defer cancel()

	healthy := false
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", r.config.BaseURL), nil)
	if err == nil {
		if resp, err := r.httpClient.Do(req); err == nil {
			healthy = resp.StatusCode == http.StatusOK
			resp.Body.Close()
		}
	}

	if was := r.healthy.Swap(healthy); was != healthy {
		r.logger.Info("OCR service health changed", "healthy", healthy)
	}
}

var _ Recognizer = (*HTTPRecognizer)(nil)
