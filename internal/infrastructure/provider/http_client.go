// Package provider contains the HTTP client for the external shelf
// detection service.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appdetection "github.com/shelfsight/backend/internal/application/detection"
	"github.com/shelfsight/backend/internal/domain/detection"
	"github.com/shelfsight/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB

	detectPath = "/v1/detect"
)

// HTTPProvider calls the external detection service over HTTP. Every
// call is metered by the provider, so the detection service quota-gates
// before invoking it and the client enforces a request timeout.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ appdetection.Provider = (*HTTPProvider)(nil)

// HTTPProviderOption configures an HTTPProvider
type HTTPProviderOption func(*HTTPProvider)

// WithProviderLogger sets the logger
func WithProviderLogger(logger *zap.Logger) HTTPProviderOption {
	return func(p *HTTPProvider) {
		p.logger = logger
	}
}

// WithProviderHTTPClient replaces the underlying HTTP client
func WithProviderHTTPClient(client *http.Client) HTTPProviderOption {
	return func(p *HTTPProvider) {
		p.httpClient = client
	}
}

// NewHTTPProvider creates a provider client from detection config
func NewHTTPProvider(cfg config.DetectionConfig, opts ...HTTPProviderOption) *HTTPProvider {
	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	p := &HTTPProvider{
		baseURL: strings.TrimRight(cfg.ProviderBaseURL, "/"),
		apiKey:  cfg.ProviderAPIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type detectRequest struct {
	ImageReference string `json:"image_reference"`
}

type detectResponse struct {
	Detections []detection.RawDetection `json:"detections"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Detect sends an image reference to the detection service and returns
// the raw detection list. Failures come back as *ProviderError so the
// caller can distinguish provider trouble from its own bugs; an empty
// detection list is a valid success response, not an error.
func (p *HTTPProvider) Detect(ctx context.Context, imageReference string) ([]detection.RawDetection, error) {
	bodyBytes, err := json.Marshal(detectRequest{ImageReference: imageReference})
	if err != nil {
		return nil, fmt.Errorf("provider: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+detectPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("detection provider unreachable",
			zap.String("image_reference", imageReference),
			zap.Error(err))
		return nil, &appdetection.ProviderError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &appdetection.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    "failed to read response: " + err.Error(),
		}
	}

	if resp.StatusCode >= 400 {
		return nil, &appdetection.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(body, resp.StatusCode),
		}
	}

	var parsed detectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &appdetection.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    "malformed response body: " + err.Error(),
		}
	}

	p.logger.Debug("detection provider call completed",
		zap.String("image_reference", imageReference),
		zap.Int("detections", len(parsed.Detections)),
		zap.Duration("elapsed", time.Since(start)))

	if parsed.Detections == nil {
		return []detection.RawDetection{}, nil
	}
	return parsed.Detections, nil
}

// extractErrorMessage pulls a human-readable message out of an error
// body, falling back to the HTTP status text
func extractErrorMessage(body []byte, statusCode int) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return http.StatusText(statusCode)
}
