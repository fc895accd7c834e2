package inaturalist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.inaturalist.org/v1"
	userAgent      = "mcp-inaturalist/1.0.0"
	requestTimeout = 30 * time.Second

	// BaseURLEnvVar overrides the upstream API root (mirrors, tests)
	BaseURLEnvVar = "INATURALIST_API_URL"

	maxResponseBytes = 10 * 1024 * 1024 // 10MB limit for API responses
)

// upstreamError carries the user-facing text for a failed upstream call.
// Handlers return its message verbatim as tool text, so a rate-limit or
// transport failure is never reinterpreted as "nothing matched".
type upstreamError struct {
	msg string
}

func (e *upstreamError) Error() string { return e.msg }

// Client issues rate-limited GET requests against the iNaturalist API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *limiter
	logger     *logrus.Logger
}

// NewClient creates a new iNaturalist API client with its own quota window
func NewClient(logger *logrus.Logger) *Client {
	baseURL := defaultBaseURL
	if envValue := os.Getenv(BaseURLEnvVar); envValue != "" {
		baseURL = strings.TrimRight(envValue, "/")
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		limiter: newLimiter(rateLimitFromEnv(), rateWindow),
		logger:  logger,
	}
}

var (
	sharedClientOnce sync.Once
	sharedClient     *Client
)

// defaultClient returns the process-wide client, so every tool draws from the
// same quota window
func defaultClient(logger *logrus.Logger) *Client {
	sharedClientOnce.Do(func() {
		sharedClient = NewClient(logger)
	})
	return sharedClient
}

// get issues one GET against the API and decodes the JSON body into out.
// Every invocation consumes one quota slot, whether or not it succeeds.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.wait(ctx); err != nil {
		return &upstreamError{msg: fmt.Sprintf("Network error connecting to iNaturalist: %v", err)}
	}

	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	c.logger.WithField("url", requestURL).Debug("iNaturalist API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return &upstreamError{msg: fmt.Sprintf("Network error connecting to iNaturalist: %v", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Debug("iNaturalist API request failed")
		return &upstreamError{msg: fmt.Sprintf("Network error connecting to iNaturalist: %v", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Debug("Failed to close response body")
		}
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &upstreamError{msg: "Rate limited by iNaturalist. Please wait a moment and try again."}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"url":        requestURL,
			"statusCode": resp.StatusCode,
		}).Debug("Unexpected status code")
		return &upstreamError{msg: fmt.Sprintf("iNaturalist API error: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &upstreamError{msg: fmt.Sprintf("Network error connecting to iNaturalist: %v", err)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &upstreamError{msg: fmt.Sprintf("Network error connecting to iNaturalist: %v", err)}
	}
	return nil
}
