package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"cytodash/domain/core"
)

const maxBodyBytes = 64 << 20

// HTTPSource fetches a measurement table from a URL with a single GET
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSource creates a URL-backed source
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url: rawURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the last path segment of the URL, or the URL itself
func (s *HTTPSource) Name() string {
	u, err := url.Parse(s.url)
	if err != nil || u.Path == "" || u.Path == "/" {
		return s.url
	}
	return path.Base(u.Path)
}

// ReadSource performs the request. There is no retry.
func (s *HTTPSource) ReadSource(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, core.NewSourceUnavailableError(s.url, fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, core.NewSourceUnavailableError(s.url, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.NewSourceUnavailableError(s.url, fmt.Errorf("server returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, core.NewSourceUnavailableError(s.url, fmt.Errorf("failed to read response: %w", err))
	}
	if len(body) > maxBodyBytes {
		return nil, core.NewSourceUnavailableError(s.url, fmt.Errorf("response exceeds %d bytes", maxBodyBytes))
	}

	return body, nil
}
