// File: internal/travelapi/client.go
package travelapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotConfigured is returned when the upstream API key is missing.
	ErrNotConfigured = errors.New("travel api: not configured")
	// ErrUpstreamNotFound is returned when the upstream answers 404.
	ErrUpstreamNotFound = errors.New("travel api: not found upstream")
	// ErrUpstream wraps every other upstream failure.
	ErrUpstream = errors.New("travel api: upstream failure")
)

const maxResponseBytes = 1 << 20

// upstream is a JSON GET client for one third-party API.
type upstream struct {
	name     string
	baseURL  string
	apiKey   string
	keyParam string
	http     *http.Client
	logger   *zap.Logger
}

func newUpstream(name, baseURL, apiKey, keyParam string, timeout time.Duration, logger *zap.Logger) *upstream {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &upstream{
		name:     name,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		keyParam: keyParam,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.Named(name),
	}
}

func (u *upstream) configured() bool {
	return u.apiKey != "" && u.baseURL != ""
}

// getJSON fetches baseURL+path with params and the API key, decoding the body into out.
func (u *upstream) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if !u.configured() {
		return ErrNotConfigured
	}
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set(u.keyParam, u.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := u.http.Do(req)
	if err != nil {
		u.logger.Warn("Upstream request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	u.logger.Debug("Upstream response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	body := io.LimitReader(resp.Body, maxResponseBytes)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrUpstreamNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, body)
		u.logger.Warn("Upstream returned an error status", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	return nil
}
