// File: internal/platform/elasticsearch/client.go
package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"travel_agent_backend/internal/config"
)

// ErrDisabled is returned when no Elasticsearch URL is configured.
var ErrDisabled = errors.New("elasticsearch is not configured")

// ESClientWrapper wraps the elasticsearch.Client.
// Client is nil when ELASTICSEARCH_URL is empty.
type ESClientWrapper struct {
	*elasticsearch.Client
}

// Enabled reports whether a client was configured.
func (w *ESClientWrapper) Enabled() bool {
	return w != nil && w.Client != nil
}

// ZapLogger is an adapter from zap.Logger to elastictransport.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

var _ elastictransport.Logger = (*ZapLogger)(nil)

// LogRoundTrip logs request metrics at debug level.
func (l *ZapLogger) LogRoundTrip(req *http.Request, res *http.Response, err error, start time.Time, dur time.Duration) error {
	var statusCode int
	if res != nil {
		statusCode = res.StatusCode
	}
	l.logger.Debug("Elasticsearch RoundTrip",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status_code", statusCode),
		zap.Duration("duration", dur),
		zap.Error(err),
	)
	return nil
}

func (l *ZapLogger) RequestBodyEnabled() bool  { return false }
func (l *ZapLogger) ResponseBodyEnabled() bool { return false }

// NewClient creates the Elasticsearch client. An empty URL yields a disabled wrapper
// and an unreachable cluster is only logged, so the API can start without search.
func NewClient(cfg *config.Config, logger *zap.Logger) (*ESClientWrapper, error) {
	log := logger.Named("elasticsearch_client")
	if cfg.ElasticsearchURL == "" {
		log.Warn("ELASTICSEARCH_URL is not configured; itinerary search is disabled")
		return &ESClientWrapper{}, nil
	}

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticsearchURL},
		Logger:    &ZapLogger{logger: log},
		// Retry on 429 TooManyRequests, 502, 503 and 504.
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
		MaxRetries: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}
	wrapper := &ESClientWrapper{Client: esClient}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if version, err := wrapper.ServerVersion(ctx); err != nil {
		log.Warn("Elasticsearch is not reachable", zap.String("url", cfg.ElasticsearchURL), zap.Error(err))
	} else {
		log.Info("Elasticsearch client connected", zap.String("url", cfg.ElasticsearchURL), zap.String("server_version", version))
	}
	return wrapper, nil
}

// ServerVersion calls the info API and returns the server version.
func (w *ESClientWrapper) ServerVersion(ctx context.Context) (string, error) {
	if !w.Enabled() {
		return "", ErrDisabled
	}
	res, err := w.Info(w.Info.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("esClient.Info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return "", fmt.Errorf("elasticsearch info: %s", res.Status())
	}

	var info struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decoding elasticsearch info: %w", err)
	}
	return info.Version.Number, nil
}
