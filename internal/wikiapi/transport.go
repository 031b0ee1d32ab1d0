package wikiapi

import (
	"log/slog"
	"net/http"
	"time"

	"wsexport/internal/logging"
)

// loggingTransport records one debug line per round trip.
type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	latency := time.Since(start)

	attrs := []logging.Attr{
		logging.String("method", req.Method),
		logging.String("url", req.URL.Redacted()),
		logging.Duration("latency", latency),
	}
	if err != nil {
		t.logger.Debug("http request failed", logging.Args(append(attrs, logging.Error(err))...)...)
		return nil, err
	}
	t.logger.Debug("http request", logging.Args(append(attrs, logging.Int("status", resp.StatusCode))...)...)
	return resp, nil
}
