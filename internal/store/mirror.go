package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const mirrorRequestTimeout = 15 * time.Second

// Mirror pushes the full league set to a remote backup endpoint.
// Syncs are best-effort and globally rate limited: a burst of picks
// across many leagues coalesces into at most one remote write per
// minimum interval.
type Mirror struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

func NewMirror(url string, minInterval time.Duration, log *zap.Logger) *Mirror {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mirror{
		url: url,
		httpClient: &http.Client{
			Timeout: mirrorRequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		log:     log,
	}
}

// TrySync posts all leagues to the mirror. Rate-limited attempts are
// skipped silently; transport failures are logged and ignored.
func (m *Mirror) TrySync(ctx context.Context, leagues []Export) {
	if m.url == "" {
		return
	}
	if !m.limiter.Allow() {
		return
	}

	if err := m.post(ctx, leagues); err != nil {
		m.log.Warn("backup mirror sync failed", zap.Error(err))
	}
}

func (m *Mirror) post(ctx context.Context, leagues []Export) error {
	body, err := json.Marshal(struct {
		Leagues []Export `json:"leagues"`
	}{Leagues: leagues})
	if err != nil {
		return fmt.Errorf("encode mirror payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mirror request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to mirror: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mirror returned status %d", resp.StatusCode)
	}
	return nil
}
