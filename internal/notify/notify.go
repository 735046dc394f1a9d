// Package notify tells a serving endpoint to reload its model after a
// promotion. Delivery is best effort: the promotion already happened, so a
// failed ping is logged, not rolled back.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds how long a reload ping may take.
const DefaultTimeout = 5 * time.Second

// Notifier posts reload notifications to a serving endpoint.
type Notifier struct {
	url    string
	token  string
	client *http.Client
	logger *slog.Logger
}

// Config configures a Notifier. URL is required; Token, if set, is sent as
// a bearer credential.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
	Logger  *slog.Logger
}

// New builds a Notifier.
func New(cfg Config) *Notifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		url:    cfg.URL,
		token:  cfg.Token,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// NotifyReload posts the promoted model and version to the reload URL. The
// response status is logged but not validated; only transport failures
// return an error.
func (n *Notifier) NotifyReload(ctx context.Context, model string, version int) error {
	payload, err := json.Marshal(map[string]any{
		"model":   model,
		"version": version,
	})
	if err != nil {
		return fmt.Errorf("notify: encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: posting to %s: %w", n.url, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	n.logger.Info("sent reload notification",
		slog.String("url", n.url),
		slog.String("model", model),
		slog.Int("version", version),
		slog.String("status", resp.Status))
	return nil
}
