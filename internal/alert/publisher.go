// Package alert pushes public advisories for elevated risk results to a
// webhook, signed so receivers can authenticate them.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/microscan/microscan/internal/logging"
	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/surface"
)

// Notifier publishes a scored result. Implementations decide whether the
// result is worth publishing.
type Notifier interface {
	Notify(ctx context.Context, id string, result *scoring.RiskResult) error
}

// Payload is the JSON body delivered to the webhook.
type Payload struct {
	ID         string           `json:"id,omitempty"`
	Variant    scoring.Variant  `json:"variant"`
	Score      int              `json:"risk_score"`
	Tier       scoring.Tier     `json:"risk_level"`
	Action     string           `json:"action"`
	Advisory   surface.Advisory `json:"advisory"`
	Disclaimer string           `json:"disclaimer"`
	SentAt     time.Time        `json:"sent_at"`
}

// WebhookPublisher posts advisories for results at or above MinTier.
type WebhookPublisher struct {
	url        string
	secret     []byte
	minTier    scoring.Tier
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

// NewWebhookPublisher creates a publisher. An empty secret sends unsigned
// deliveries.
func NewWebhookPublisher(url string, secret []byte, minTier scoring.Tier) *WebhookPublisher {
	return &WebhookPublisher{
		url:        url,
		secret:     secret,
		minTier:    minTier,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		logger:     logging.New("alert"),
	}
}

// Notify posts the advisory for result. Results below the threshold are
// skipped without error.
func (p *WebhookPublisher) Notify(ctx context.Context, id string, result *scoring.RiskResult) error {
	if result.Tier < p.minTier {
		return nil
	}

	renderer := &surface.AdvisoryRenderer{}
	body, err := json.Marshal(Payload{
		ID:         id,
		Variant:    result.Variant,
		Score:      result.Score,
		Tier:       result.Tier,
		Action:     result.PrimaryAction,
		Advisory:   renderer.BuildAdvisory(result),
		Disclaimer: surface.Disclaimer,
		SentAt:     p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal advisory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if len(p.secret) > 0 {
		req.Header.Set(SignatureHeader, Sign(body, p.secret))
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post advisory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook error %d: %s", resp.StatusCode, string(respBody))
	}

	p.logger.Info("advisory published", "id", id, "variant", result.Variant, "risk_level", result.Tier)
	return nil
}
