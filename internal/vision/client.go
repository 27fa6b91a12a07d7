// Package vision calls the AI vision service that inspects water and
// product images. Calls never fail: a missing API key yields a demo
// assessment and any error yields a degraded one.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/microscan/microscan/internal/logging"
	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

const defaultMIMEType = "image/jpeg"

// Analyzer produces an assessment for an image.
type Analyzer interface {
	Analyze(ctx context.Context, variant scoring.Variant, imageBase64 string) signal.Assessment
}

// Config holds the connection settings for the Gemini REST API.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string // e.g. https://generativelanguage.googleapis.com/v1beta
	Timeout  time.Duration
}

// Enabled reports whether an API key is configured.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the generateContent URL for the configured model.
func (c Config) ModelEndpoint() string {
	return strings.TrimRight(c.Endpoint, "/") + "/models/" + c.Model + ":generateContent"
}

// Client implements Analyzer against Gemini generateContent.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a vision client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logging.New("vision"),
	}
}

// Analyze sends the image to the vision model and parses its reply.
func (c *Client) Analyze(ctx context.Context, variant scoring.Variant, imageBase64 string) signal.Assessment {
	if !c.cfg.Enabled() {
		return signal.Demo()
	}

	mime, data, err := DecodeImage(imageBase64)
	if err != nil {
		c.logger.Warn("rejecting image", "error", err)
		return signal.Degraded(err)
	}

	text, err := c.generate(ctx, promptFor(variant), mime, data)
	if err != nil {
		c.logger.Error("vision call failed", "variant", variant, "error", err)
		return signal.Degraded(err)
	}

	a := signal.ParseAssessment([]byte(text))
	if a.Degraded {
		c.logger.Warn("vision reply was not a JSON object", "variant", variant, "bytes", len(text))
	}
	return a
}

// DecodeImage strips an optional data URL header ("data:image/png;base64,")
// and validates the payload. It returns the MIME type and the bare base64
// text.
func DecodeImage(s string) (mime, data string, err error) {
	mime = defaultMIMEType
	data = strings.TrimSpace(s)

	if i := strings.Index(data, "base64,"); i >= 0 {
		header := data[:i]
		data = data[i+len("base64,"):]
		if rest, ok := strings.CutPrefix(header, "data:"); ok {
			if m, _, _ := strings.Cut(rest, ";"); m != "" {
				mime = m
			}
		}
	}

	if data == "" {
		return "", "", fmt.Errorf("image payload is empty")
	}
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return "", "", fmt.Errorf("decoding image: %w", err)
	}
	return mime, data, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt, mime, data string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{MimeType: mime, Data: data}},
			},
		}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ModelEndpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", c.cfg.Model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned %d: %s", c.cfg.Model, resp.StatusCode, truncate(string(raw), 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from %s", c.cfg.Model)
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
