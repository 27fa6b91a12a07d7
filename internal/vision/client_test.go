package vision_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/microscan/microscan/internal/vision"
	"github.com/microscan/microscan/pkg/scoring"
)

const tinyImage = "aGVsbG8="

func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(b)
}

func newServer(t *testing.T, status int, body string, check func(r *http.Request, payload map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(raw, &payload)
		if check != nil {
			check(r, payload)
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func clientFor(url string) *vision.Client {
	return vision.NewClient(vision.Config{APIKey: "k", Model: "gemini-test", Endpoint: url})
}

func TestAnalyzeWithoutKeyReturnsDemo(t *testing.T) {
	c := vision.NewClient(vision.Config{})
	a := c.Analyze(context.Background(), scoring.VariantMicroplastic, tinyImage)

	if a.RiskScore == nil || *a.RiskScore != 50 {
		t.Errorf("expected demo risk 50, got %v", a.RiskScore)
	}
	if a.Degraded {
		t.Error("demo assessment should not be degraded")
	}
}

func TestAnalyzeParsesReply(t *testing.T) {
	var gotPath, gotKey string
	var gotMime any
	srv := newServer(t, http.StatusOK,
		geminiReply("```json\n{\"risk_score\": 72, \"confidence\": 80, \"visual_analysis\": \"Crinkled PET bottle\"}\n```"),
		func(r *http.Request, payload map[string]any) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("x-goog-api-key")
			parts := payload["contents"].([]any)[0].(map[string]any)["parts"].([]any)
			gotMime = parts[1].(map[string]any)["inline_data"].(map[string]any)["mime_type"]
		})

	a := clientFor(srv.URL).Analyze(context.Background(), scoring.VariantMicroplastic, "data:image/png;base64,"+tinyImage)

	if a.Degraded {
		t.Fatalf("unexpected degraded assessment: %s", a.Details)
	}
	if a.RiskScore == nil || *a.RiskScore != 72 {
		t.Errorf("expected risk 72, got %v", a.RiskScore)
	}
	if a.VisualAnalysis != "Crinkled PET bottle" {
		t.Errorf("unexpected visual analysis %q", a.VisualAnalysis)
	}
	if gotPath != "/models/gemini-test:generateContent" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotKey != "k" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	if gotMime != "image/png" {
		t.Errorf("expected image/png inline data, got %v", gotMime)
	}
}

func TestAnalyzeDegrades(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		image  string
		detail string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, tinyImage, "returned 500"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, tinyImage, "empty response"},
		{"reply not json", http.StatusOK, geminiReply("I cannot help with that"), tinyImage, "AI Service Error"},
		{"invalid base64", http.StatusOK, geminiReply("{}"), "not base64!!", "decoding image"},
		{"empty image", http.StatusOK, geminiReply("{}"), "data:image/jpeg;base64,", "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body, nil)
			a := clientFor(srv.URL).Analyze(context.Background(), scoring.VariantAlgae, tt.image)

			if !a.Degraded || !a.IsError() {
				t.Fatalf("expected degraded assessment, got %+v", a)
			}
			if a.RiskScore == nil || *a.RiskScore != 0 {
				t.Errorf("expected zero risk, got %v", a.RiskScore)
			}
			if !strings.Contains(a.Details, tt.detail) {
				t.Errorf("expected %q in details, got %q", tt.detail, a.Details)
			}
		})
	}
}

func TestDecodeImage(t *testing.T) {
	tests := []struct {
		in       string
		wantMime string
		wantErr  bool
	}{
		{tinyImage, "image/jpeg", false},
		{"data:image/webp;base64," + tinyImage, "image/webp", false},
		{"base64," + tinyImage, "image/jpeg", false},
		{"", "", true},
		{"%%%", "", true},
	}
	for _, tt := range tests {
		mime, data, err := vision.DecodeImage(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("DecodeImage(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("DecodeImage(%q): unexpected error %v", tt.in, err)
			continue
		}
		if mime != tt.wantMime || data != tinyImage {
			t.Errorf("DecodeImage(%q) = %q, %q", tt.in, mime, data)
		}
	}
}
