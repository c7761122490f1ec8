// Package assistant forwards visitor chat prompts to a hosted language model.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotConfigured = errors.New("assistant not configured")
	ErrEmptyReply    = errors.New("assistant returned no text")
)

// Client completes a single prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Gemini calls the generateContent endpoint of the Generative Language API.
type Gemini struct {
	cfg  Config
	http *http.Client
}

func NewGemini(cfg Config) *Gemini {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Gemini{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

func (g *Gemini) Configured() bool {
	return g != nil && g.cfg.APIKey != "" && g.cfg.BaseURL != "" && g.cfg.Model != ""
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode prompt: %w", err)
	}

	endpoint := strings.TrimRight(g.cfg.BaseURL, "/") + "/models/" + g.cfg.Model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call assistant: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read assistant response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode assistant response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 {
		if parsed.Error != nil {
			return "", fmt.Errorf("assistant status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("assistant status %d", resp.StatusCode)
	}

	var out strings.Builder
	for _, c := range parsed.Candidates {
		for _, p := range c.Content.Parts {
			out.WriteString(p.Text)
		}
		if out.Len() > 0 {
			break
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", ErrEmptyReply
	}
	return out.String(), nil
}
