// Package gemini is a minimal client for the generateContent endpoint of the
// Google Generative Language API. It carries prompt text and inline base64
// media up, and hands the first candidate's text back; everything smarter
// (prompts, parsing, caching) lives in the enrichment service.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Abdulla090/knote/internal/config"
)

// ErrNoAPIKey is returned when the client is asked to generate without a
// configured API key.
var ErrNoAPIKey = errors.New("gemini api key is not configured")

// ErrEmptyResponse is returned when the API answers 200 with no candidates.
var ErrEmptyResponse = errors.New("gemini returned no candidates")

// Part is one piece of a user turn: prompt text or inline media.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob is base64-encoded inline media (audio for transcription).
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
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

// Client calls the generateContent API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	log        *slog.Logger
}

// NewClient builds a client from config. BaseURL is configurable so tests can
// point it at a local server.
func NewClient(cfg config.Config, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.GeminiTimeoutSec) * time.Second},
		baseURL:    cfg.GeminiBaseURL,
		apiKey:     cfg.GeminiAPIKey,
		model:      cfg.GeminiModel,
		log:        log,
	}
}

// Generate sends a single user turn and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, parts ...Part) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		c.log.Warn("gemini request failed", "status", res.StatusCode, "model", c.model)
		return "", fmt.Errorf("gemini status %d: %s", res.StatusCode, string(body))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
