// Package ollama runs the pipeline against a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/ai"
	"github.com/spigell/profilematch/internal/logger"
)

const (
	defaultURL     = "http://localhost:11434"
	defaultModel   = "llama3.1"
	defaultTimeout = 300 * time.Second

	maxErrorBody = 512
)

// Config holds the Ollama backend settings.
type Config struct {
	URL         string
	Model       string
	Timeout     time.Duration
	Temperature float32
}

// Generator implements ai.Generator with the non-streaming /api/generate endpoint.
type Generator struct {
	baseURL     string
	model       string
	temperature float32
	client      *http.Client
	logger      *zap.Logger
}

var _ ai.Generator = (*Generator)(nil)

func NewGenerator(cfg Config, log *zap.Logger) *Generator {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		baseURL = defaultURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Generator{
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
		logger:      logger.WithProvider(log, ai.ProviderOllama, model),
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func (g *Generator) Provider() string { return ai.ProviderOllama }

func (g *Generator) Model() string { return g.model }

// GenerateContent sends one prompt with the system instruction and returns the full response.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   g.model,
		System:  strings.TrimSpace(system),
		Prompt:  message,
		Stream:  false,
		Options: generateOptions{Temperature: g.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}

	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}

	g.logger.Debug("ollama generate finished", zap.Duration("elapsed", time.Since(started)))
	return text, nil
}
