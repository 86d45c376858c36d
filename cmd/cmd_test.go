package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/ai"
	"github.com/spigell/profilematch/internal/apperrors"
	"github.com/spigell/profilematch/internal/report"
	"github.com/spigell/profilematch/internal/scoring"
)

func TestDecodeConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if config.ProfilesDir != "profiles" || config.JobDescriptionsDir != "job_descriptions" || config.OutputDir != "outputs" {
		t.Fatalf("unexpected directories: %+v", config)
	}
	if config.OutputFormat != "json" {
		t.Fatalf("expected json format, got %q", config.OutputFormat)
	}
	if config.Matching.Weights != scoring.DefaultWeights() {
		t.Fatalf("unexpected weights: %+v", config.Matching.Weights)
	}
	if config.Matching.MatchThreshold != scoring.DefaultThreshold || config.Matching.TopN != 3 {
		t.Fatalf("unexpected matching config: %+v", config.Matching)
	}
	if config.AI.Provider != ai.ProviderGemini || config.AI.Temperature != float32(0.7) {
		t.Fatalf("unexpected ai config: %+v", config.AI)
	}
	if config.AI.Ollama.Timeout != 300*time.Second {
		t.Fatalf("unexpected ollama timeout: %v", config.AI.Ollama.Timeout)
	}
	if config.Watch.Debounce != 2*time.Second {
		t.Fatalf("unexpected debounce: %v", config.Watch.Debounce)
	}
}

func TestReadConfigFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "custom.yaml")
	content := `
output-format: text
matching:
  weights:
    technical-skills: 50
    experience: 20
  match-threshold: 70
ai:
  provider: ollama
  ollama:
    model: mistral
    timeout: 90s
`
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	setDefaults(v)
	if err := readConfig(v, file); err != nil {
		t.Fatalf("read config: %v", err)
	}

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := scoring.Weights{TechnicalSkills: 50, Experience: 20, Education: 15, OverallFit: 15}
	if config.Matching.Weights != want {
		t.Fatalf("expected %+v, got %+v", want, config.Matching.Weights)
	}
	if config.Matching.MatchThreshold != 70 || config.OutputFormat != "text" {
		t.Fatalf("unexpected config: %+v", config)
	}
	if config.AI.Provider != ai.ProviderOllama || config.AI.Ollama.Model != "mistral" || config.AI.Ollama.Timeout != 90*time.Second {
		t.Fatalf("unexpected ai config: %+v %+v", config.AI, config.AI.Ollama)
	}
}

func TestReadConfigIsOptional(t *testing.T) {
	if err := readConfig(viper.New(), ""); err != nil {
		t.Fatalf("expected a missing default config file to be ignored, got %v", err)
	}

	if err := readConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for an explicit missing config file")
	}
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *AIConfig
		field    string
		provider string
	}{
		{
			name:  "unsupported provider",
			cfg:   &AIConfig{Provider: "openai", Gemini: &GeminiConfig{}, Ollama: &OllamaConfig{}},
			field: "ai.provider",
		},
		{
			name:  "gemini without key",
			cfg:   &AIConfig{Provider: "gemini", Gemini: &GeminiConfig{}, Ollama: &OllamaConfig{}},
			field: "ai.gemini.api-key",
		},
		{
			name:     "ollama",
			cfg:      &AIConfig{Provider: "Ollama", Gemini: &GeminiConfig{}, Ollama: &OllamaConfig{Model: "mistral"}},
			provider: ai.ProviderOllama,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := newGenerator(context.Background(), tt.cfg, zap.NewNop())

			if tt.field != "" {
				var cfgErr *apperrors.ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("expected configuration error, got %v", err)
				}
				if cfgErr.Field != tt.field {
					t.Fatalf("expected field %q, got %q", tt.field, cfgErr.Field)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gen.Provider() != tt.provider || gen.Model() != "mistral" {
				t.Fatalf("unexpected generator %s/%s", gen.Provider(), gen.Model())
			}
		})
	}
}

func TestNewSessionRejectsBadFormat(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	config, err := decodeConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	config.OutputFormat = "xml"

	_, err = newSession(context.Background(), config, zap.NewNop())

	var cfgErr *apperrors.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "output-format" {
		t.Fatalf("expected output-format configuration error, got %v", err)
	}
}

func TestErrorFields(t *testing.T) {
	fieldMap := func(fields []zap.Field) map[string]string {
		out := map[string]string{}
		for _, f := range fields {
			out[f.Key] = f.String
		}
		return out
	}

	got := fieldMap(errorFields(&apperrors.ConfigurationError{Field: "weights.Experience", Message: "must be within [0,100], got -5"}))
	if got["hint"] != hints["weights"] {
		t.Fatalf("expected weights hint, got %+v", got)
	}

	err := &apperrors.PipelineError{Stage: "matching", Err: &apperrors.GenerationError{Provider: "gemini", Err: errors.New("boom")}}
	got = fieldMap(errorFields(err))
	if got["stage"] != "matching" {
		t.Fatalf("expected stage field, got %+v", got)
	}
	if _, ok := got["hint"]; ok {
		t.Fatalf("did not expect a hint for a generation failure")
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	data, err := report.Encode(&report.Report{
		Summary: report.Summary{TotalCandidates: 1, TotalTeams: 1, CandidatesWithoutMatches: 1, ReportDate: "2026-10-19 10:00:00"},
		Matches: []report.CandidateResult{{
			CandidateName: "Alice",
			Phone:         "Not Available",
			Email:         "Not Available",
			LinkedIn:      "Not Available",
			MatchingTeams: []report.TeamMatch{},
		}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(valid, data, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := validateFile(valid); err != nil {
		t.Fatalf("expected valid report, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"summary": {}, "matches": "none"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	var schemaErr *report.SchemaError
	if err := validateFile(invalid); !errors.As(err, &schemaErr) {
		t.Fatalf("expected schema error, got %v", err)
	}

	if err := validateFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestHandleAction(t *testing.T) {
	r := &report.Report{Matches: []report.CandidateResult{}}

	if err := handleAction(PromptExit, r, 3); !errors.Is(err, errExit) {
		t.Fatalf("expected exit, got %v", err)
	}
	if err := handleAction("unknown", r, 3); err == nil {
		t.Fatal("expected error for unknown action")
	}
}
