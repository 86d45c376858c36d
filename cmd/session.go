package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/ai"
	"github.com/spigell/profilematch/internal/ai/gemini"
	"github.com/spigell/profilematch/internal/ai/ollama"
	"github.com/spigell/profilematch/internal/apperrors"
	"github.com/spigell/profilematch/internal/documents"
	"github.com/spigell/profilematch/internal/logger"
	"github.com/spigell/profilematch/internal/matching"
	"github.com/spigell/profilematch/internal/report"
	"github.com/spigell/profilematch/internal/secrets"
)

var hints = map[string]string{
	"ai.gemini.api-key": "set GEMINI_API_KEY or GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file",
	"ai.provider":       "use gemini or ollama",
	"output-format":     "use json or text",
	"weights":           "matching.weights.* must add up to 100",
	"match-threshold":   "matching.match-threshold must be within [0,100]",
}

// session holds everything a matching run needs once configuration is resolved.
type session struct {
	config    *Config
	logger    *zap.Logger
	generator ai.Generator
	service   *matching.Service
	sink      *report.Sink
	format    report.Format
}

func newSession(ctx context.Context, config *Config, log *zap.Logger) (*session, error) {
	format, err := report.ParseFormat(config.OutputFormat)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		return nil, err
	}

	service, err := matching.NewService(matching.Config{
		ProfilesDir:        config.ProfilesDir,
		JobDescriptionsDir: config.JobDescriptionsDir,
		Weights:            config.Matching.Weights,
		Threshold:          config.Matching.MatchThreshold,
		TopN:               config.Matching.TopN,
		ReaderConcurrency:  config.ReaderConcurrency,
		MaxLogLength:       config.AI.Gemini.MaxLogLength,
	}, matching.Deps{
		Invoker:  ai.NewInvoker(generator, log, config.AI.Gemini.MaxLogLength),
		Registry: documents.DefaultRegistry(),
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	return &session{
		config:    config,
		logger:    log,
		generator: generator,
		service:   service,
		sink:      report.NewSink(config.OutputDir, nil, config.Matching.TopN, log),
		format:    format,
	}, nil
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, error) {
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case "", ai.ProviderGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "ai.gemini.api-key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, err
		}

		return gemini.NewGenerator(ctx, gemini.Config{
			APIKey:      apiKey,
			Model:       cfg.Gemini.Model,
			MaxRetries:  cfg.Gemini.MaxRetries,
			Temperature: cfg.Temperature,
		}, log)
	case ai.ProviderOllama:
		return ollama.NewGenerator(ollama.Config{
			URL:         cfg.Ollama.URL,
			Model:       cfg.Ollama.Model,
			Timeout:     cfg.Ollama.Timeout,
			Temperature: cfg.Temperature,
		}, log), nil
	default:
		return nil, &apperrors.ConfigurationError{
			Field:   "ai.provider",
			Message: fmt.Sprintf("unsupported provider %q", cfg.Provider),
		}
	}
}

// match performs one run and persists the report. It returns the outcome and the report path.
func (s *session) match(ctx context.Context) (*matching.Outcome, string, error) {
	outcome, err := s.service.Run(ctx)
	if err != nil {
		return nil, "", err
	}

	for _, w := range outcome.Warnings {
		s.logger.Warn("run finished with a recovered problem", zap.String(logger.FieldRunID, outcome.RunID), zap.Error(w))
	}

	path, err := s.sink.Write(outcome.Report, s.format)
	if err != nil {
		return outcome, "", err
	}

	return outcome, path, nil
}

// errorFields describes err for a log entry: the cause, the failed stage and a hint for
// configuration problems.
func errorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}

	if stage, ok := apperrors.Stage(err); ok {
		fields = append(fields, zap.String(logger.FieldStage, stage))
	}

	var cfgErr *apperrors.ConfigurationError
	if errors.As(err, &cfgErr) {
		field := cfgErr.Field
		if strings.HasPrefix(field, "weights.") {
			field = "weights"
		}
		if hint, ok := hints[field]; ok {
			fields = append(fields, zap.String("hint", hint))
		}
	}

	var persistErr *apperrors.PersistenceError
	if errors.As(err, &persistErr) {
		fields = append(fields, zap.String("path", persistErr.Path))
	}

	return fields
}
