// Package ai adapts text generation backends to the matching pipeline.
package ai

import (
	"context"
	_ "embed"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/apperrors"
	"github.com/spigell/profilematch/internal/logger"
	"github.com/spigell/profilematch/internal/pipeline"
	"github.com/spigell/profilematch/internal/utils"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"

	defaultMaxLogLength = 200
)

//go:embed system.md
var systemPrompt string

// Generator is a text generation backend.
type Generator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Provider() string
	Model() string
}

// Invoker feeds pipeline stages to a Generator. It is the single invocation collaborator
// shared by all stages.
type Invoker struct {
	generator Generator
	system    string
	logger    *zap.Logger
	maxLogLen int
}

func NewInvoker(generator Generator, log *zap.Logger, maxLogLength int) *Invoker {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Invoker{
		generator: generator,
		system:    strings.TrimSpace(systemPrompt),
		logger:    logger.WithProvider(log, generator.Provider(), generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (i *Invoker) Name() string { return i.generator.Provider() }

// Invoke sends the instruction with the prior outputs as context. Failures are returned as
// *apperrors.GenerationError.
func (i *Invoker) Invoke(ctx context.Context, instruction string, prior []pipeline.Output) (string, error) {
	message := ComposeMessage(instruction, prior)

	i.logger.Debug("generation request",
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.Int("context_stages", len(prior)),
		zap.String("message_preview", utils.TruncateForLog(message, i.maxLogLen)),
	)

	out, err := i.generator.GenerateContent(ctx, i.system, message)
	if err != nil {
		var genErr *apperrors.GenerationError
		if errors.As(err, &genErr) {
			return "", err
		}
		return "", &apperrors.GenerationError{Provider: i.generator.Provider(), Err: err}
	}

	i.logger.Debug("generation response",
		zap.Int("response_length", utf8.RuneCountInString(out)),
		zap.String("response_preview", utils.TruncateForLog(out, i.maxLogLen)),
	)

	return out, nil
}

// ComposeMessage places the dependency outputs, verbatim and in order, before the task.
func ComposeMessage(instruction string, prior []pipeline.Output) string {
	var sb strings.Builder

	if len(prior) > 0 {
		sb.WriteString("## Results of previous stages\n")
		for _, out := range prior {
			sb.WriteString("\n### Stage: ")
			sb.WriteString(out.StageID)
			sb.WriteString("\n")
			sb.WriteString(out.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n## Task\n")
	}

	sb.WriteString(strings.TrimSpace(instruction))
	return sb.String()
}
