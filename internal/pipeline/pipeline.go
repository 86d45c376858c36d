// Package pipeline runs dependent generation stages strictly in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/apperrors"
	"github.com/spigell/profilematch/internal/logger"
	"github.com/spigell/profilematch/internal/utils"
)

const defaultMaxLogLength = 200

// InvokeFunc produces the raw text of one stage from its instruction and the outputs of the
// stages it depends on.
type InvokeFunc func(ctx context.Context, instruction string, prior []Output) (string, error)

// Invoker is the generation collaborator shared by all stages.
type Invoker interface {
	Name() string
	Invoke(ctx context.Context, instruction string, prior []Output) (string, error)
}

// Stage is one step of the pipeline.
type Stage struct {
	ID          string
	Instruction string
	DependsOn   []string
	// Invoke replaces the orchestrator's invoker for this stage when set.
	Invoke InvokeFunc
}

// Output is the verbatim text a stage produced.
type Output struct {
	StageID string
	Text    string
}

// Result holds every stage output in execution order.
type Result struct {
	Outputs []Output
}

// Output returns the text produced by the stage with the given id.
func (r *Result) Output(id string) (string, bool) {
	for _, out := range r.Outputs {
		if out.StageID == id {
			return out.Text, true
		}
	}
	return "", false
}

// Final returns the output of the last stage.
func (r *Result) Final() Output {
	if len(r.Outputs) == 0 {
		return Output{}
	}
	return r.Outputs[len(r.Outputs)-1]
}

type Orchestrator struct {
	invoker   Invoker
	logger    *zap.Logger
	maxLogLen int
}

func New(invoker Invoker, log *zap.Logger, maxLogLength int) *Orchestrator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Orchestrator{
		invoker:   invoker,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

// Run executes the stages in declaration order. Each stage receives the outputs of its
// dependencies as context. The first failure aborts the run with a *apperrors.PipelineError
// and no partial result is returned.
func (o *Orchestrator) Run(ctx context.Context, stages []Stage) (*Result, error) {
	if err := Validate(stages); err != nil {
		return nil, err
	}

	result := &Result{Outputs: make([]Output, 0, len(stages))}
	byID := make(map[string]Output, len(stages))

	for i, stage := range stages {
		log := o.logger.With(zap.String(logger.FieldStage, stage.ID))

		if err := ctx.Err(); err != nil {
			log.Warn("pipeline cancelled before stage")
			return nil, o.fail(stage.ID, err)
		}

		deps := make([]Output, 0, len(stage.DependsOn))
		for _, id := range stage.DependsOn {
			deps = append(deps, byID[id])
		}

		log.Info("stage started",
			zap.Int("position", i+1),
			zap.Int("total", len(stages)),
			zap.Strings("depends_on", stage.DependsOn),
		)
		log.Debug("stage instruction",
			zap.String("instruction_preview", utils.TruncateForLog(stage.Instruction, o.maxLogLen)),
		)

		started := time.Now()
		text, err := o.invoke(ctx, stage, deps)
		if err != nil {
			log.Error("stage failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
			return nil, o.fail(stage.ID, err)
		}

		log.Info("stage finished",
			zap.Duration("elapsed", time.Since(started)),
			zap.Int("output_length", utf8.RuneCountInString(text)),
		)
		log.Debug("stage output",
			zap.String("output_preview", utils.TruncateForLog(text, o.maxLogLen)),
		)

		out := Output{StageID: stage.ID, Text: text}
		result.Outputs = append(result.Outputs, out)
		byID[stage.ID] = out
	}

	return result, nil
}

func (o *Orchestrator) invoke(ctx context.Context, stage Stage, deps []Output) (string, error) {
	if stage.Invoke != nil {
		return stage.Invoke(ctx, stage.Instruction, deps)
	}
	if o.invoker == nil {
		return "", errors.New("no invoker configured")
	}
	return o.invoker.Invoke(ctx, stage.Instruction, deps)
}

func (o *Orchestrator) fail(stageID string, err error) error {
	var genErr *apperrors.GenerationError
	if !errors.As(err, &genErr) {
		provider := ""
		if o.invoker != nil {
			provider = o.invoker.Name()
		}
		err = &apperrors.GenerationError{Provider: provider, Err: err}
	}
	return &apperrors.PipelineError{Stage: stageID, Err: err}
}

// Validate checks that stage ids are unique and non-empty and that every dependency names a
// stage declared earlier.
func Validate(stages []Stage) error {
	seen := make(map[string]struct{}, len(stages))

	for _, stage := range stages {
		if stage.ID == "" {
			return &apperrors.PipelineError{Err: errors.New("stage id is empty")}
		}
		if _, ok := seen[stage.ID]; ok {
			return &apperrors.PipelineError{Stage: stage.ID, Err: errors.New("duplicate stage id")}
		}
		for _, dep := range stage.DependsOn {
			if _, ok := seen[dep]; !ok {
				return &apperrors.PipelineError{
					Stage: stage.ID,
					Err:   fmt.Errorf("dependency %q is not declared before this stage", dep),
				}
			}
		}
		seen[stage.ID] = struct{}{}
	}

	return nil
}
