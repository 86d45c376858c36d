// Package matching runs one complete profile matching pass.
package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/documents"
	"github.com/spigell/profilematch/internal/extract"
	"github.com/spigell/profilematch/internal/logger"
	"github.com/spigell/profilematch/internal/pipeline"
	"github.com/spigell/profilematch/internal/profiles"
	"github.com/spigell/profilematch/internal/report"
	"github.com/spigell/profilematch/internal/scoring"
	"github.com/spigell/profilematch/internal/stages"
)

// ErrNoDocuments is returned when either input directory holds no readable document.
var ErrNoDocuments = errors.New("no documents to match")

// Config contains the settings of a matching run.
type Config struct {
	ProfilesDir        string
	JobDescriptionsDir string
	Weights            scoring.Weights
	Threshold          int
	TopN               int
	ReaderConcurrency  int
	MaxLogLength       int
}

// Deps aggregates the collaborators of the service.
type Deps struct {
	Invoker  pipeline.Invoker
	Registry *documents.Registry
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Outcome is the result of a successful run. Warnings hold recovered extraction failures.
type Outcome struct {
	RunID    string
	Report   *report.Report
	Warnings []error
}

type Service struct {
	cfg          Config
	model        *scoring.Model
	loader       *documents.Loader
	orchestrator *pipeline.Orchestrator
	assembler    *report.Assembler
	logger       *zap.Logger
	newRunID     func() string
}

// NewService validates the scoring configuration. Invalid weights or threshold are reported as
// *apperrors.ConfigurationError before anything is read or generated.
func NewService(cfg Config, deps Deps) (*Service, error) {
	model, err := scoring.NewModel(cfg.Weights, cfg.Threshold)
	if err != nil {
		return nil, err
	}
	if deps.Invoker == nil {
		return nil, errors.New("matching: invoker is required")
	}

	if cfg.TopN <= 0 {
		cfg.TopN = report.DefaultTopN
	}

	log := logger.WithFields(deps.Logger)

	return &Service{
		cfg:          cfg,
		model:        model,
		loader:       documents.NewLoader(deps.Registry, cfg.ReaderConcurrency, log),
		orchestrator: pipeline.New(deps.Invoker, log, cfg.MaxLogLength),
		assembler:    report.NewAssembler(model, deps.Clock, log),
		logger:       log,
		newRunID:     uuid.NewString,
	}, nil
}

// Registry exposes the document formats the service reads.
func (s *Service) Registry() *documents.Registry { return s.loader.Registry() }

// Dirs returns the input directories.
func (s *Service) Dirs() []string {
	return []string{s.cfg.ProfilesDir, s.cfg.JobDescriptionsDir}
}

// Run reads both input directories, executes the four stages and assembles the report.
func (s *Service) Run(ctx context.Context) (*Outcome, error) {
	runID := s.newRunID()
	log := logger.WithRun(s.logger, runID)

	profileDocs, jdDocs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	log.Info("matching run started",
		zap.Int("profiles", len(profileDocs)),
		zap.Int("job_descriptions", len(jdDocs)),
		zap.Int("match_threshold", s.model.Threshold()),
	)

	plan, err := stages.Build(profileDocs, jdDocs, s.model, s.cfg.TopN)
	if err != nil {
		return nil, err
	}

	result, err := s.orchestrator.Run(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("running pipeline: %w", err)
	}

	outcome := &Outcome{RunID: runID}

	profilesText, _ := result.Output(stages.Profiles)
	candidates, err := extract.Candidates(profilesText)
	if err != nil {
		log.Warn("candidate list could not be recovered, counting profile documents instead", zap.Error(err))
		outcome.Warnings = append(outcome.Warnings, fmt.Errorf("%s stage: %w", stages.Profiles, err))
		candidates = placeholders(profileDocs)
	}

	requirementsText, _ := result.Output(stages.Requirements)
	teams, err := extract.Teams(requirementsText, documents.Names(jdDocs))
	if err != nil {
		log.Warn("team requirements could not be recovered", zap.Error(err))
		outcome.Warnings = append(outcome.Warnings, fmt.Errorf("%s stage: %w", stages.Requirements, err))
	}

	rec, err := extract.Extract(result.Final().Text)
	if err != nil {
		log.Warn("report could not be recovered, keeping raw output", zap.Error(err))
		outcome.Warnings = append(outcome.Warnings, fmt.Errorf("%s stage: %w", stages.Report, err))
	}
	if len(rec.Coerced) > 0 {
		log.Warn("report values could not be read and were reset", zap.Strings("values", rec.Coerced))
	}

	outcome.Report = s.assembler.Assemble(rec, candidates, teams)

	log.Info("matching run finished",
		zap.Int("candidates", outcome.Report.Summary.TotalCandidates),
		zap.Int("teams", outcome.Report.Summary.TotalTeams),
		zap.Int("with_matches", outcome.Report.Summary.CandidatesWithMatches),
		zap.Int("warnings", len(outcome.Warnings)),
	)

	return outcome, nil
}

func (s *Service) load(ctx context.Context) ([]documents.Document, []documents.Document, error) {
	for _, dir := range s.Dirs() {
		if err := documents.EnsureDir(dir); err != nil {
			return nil, nil, err
		}
	}

	profileDocs, err := s.loader.Load(ctx, s.cfg.ProfilesDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading profiles: %w", err)
	}

	jdDocs, err := s.loader.Load(ctx, s.cfg.JobDescriptionsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading job descriptions: %w", err)
	}

	if len(profileDocs) == 0 || len(jdDocs) == 0 {
		return nil, nil, fmt.Errorf("%w: %d profiles in %s, %d job descriptions in %s", ErrNoDocuments,
			len(profileDocs), s.cfg.ProfilesDir, len(jdDocs), s.cfg.JobDescriptionsDir)
	}

	return profileDocs, jdDocs, nil
}

func placeholders(docs []documents.Document) []profiles.Candidate {
	out := make([]profiles.Candidate, len(docs))
	for i, d := range docs {
		out[i] = profiles.Candidate{Name: d.Name}
	}
	return out
}
