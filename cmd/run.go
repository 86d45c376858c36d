package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/logger"
	"github.com/spigell/profilematch/internal/matching"
	"github.com/spigell/profilematch/internal/report"
)

const (
	PromptYes        = "Yes"
	PromptNo         = "No"
	PromptPrintTable = "Print table"
	PromptShowReport = "Show text report"
	PromptExit       = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo},
}

var resultPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptPrintTable, PromptShowReport, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Match every profile against every job description and save the report",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before calling the model")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the profilematch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	s, err := newSession(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the run", errorFields(err)...)
	}

	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"

	if !autoApprove {
		logger.Info("the run calls the model four times",
			zap.String("provider", s.generator.Provider()),
			zap.String("model", s.generator.Model()),
			zap.String("profiles", config.ProfilesDir),
			zap.String("job_descriptions", config.JobDescriptionsDir),
		)

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action == PromptNo {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	outcome, path, err := s.match(ctx)
	if errors.Is(err, matching.ErrNoDocuments) {
		logger.Info("exiting", zap.String("reason", err.Error()))
		return
	}
	if err != nil {
		logger.Fatal("matching failed", errorFields(err)...)
	}

	logger.Info("matching finished",
		zap.String("report", path),
		zap.Int("candidates", outcome.Report.Summary.TotalCandidates),
		zap.Int("with_matches", outcome.Report.Summary.CandidatesWithMatches),
	)

	if autoApprove {
		return
	}

	for {
		_, action, err := resultPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, outcome.Report, config.Matching.TopN); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, r *report.Report, topN int) error {
	switch action {
	case PromptPrintTable:
		return report.PrintTable(os.Stdout, r, topN)
	case PromptShowReport:
		return report.RenderText(os.Stdout, r, topN)
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}
