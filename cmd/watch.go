package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/apperrors"
	"github.com/spigell/profilematch/internal/logger"
	"github.com/spigell/profilematch/internal/matching"
	"github.com/spigell/profilematch/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run matching once, then again whenever a document changes in the input directories",
	Run: func(_ *cobra.Command, _ []string) {
		watch()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("debounce", 0, "quiet period before a change triggers a run (default 2s)")
	viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))
}

func watch() {
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

	logger.Info("starting the profilematch in watch mode", zap.String("version", version))

	s, err := newSession(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the run", errorFields(err)...)
	}

	// The directories must exist before fsnotify can follow them.
	if err := s.rematch(ctx); err != nil {
		logger.Fatal("matching failed", errorFields(err)...)
	}

	w, err := watcher.New(s.service.Registry().Supports, config.Watch.Debounce, logger)
	if err != nil {
		logger.Fatal("creating a watcher", zap.Error(err))
	}
	defer w.Close()

	batches, err := w.Watch(ctx, s.service.Dirs()...)
	if err != nil {
		logger.Fatal("watching input directories", zap.Error(err), zap.Strings("dirs", s.service.Dirs()))
	}

	logger.Info("waiting for changes", zap.Strings("dirs", s.service.Dirs()))

	for batch := range batches {
		logger.Info("input documents changed", zap.Int("changes", len(batch)))

		if err := s.rematch(ctx); err != nil {
			logger.Fatal("matching failed", errorFields(err)...)
		}
	}

	logger.Info("exiting", zap.String("reason", "interrupted"))
}

// rematch runs one pass in watch mode. Only configuration problems stop watching; failed
// generations and empty inputs wait for the next change.
func (s *session) rematch(ctx context.Context) error {
	_, path, err := s.match(ctx)
	switch {
	case err == nil:
		s.logger.Info("matching finished", zap.String("report", path))
		return nil
	case errors.Is(err, matching.ErrNoDocuments):
		s.logger.Info("nothing to match yet", zap.String("reason", err.Error()))
		return nil
	case ctx.Err() != nil:
		return nil
	}

	var cfgErr *apperrors.ConfigurationError
	if errors.As(err, &cfgErr) {
		return err
	}

	s.logger.Error("matching failed, waiting for the next change", errorFields(err)...)
	return nil
}
