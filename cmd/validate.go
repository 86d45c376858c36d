package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/logger"
	"github.com/spigell/profilematch/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate <report.json>",
	Short: "Check a saved JSON report against the report schema",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		validate(args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validate(path string) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	if err := validateFile(path); err != nil {
		var schemaErr *report.SchemaError
		if errors.As(err, &schemaErr) {
			for _, fe := range schemaErr.Errors {
				logger.Error("schema violation", zap.String("field", fe.Field), zap.String("reason", fe.Message))
			}
		}
		logger.Fatal("report is invalid", zap.String("path", path), zap.Error(err))
	}

	logger.Info("report is valid", zap.String("path", path))
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return report.ValidateJSON(data)
}
