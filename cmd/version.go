package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/profilematch/internal/documents"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the supported document formats",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s (%s)\n", app, version, runtime.Version())
		fmt.Printf("document formats: %s\n", strings.Join(documents.DefaultRegistry().Formats(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
