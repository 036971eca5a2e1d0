package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/driftworks/devsess/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "devsess",
	Short: "Multi-instance development stack session manager",
	Long: `devsess runs isolated instances of the development service stack
(graph store, message bus, storage emulator, placeholder APIs) side by
side on one machine.

Each session gets its own non-conflicting ports and its own compose
project namespace, so independent runs never collide.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage development stack sessions",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(sessionCmd)
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)
