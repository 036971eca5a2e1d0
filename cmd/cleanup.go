package cmd

import (
	"github.com/spf13/cobra"

	"github.com/driftworks/devsess/internal/logging"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [id]",
	Short: "Tear down a session: containers, ports, record",
	Long: `Cleanup tears a session down in order: containers first, then the
port reservations, then the session record. Each step is idempotent, so
cleanup is always safe to retry, including on a session whose creation
only partially succeeded or an id that no longer exists.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCleanup,
}

func init() {
	sessionCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	m, err := getManager()
	if err != nil {
		return err
	}

	id := ""
	if len(args) > 0 {
		id = args[0]
	} else {
		s, err := resolveSessionArg(m, args)
		if err != nil {
			return err
		}
		if s == nil {
			return nil // picker dismissed
		}
		id = s.ID
	}

	logging.Debug("cleaning up session", "id", id)
	logInfo("Cleaning up session %s...", id)

	if err := m.Cleanup(cmd.Context(), id); err != nil {
		return err
	}

	logSuccess("Session %s cleaned up", id)
	return nil
}
