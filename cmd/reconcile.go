package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove port reservations orphaned by missing sessions",
	Long: `Reconcile drops port reservations whose owning session record no
longer exists, healing allocation state left behind by crashed or
abandoned sessions. It never runs implicitly; invoke it when "session
create" reports an exhausted range that the session list doesn't
explain.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

var reconcileDryRun bool

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "Show orphaned reservations without removing them")
	sessionCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	m, err := getManager()
	if err != nil {
		return err
	}

	if reconcileDryRun {
		orphans, err := m.Orphans()
		if err != nil {
			return err
		}
		if len(orphans) == 0 {
			logInfo("No orphaned reservations")
			return nil
		}
		for _, a := range orphans {
			fmt.Printf("would remove port %d (%s, session %s)\n", a.Port, a.Service, a.SessionID)
		}
		return nil
	}

	removed, err := m.Reconcile()
	if err != nil {
		return err
	}

	if len(removed) == 0 {
		logInfo("No orphaned reservations")
		return nil
	}

	for _, a := range removed {
		fmt.Printf("removed port %d (%s, session %s)\n", a.Port, a.Service, a.SessionID)
	}
	logSuccess("Reconciled %d orphaned reservation(s)", len(removed))
	return nil
}
