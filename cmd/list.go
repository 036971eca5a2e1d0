package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output sessions as JSON")
	sessionCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	m, err := getManager()
	if err != nil {
		return err
	}

	sessions, err := m.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if sessions == nil {
			// An empty list is not an error; render it as one.
			fmt.Println("[]")
			return nil
		}
		return enc.Encode(sessions)
	}

	if len(sessions) == 0 {
		logInfo("No sessions found. Create one with: devsess session create")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SHORT ID\tPROJECT\tSTATUS\tPORTS\tCREATED")
	fmt.Fprintln(w, "--------\t-------\t------\t-----\t-------")

	for _, s := range sessions {
		var ports []string
		for _, svc := range s.Services() {
			ports = append(ports, fmt.Sprintf("%s:%d", svc, s.Ports[svc]))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.ShortID, s.ProjectName, s.Status,
			strings.Join(ports, " "),
			s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	return w.Flush()
}
