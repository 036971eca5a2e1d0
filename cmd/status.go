package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Show detailed status of a session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	sessionCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	m, err := getManager()
	if err != nil {
		return err
	}

	s, err := resolveSessionArg(m, args)
	if err != nil {
		return err
	}
	if s == nil {
		return nil // picker dismissed
	}

	fmt.Printf("Session: %s\n", s.ShortID)
	fmt.Printf("ID: %s\n", s.ID)
	fmt.Printf("Project: %s\n", s.ProjectName)
	fmt.Printf("Status: %s\n", s.Status)
	if s.Profile != "" {
		fmt.Printf("Profile: %s\n", s.Profile)
	}
	fmt.Printf("Env file: %s\n", s.EnvPath)
	fmt.Printf("Stack file: %s\n", s.StackPath)
	fmt.Printf("Created: %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Println()

	fmt.Println("Ports:")
	printPorts(s)

	running, err := m.Running(cmd.Context(), s)
	if err != nil {
		logWarning("could not query container state: %v", err)
		return nil
	}
	fmt.Println()
	fmt.Printf("Containers: %s\n", boolStatus(running))

	return nil
}

func boolStatus(b bool) string {
	if b {
		return "✓ running"
	}
	return "● stopped"
}
