package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/driftworks/devsess/internal/logging"
	"github.com/driftworks/devsess/internal/session"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new session with non-conflicting ports",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

var (
	createServices        []string
	createProfile         string
	createStartContainers bool
)

func init() {
	createCmd.Flags().StringSliceVar(&createServices, "services", nil, "Services to allocate ports for (default from config)")
	createCmd.Flags().StringVar(&createProfile, "profile", "", "Stack profile: core or full (default from config)")
	createCmd.Flags().BoolVar(&createStartContainers, "start-containers", false, "Start the stack after creating the session")
	sessionCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	m, err := getManager()
	if err != nil {
		return err
	}

	logging.Debug("creating session", "services", createServices, "profile", createProfile)
	logInfo("Creating session...")

	s, err := m.Create(cmd.Context(), session.CreateOptions{
		Services:        createServices,
		Profile:         createProfile,
		StartContainers: createStartContainers,
	})
	if err != nil {
		if s != nil {
			// The session exists; only the container start failed.
			logWarning("Session %s created but containers failed to start", s.ShortID)
			logWarning("Start manually or remove with: devsess session cleanup %s", s.ShortID)
		}
		return err
	}

	logSuccess("Session %s created", s.ShortID)
	fmt.Printf("  Project: %s\n", s.ProjectName)
	fmt.Printf("  Env file: %s\n", s.EnvPath)
	printPorts(s)
	if s.Status == session.StatusActive {
		fmt.Printf("  Containers: running\n")
	}

	return nil
}

func printPorts(s *session.Session) {
	services := make([]string, 0, len(s.Ports))
	for svc := range s.Ports {
		services = append(services, svc)
	}
	sort.Strings(services)
	for _, svc := range services {
		fmt.Printf("  %s: 127.0.0.1:%d\n", svc, s.Ports[svc])
	}
}
