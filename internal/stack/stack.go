package stack

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile names selectable at session creation.
const (
	ProfileCore = "core"
	ProfileFull = "full"
)

// Service describes one infrastructure service in the development stack.
type Service struct {
	Name          string
	Image         string
	ContainerPort int
	Profiles      []string
	Environment   map[string]string
}

// placeholderImage backs services with no known definition. It answers
// HTTP on port 80, which is enough for the stub APIs in the stack.
const placeholderImage = "traefik/whoami:v1.10"

// known is the built-in service table for the development stack.
var known = map[string]Service{
	"graph": {
		Name:          "graph",
		Image:         "neo4j:5-community",
		ContainerPort: 7687,
		Profiles:      []string{ProfileCore, ProfileFull},
		Environment:   map[string]string{"NEO4J_AUTH": "none"},
	},
	"bus": {
		Name:          "bus",
		Image:         "nats:2.10-alpine",
		ContainerPort: 4222,
		Profiles:      []string{ProfileCore, ProfileFull},
	},
	"storage": {
		Name:          "storage",
		Image:         "mcr.microsoft.com/azure-storage/azurite:latest",
		ContainerPort: 10000,
		Profiles:      []string{ProfileCore, ProfileFull},
	},
	"api": {
		Name:          "api",
		Image:         placeholderImage,
		ContainerPort: 80,
		Profiles:      []string{ProfileFull},
	},
}

// Lookup returns the stack definition for a service name. Unknown names
// get a placeholder API definition so arbitrary service sets still
// produce a startable stack.
func Lookup(name string) Service {
	if svc, ok := known[name]; ok {
		return svc
	}
	return Service{
		Name:          name,
		Image:         placeholderImage,
		ContainerPort: 80,
		Profiles:      []string{ProfileCore, ProfileFull},
	}
}

// ValidProfile reports whether name is a selectable profile.
func ValidProfile(name string) bool {
	return name == ProfileCore || name == ProfileFull
}

// PortEnvKey returns the env file key that carries a service's host
// port, e.g. "graph" -> "GRAPH_PORT". Hyphens map to underscores so the
// key is always a valid shell identifier.
func PortEnvKey(service string) string {
	return strings.ToUpper(strings.ReplaceAll(service, "-", "_")) + "_PORT"
}

// composeService is the YAML shape of one service entry.
type composeService struct {
	Image       string            `yaml:"image"`
	Ports       []string          `yaml:"ports"`
	Profiles    []string          `yaml:"profiles,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
}

// composeFile is the YAML shape of the generated compose document.
type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

// Render produces the compose document for the requested services. Host
// ports are referenced through env file variables, so the document
// itself is identical across sessions; only the env file differs.
func Render(services []string) ([]byte, error) {
	if len(services) == 0 {
		return nil, fmt.Errorf("no services to render")
	}

	doc := composeFile{Services: make(map[string]composeService, len(services))}

	names := append([]string(nil), services...)
	sort.Strings(names)

	for _, name := range names {
		svc := Lookup(name)
		doc.Services[name] = composeService{
			Image:       svc.Image,
			Ports:       []string{fmt.Sprintf("127.0.0.1:${%s}:%d", PortEnvKey(name), svc.ContainerPort)},
			Profiles:    svc.Profiles,
			Environment: svc.Environment,
		}
	}

	return yaml.Marshal(doc)
}

// Write renders the compose document for services to path. The file is
// derived, disposable state; it is regenerated in full on every session
// creation.
func Write(path string, services []string) error {
	data, err := Render(services)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write stack file: %w", err)
	}
	return nil
}
