package cmd

import (
	"github.com/driftworks/devsess/internal/app"
	"github.com/driftworks/devsess/internal/errors"
	"github.com/driftworks/devsess/internal/session"
	"github.com/driftworks/devsess/internal/tui"
)

// getApp returns the application context, initializing the default
// from host configuration on first use.
func getApp() (*app.App, error) {
	if app.Default == nil {
		a, err := app.Load()
		if err != nil {
			return nil, err
		}
		app.SetDefault(a)
	}
	return app.Default, nil
}

// getManager returns the wired session manager.
func getManager() (*session.Manager, error) {
	a, err := getApp()
	if err != nil {
		return nil, err
	}
	return a.Manager, nil
}

// resolveSessionArg returns the session for an explicit id argument,
// or runs the interactive picker when no argument was given.
func resolveSessionArg(m *session.Manager, args []string) (*session.Session, error) {
	if len(args) > 0 {
		return m.Status(args[0])
	}

	sessions, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, errors.ValidationError("no sessions exist")
	}

	result, err := tui.RunPicker(sessions)
	if err != nil {
		return nil, err
	}
	if result.Action != tui.ActionSelect {
		return nil, nil
	}
	return result.Session, nil
}
