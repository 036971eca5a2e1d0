// Package tui provides terminal user interface components for devsess
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/driftworks/devsess/internal/session"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionSelect
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action  Action
	Session *session.Session
}

// sessionItem implements list.Item for session display
type sessionItem struct {
	session *session.Session
}

func (i sessionItem) Title() string {
	return i.session.ShortID
}

func (i sessionItem) Description() string {
	statusIcon := "●"
	if i.session.Status == session.StatusActive {
		statusIcon = "✓"
	}

	return fmt.Sprintf("%s %s | %s | %s",
		statusIcon,
		i.session.ProjectName,
		strings.Join(i.session.Services(), ","),
		i.session.CreatedAt.Local().Format("2006-01-02 15:04"),
	)
}

func (i sessionItem) FilterValue() string {
	return i.session.ShortID + " " + i.session.ProjectName
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the session picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a new session picker
func NewPicker(sessions []*session.Session) Model {
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = sessionItem{session: s}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 80, 20)
	l.Title = "devsess - Select Session"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(sessionItem); ok {
				m.result = PickerResult{
					Action:  ActionSelect,
					Session: item.session,
				}
				m.quitting = true
				return m, tea.Quit
			}

		case "q", "esc":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Select  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive session picker
func RunPicker(sessions []*session.Session) (PickerResult, error) {
	if len(sessions) == 0 {
		return PickerResult{Action: ActionNone}, nil
	}

	m := NewPicker(sessions)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, fmt.Errorf("picker failed: %w", err)
	}

	if picker, ok := finalModel.(Model); ok {
		return picker.Result(), nil
	}

	return PickerResult{Action: ActionQuit}, nil
}
