package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// errPromptCancelled is returned when the user bails out of the prompts.
var errPromptCancelled = errors.New("cancelled")

var (
	promptLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	promptHintStyle  = lipgloss.NewStyle().Faint(true)
)

// promptPhase tracks which of the two questions is on screen.
type promptPhase int

const (
	phaseQuery promptPhase = iota
	phaseSavePreference
)

// promptModel collects the two session inputs read once at process start:
// the research query and whether to append the final note to the notepad.
type promptModel struct {
	input textinput.Model
	phase promptPhase

	query     string
	save      bool
	done      bool
	cancelled bool
}

func newPromptModel() promptModel {
	ti := textinput.New()
	ti.Placeholder = "what should be researched?"
	ti.CharLimit = 512
	ti.Width = 64
	ti.Focus()
	return promptModel{input: ti}
}

// Init implements tea.Model.
func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyEnter:
			value := strings.TrimSpace(m.input.Value())
			switch m.phase {
			case phaseQuery:
				if value == "" {
					return m, nil // a query is required
				}
				m.query = value
				m.phase = phaseSavePreference
				m.input.SetValue("")
				m.input.Placeholder = "y/n"
				return m, nil

			case phaseSavePreference:
				m.save = strings.HasPrefix(strings.ToLower(value), "y")
				m.done = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m promptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	label := "Enter your research question"
	if m.phase == phaseSavePreference {
		label = "Save the final note to the notepad file? (y/n)"
	}

	return fmt.Sprintf("%s\n%s\n%s\n",
		promptLabelStyle.Render(label),
		m.input.View(),
		promptHintStyle.Render("enter to continue, esc to cancel"),
	)
}

// promptUser runs the interactive prompts and returns the query and the
// save-to-notepad preference.
func promptUser() (query string, save bool, err error) {
	final, err := tea.NewProgram(newPromptModel()).Run()
	if err != nil {
		return "", false, fmt.Errorf("run prompt: %w", err)
	}

	m, ok := final.(promptModel)
	if !ok || m.cancelled {
		return "", false, errPromptCancelled
	}
	return m.query, m.save, nil
}
