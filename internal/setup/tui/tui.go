// Package tui provides the Bubble Tea TUI for the setup wizard.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/denysvitali/nbalance/internal/config"
)

type screen int

const (
	screenForm screen = iota
	screenSuccess
)

type field int

const (
	fieldAPIConfig field = iota
	fieldUserID
	fieldToken
	fieldLLMTool
	fieldCount
)

// Model represents the state of the TUI
type Model struct {
	screen        screen
	width, height int
	path          string
	base          config.Config

	// Text inputs for the string fields, indexed by field
	inputs     [fieldLLMTool]string
	enableTool bool
	focus      field

	successMsg string
	errorMsg   string
	saved      bool

	keys KeyMap
}

// NewModel creates a form prefilled from cfg that saves to path
func NewModel(path string, cfg config.Config) Model {
	m := Model{
		screen:     screenForm,
		path:       path,
		base:       cfg,
		enableTool: cfg.EnableLLMTool,
		keys:       DefaultKeyMap(),
	}
	m.inputs[fieldAPIConfig] = cfg.APIConfig
	m.inputs[fieldUserID] = cfg.UserID
	m.inputs[fieldToken] = cfg.Token
	return m
}

// Run loads the config at path, shows the form and reports whether it was saved
func Run(path string) (bool, error) {
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadRaw(path)
	if err != nil {
		cfg = config.Default()
	}

	final, err := tea.NewProgram(NewModel(path, cfg), tea.WithAltScreen()).Run()
	if err != nil {
		return false, fmt.Errorf("failed to run setup TUI: %w", err)
	}
	m, ok := final.(Model)
	return ok && m.saved, nil
}

// Saved reports whether the form was written to disk
func (m Model) Saved() bool {
	return m.saved
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case configSavedMsg:
		m.saved = true
		m.successMsg = fmt.Sprintf("Configuration saved to %s", msg.path)
		m.screen = screenSuccess
		return m, nil

	case errorMsg:
		m.errorMsg = msg.err.Error()
		return m, nil
	}

	return m, nil
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenForm:
		return m.updateForm(msg)
	case screenSuccess:
		// Any key exits
		return m, tea.Quit
	}

	return m, nil
}

// Config returns the configuration currently entered in the form
func (m Model) Config() config.Config {
	cfg := m.base
	cfg.APIConfig = strings.TrimSpace(m.inputs[fieldAPIConfig])
	cfg.UserID = strings.TrimSpace(m.inputs[fieldUserID])
	cfg.Token = strings.TrimSpace(m.inputs[fieldToken])
	cfg.EnableLLMTool = m.enableTool
	cfg.ApplyDefaults()
	return cfg
}

// View renders the current screen
func (m Model) View() string {
	if m.width == 0 {
		m.width = 80
	}

	var content strings.Builder

	switch m.screen {
	case screenForm:
		content.WriteString(m.viewForm())
	case screenSuccess:
		content.WriteString(m.viewSuccess())
	}

	content.WriteString("\n\n")
	content.WriteString(m.viewFooter())

	return lipgloss.NewStyle().Width(m.width).Height(m.height).Render(content.String())
}
