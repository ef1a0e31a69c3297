package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/denysvitali/nbalance/internal/config"
)

type configSavedMsg struct {
	path string
}

type errorMsg struct {
	err error
}

// saveConfig validates cfg and writes it to path
func saveConfig(path string, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		if err := cfg.Validate(); err != nil {
			return errorMsg{err: err}
		}
		if err := config.Save(path, cfg); err != nil {
			return errorMsg{err: err}
		}
		return configSavedMsg{path: path}
	}
}

// updateForm handles updates for the settings form
func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "up", "shift+tab":
		if m.focus > 0 {
			m.focus--
		}
		return m, nil
	case "down", "tab":
		if m.focus < fieldCount-1 {
			m.focus++
		}
		return m, nil
	case "ctrl+s":
		m.errorMsg = ""
		return m, saveConfig(m.path, m.Config())
	case "enter":
		if m.focus < fieldCount-1 {
			m.focus++
			return m, nil
		}
		m.errorMsg = ""
		return m, saveConfig(m.path, m.Config())
	}

	if m.focus == fieldLLMTool {
		switch msg.String() {
		case " ", "left", "right":
			m.enableTool = !m.enableTool
		case "y":
			m.enableTool = true
		case "n":
			m.enableTool = false
		}
		return m, nil
	}

	switch msg.Type { //nolint:exhaustive
	case tea.KeyBackspace:
		if r := []rune(m.inputs[m.focus]); len(r) > 0 {
			m.inputs[m.focus] = string(r[:len(r)-1])
		}
	case tea.KeyCtrlU:
		m.inputs[m.focus] = ""
	case tea.KeyRunes:
		m.inputs[m.focus] += string(msg.Runes)
	case tea.KeySpace:
		m.inputs[m.focus] += " "
	}
	return m, nil
}

// viewForm renders the settings form
func (m Model) viewForm() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("nbalance Setup"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("NewAPI balance query settings"))
	b.WriteString("\n\n")

	b.WriteString(RenderInputField("NewAPI address", m.inputs[fieldAPIConfig], config.DefaultAPIConfig, m.focus == fieldAPIConfig, false))
	b.WriteString("\n")
	b.WriteString(RenderInputField("User ID", m.inputs[fieldUserID], config.DefaultUserID, m.focus == fieldUserID, false))
	b.WriteString("\n")
	b.WriteString(RenderInputField("Access token", m.inputs[fieldToken], "sk-...", m.focus == fieldToken, true))
	b.WriteString("\n")
	b.WriteString(RenderCursor(m.focus == fieldLLMTool) + " " + RenderToggle("LLM tool (query_balance)", m.enableTool))
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString("\n" + RenderError(m.errorMsg))
	}

	return boxStyle.Render(b.String())
}

// viewSuccess renders the success screen
func (m Model) viewSuccess() string {
	var b strings.Builder
	b.WriteString(RenderSuccess(m.successMsg))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Run `nbalance` to query the balance."))
	return b.String()
}

// viewFooter renders the key help line
func (m Model) viewFooter() string {
	if m.screen == screenSuccess {
		return helpStyle.Render("press any key to exit")
	}
	return helpStyle.Render(m.keys.HelpView(m.keys.ShortHelp()...))
}
