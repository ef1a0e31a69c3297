package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	titleColor      = lipgloss.Color("86")  // Cyan
	subtitleColor   = lipgloss.Color("244") // Gray
	cursorColor     = lipgloss.Color("213") // Pink
	successColor    = lipgloss.Color("70")  // Green
	errorColor      = lipgloss.Color("203") // Red
	dimColor        = lipgloss.Color("241") // Dim gray
	mutedColor      = lipgloss.Color("245") // Muted gray
	inputFocusColor = lipgloss.Color("117") // Light blue
	borderColor     = lipgloss.Color("238")
)

// Style definitions
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(titleColor).
			Bold(true).
			MarginTop(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(subtitleColor)

	cursorStyle = lipgloss.NewStyle().
			Foreground(cursorColor).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	inputFieldStyle = lipgloss.NewStyle().
			Foreground(inputFocusColor).
			Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(dimColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			MarginTop(1)
)

// RenderCursor returns the cursor indicator
func RenderCursor(isActive bool) string {
	if isActive {
		return cursorStyle.Render("▶")
	}
	return " "
}

// RenderInputField returns a styled input field
func RenderInputField(label, value, placeholder string, isActive, isPassword bool) string {
	var renderedValue string
	switch {
	case isPassword && value != "":
		renderedValue = inputFieldStyle.Render(strings.Repeat("*", len([]rune(value))))
	case value == "":
		renderedValue = inputPlaceholderStyle.Render(placeholder)
	default:
		renderedValue = inputFieldStyle.Render(value)
	}

	return RenderCursor(isActive) + " " + normalStyle.Render(label) + ": " + renderedValue
}

// RenderToggle returns a checkbox style boolean field
func RenderToggle(label string, on bool) string {
	box := "[ ]"
	if on {
		box = inputFieldStyle.Render("[x]")
	}
	return box + " " + normalStyle.Render(label)
}

// RenderError returns a styled error message
func RenderError(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

// RenderSuccess returns a styled success message
func RenderSuccess(msg string) string {
	return successStyle.Render("✓ " + msg)
}
