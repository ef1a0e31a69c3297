// Package output renders balance query results for terminals, scripts and waybar.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/denysvitali/nbalance/internal/balance"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	amountStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("70")).Bold(true)
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Waybar classes
const (
	ClassNormal  = "normal"
	ClassWarning = "warning"
	ClassError   = "error"
)

// WaybarOutput represents the JSON format expected by waybar custom modules
type WaybarOutput struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// WaybarClass picks the waybar class for a result
func WaybarClass(res balance.Result, lowThreshold float64) string {
	switch {
	case !res.OK():
		return ClassError
	case res.Balance.IsBelow(lowThreshold):
		return ClassWarning
	default:
		return ClassNormal
	}
}

// Waybar writes the result in waybar JSON format
func Waybar(w io.Writer, res balance.Result, lowThreshold float64) error {
	out := WaybarOutput{
		Text:    res.Text,
		Tooltip: "NewAPI 余额\n" + res.Text,
		Class:   WaybarClass(res, lowThreshold),
	}
	if !res.OK() {
		out.Text = "NewAPI: Error"
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("failed to encode waybar output: %w", err)
	}
	return nil
}

// JSON writes the result as indented JSON
func JSON(w io.Writer, res balance.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

// Pretty writes a human readable rendering of the result
func Pretty(w io.Writer, endpoint string, res balance.Result, lowThreshold float64) {
	title := "NewAPI Balance"
	_, _ = fmt.Fprintln(w, titleStyle.Render(title))
	_, _ = fmt.Fprintln(w, strings.Repeat("=", len(title)))
	if endpoint != "" {
		_, _ = fmt.Fprintln(w, dimStyle.Render(endpoint))
	}
	_, _ = fmt.Fprintln(w)

	switch WaybarClass(res, lowThreshold) {
	case ClassError:
		_, _ = fmt.Fprintf(w, "  Error:    %s\n", errorStyle.Render(res.Text))
	case ClassWarning:
		_, _ = fmt.Fprintf(w, "  Balance:  %s  %s\n", lowStyle.Render(res.Text), dimStyle.Render("(余额不足)"))
	default:
		_, _ = fmt.Fprintf(w, "  Balance:  %s\n", amountStyle.Render(res.Text))
	}
	if res.Balance != nil {
		_, _ = fmt.Fprintf(w, "  Quota:    %s\n", dimStyle.Render(fmt.Sprintf("%.0f", res.Balance.Quota)))
	}
}
