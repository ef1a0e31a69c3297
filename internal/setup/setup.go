// Package setup provides the line based setup wizard for nbalance.
package setup

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/denysvitali/nbalance/internal/config"
)

// Wizard asks for each setting on out, reads answers from in and writes the
// config file to path. An empty answer keeps the current value.
func Wizard(in io.Reader, out io.Writer, path string) error {
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.LoadRaw(path)
	if err != nil {
		_, _ = fmt.Fprintf(out, "Existing config is invalid (%v), starting from defaults.\n", err)
		cfg = config.Default()
	}

	_, _ = fmt.Fprintln(out, "Welcome to nbalance setup!")
	_, _ = fmt.Fprintln(out, "This wizard configures the NewAPI endpoint used for balance queries.")
	_, _ = fmt.Fprintln(out)

	p := &prompter{in: bufio.NewReader(in), out: out}

	cfg.APIConfig = p.ask("NewAPI address", cfg.APIConfig)
	cfg.UserID = p.ask("User ID", cfg.UserID)
	cfg.Token = p.askSecret("Access token", cfg.Token)
	cfg.EnableLLMTool = p.confirm("Enable the query_balance LLM tool?", cfg.EnableLLMTool)

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "\nSetup complete! Configuration saved to %s\n", path)
	return nil
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// ask prints a prompt and returns the answer, or current when the answer is empty
func (p *prompter) ask(label, current string) string {
	_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, current)
	if line := p.readLine(); line != "" {
		return line
	}
	return current
}

func (p *prompter) askSecret(label, current string) string {
	hint := "not set"
	if current != "" {
		hint = "keep current"
	}
	_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, hint)
	if line := p.readLine(); line != "" {
		return line
	}
	return current
}

// confirm asks the user for confirmation (y/n)
func (p *prompter) confirm(label string, current bool) bool {
	choices := "y/N"
	if current {
		choices = "Y/n"
	}
	_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, choices)

	switch strings.ToLower(p.readLine()) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return current
	}
}

// readLine reads a line of input
func (p *prompter) readLine() string {
	line, _ := p.in.ReadString('\n')
	return strings.TrimSpace(line)
}
