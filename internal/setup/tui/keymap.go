package tui

import (
	"strings"
)

// KeyMap defines key bindings for the TUI
type KeyMap struct {
	Up     keyBinding
	Down   keyBinding
	Toggle keyBinding
	Save   keyBinding
	Quit   keyBinding
}

// keyBinding represents a single key binding
type keyBinding struct {
	keys []string
	help string
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: keyBinding{
			keys: []string{"↑", "shift+tab"},
			help: "up",
		},
		Down: keyBinding{
			keys: []string{"↓", "tab"},
			help: "down",
		},
		Toggle: keyBinding{
			keys: []string{"space"},
			help: "toggle",
		},
		Save: keyBinding{
			keys: []string{"ctrl+s"},
			help: "save",
		},
		Quit: keyBinding{
			keys: []string{"esc"},
			help: "quit",
		},
	}
}

// HelpView returns a formatted help line such as "↑/shift+tab up • esc quit"
func (k KeyMap) HelpView(bindings ...keyBinding) string {
	helpItems := make([]string, 0, len(bindings))
	for _, b := range bindings {
		helpItems = append(helpItems, strings.Join(b.keys, "/")+" "+b.help)
	}
	return strings.Join(helpItems, " • ")
}

// ShortHelp returns short help for the footer
func (k KeyMap) ShortHelp() []keyBinding {
	return []keyBinding{k.Up, k.Down, k.Toggle, k.Save, k.Quit}
}
