// Package host defines the contract between chat-bot plugins and the program
// hosting them: plugin lifecycle, chat command routing and LLM tool calls.
package host

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Meta describes a plugin
type Meta struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Author      string `json:"author"`
}

// Event is one incoming chat message
type Event interface {
	// PlainText returns the message text.
	PlainText() string
	// Sender identifies who sent the message.
	Sender() string
	// Reply sends plain text back to the conversation.
	Reply(text string) error
}

// CommandHandler handles a chat command. args is the text after the command name.
type CommandHandler func(ctx context.Context, ev Event, args string)

// ToolHandler executes an LLM tool call. argsJSON is the raw arguments object.
type ToolHandler func(ctx context.Context, ev Event, argsJSON string) (string, error)

// Tool is an LLM-callable function
type Tool struct {
	Definition openai.FunctionDefinition
	Handler    ToolHandler
}

// Registrar is what a plugin registers its commands and tools with
type Registrar interface {
	OnCommand(name string, h CommandHandler)
	OnTool(t Tool)
}

// Plugin is implemented by everything the Engine can load
type Plugin interface {
	Meta() Meta
	// Initialize is called once before Register.
	Initialize(ctx context.Context) error
	// Terminate is called once on shutdown and releases held resources.
	Terminate(ctx context.Context) error
	Register(r Registrar)
}

// TextEvent is an Event backed by a reply callback
type TextEvent struct {
	Text    string
	From    string
	ReplyFn func(text string) error
}

// PlainText implements Event
func (e *TextEvent) PlainText() string { return e.Text }

// Sender implements Event
func (e *TextEvent) Sender() string { return e.From }

// Reply implements Event. Without a callback the reply is dropped.
func (e *TextEvent) Reply(text string) error {
	if e.ReplyFn == nil {
		return nil
	}
	return e.ReplyFn(text)
}
