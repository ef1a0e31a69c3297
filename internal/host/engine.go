package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/denysvitali/nbalance/internal/logger"
	"github.com/denysvitali/nbalance/internal/metrics"
)

// commandPrefixes are stripped before matching a command name; bare names match too
var commandPrefixes = []string{"/", "!", "！", "."}

// ErrUnknownTool is returned by CallTool for unregistered tool names
var ErrUnknownTool = errors.New("unknown tool")

type commandEntry struct {
	pluginID string
	handler  CommandHandler
}

type toolEntry struct {
	pluginID string
	tool     Tool
}

// Engine loads plugins and routes chat commands and tool calls to them
type Engine struct {
	logger *zap.Logger

	mu       sync.RWMutex
	plugins  []Plugin
	commands map[string]commandEntry
	tools    map[string]toolEntry
}

// NewEngine creates an empty engine. A nil logger discards logs.
func NewEngine(l *zap.Logger) *Engine {
	return &Engine{
		logger:   logger.OrNop(l),
		commands: make(map[string]commandEntry),
		tools:    make(map[string]toolEntry),
	}
}

// Load initializes each plugin and lets it register. If a plugin fails to
// initialize, the plugins loaded so far are terminated.
func (e *Engine) Load(ctx context.Context, plugins ...Plugin) error {
	for _, p := range plugins {
		meta := p.Meta()
		if err := p.Initialize(ctx); err != nil {
			_ = e.Shutdown(ctx)
			return fmt.Errorf("initialize plugin %s: %w", meta.ID, err)
		}
		p.Register(&scopedRegistrar{engine: e, pluginID: meta.ID})

		e.mu.Lock()
		e.plugins = append(e.plugins, p)
		e.mu.Unlock()

		e.logger.Info("Plugin loaded", zap.String("plugin", meta.ID), zap.String("version", meta.Version))
	}
	return nil
}

// Shutdown terminates loaded plugins in reverse load order
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	plugins := e.plugins
	e.plugins = nil
	e.commands = make(map[string]commandEntry)
	e.tools = make(map[string]toolEntry)
	e.mu.Unlock()

	var errs []error
	for i := len(plugins) - 1; i >= 0; i-- {
		id := plugins[i].Meta().ID
		if err := plugins[i].Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("terminate plugin %s: %w", id, err))
			continue
		}
		e.logger.Info("Plugin terminated", zap.String("plugin", id))
	}
	return errors.Join(errs...)
}

// Plugins returns the metadata of loaded plugins in load order
func (e *Engine) Plugins() []Meta {
	e.mu.RLock()
	defer e.mu.RUnlock()

	metas := make([]Meta, 0, len(e.plugins))
	for _, p := range e.plugins {
		metas = append(metas, p.Meta())
	}
	return metas
}

// Commands returns the registered command names, sorted
func (e *Engine) Commands() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.commands))
	for name := range e.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch routes ev to the matching command handler.
// It reports whether a command matched.
func (e *Engine) Dispatch(ctx context.Context, ev Event) bool {
	name, args, ok := ParseCommand(ev.PlainText())
	if !ok {
		return false
	}

	e.mu.RLock()
	entry, found := e.commands[name]
	e.mu.RUnlock()
	if !found {
		return false
	}

	metrics.PluginInvocationsTotal.WithLabelValues("command", name).Inc()
	e.logger.Debug("Dispatching command",
		zap.String("plugin", entry.pluginID),
		zap.String("command", name),
		zap.String("sender", ev.Sender()),
	)
	entry.handler(ctx, ev, args)
	return true
}

// Tools returns the registered tools in the OpenAI tool format, sorted by name
func (e *Engine) Tools() []openai.Tool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.tools))
	for name := range e.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	tools := make([]openai.Tool, 0, len(names))
	for _, name := range names {
		def := e.tools[name].tool.Definition
		tools = append(tools, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: &def,
		})
	}
	return tools
}

// CallTool executes a tool call and returns the tool message to feed back to the model
func (e *Engine) CallTool(ctx context.Context, ev Event, call openai.ToolCall) (openai.ChatCompletionMessage, error) {
	e.mu.RLock()
	entry, found := e.tools[call.Function.Name]
	e.mu.RUnlock()
	if !found {
		return openai.ChatCompletionMessage{}, fmt.Errorf("%w: %s", ErrUnknownTool, call.Function.Name)
	}

	metrics.PluginInvocationsTotal.WithLabelValues("tool", call.Function.Name).Inc()

	args := call.Function.Arguments
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}

	content, err := entry.tool.Handler(ctx, ev, args)
	if err != nil {
		e.logger.Warn("Tool call failed",
			zap.String("plugin", entry.pluginID),
			zap.String("tool", call.Function.Name),
			zap.Error(err),
		)
		return openai.ChatCompletionMessage{}, fmt.Errorf("tool %s: %w", call.Function.Name, err)
	}

	return openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    content,
		Name:       call.Function.Name,
		ToolCallID: call.ID,
	}, nil
}

// ParseCommand splits text into a command name and its arguments.
// A leading command prefix is optional.
func ParseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	for _, prefix := range commandPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}
	if text == "" {
		return "", "", false
	}

	name, args, _ = strings.Cut(text, " ")
	return name, strings.TrimSpace(args), true
}

// scopedRegistrar tags registrations with the owning plugin
type scopedRegistrar struct {
	engine   *Engine
	pluginID string
}

func (r *scopedRegistrar) OnCommand(name string, h CommandHandler) {
	r.engine.mu.Lock()
	defer r.engine.mu.Unlock()

	if prev, ok := r.engine.commands[name]; ok {
		r.engine.logger.Warn("Command overridden",
			zap.String("command", name),
			zap.String("previous", prev.pluginID),
			zap.String("plugin", r.pluginID),
		)
	}
	r.engine.commands[name] = commandEntry{pluginID: r.pluginID, handler: h}
}

func (r *scopedRegistrar) OnTool(t Tool) {
	r.engine.mu.Lock()
	defer r.engine.mu.Unlock()

	r.engine.tools[t.Definition.Name] = toolEntry{pluginID: r.pluginID, tool: t}
}
