package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/denysvitali/nbalance/internal/host"
	"github.com/denysvitali/nbalance/internal/plugin"
)

var (
	toolCallJSON string
	toolList     bool
)

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Execute an LLM tool call and print the tool message",
	Long: `tool executes an OpenAI style tool call against the loaded plugins and
prints the resulting tool message as JSON. Without --call it runs query_balance.
Pass --call - to read the call from stdin.`,
	Args: cobra.NoArgs,
	RunE: runTool,
}

func init() {
	toolCmd.Flags().StringVar(&toolCallJSON, "call", "", `Tool call JSON, e.g. {"id":"call_1","type":"function","function":{"name":"query_balance"}}`)
	toolCmd.Flags().BoolVar(&toolList, "list", false, "List tool definitions instead of calling one")
	rootCmd.AddCommand(toolCmd)
}

func defaultToolCall() openai.ToolCall {
	return openai.ToolCall{
		ID:   "call_" + uuid.NewString(),
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      plugin.ToolQueryBalance,
			Arguments: "{}",
		},
	}
}

func parseToolCall(raw string, stdin io.Reader) (openai.ToolCall, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultToolCall(), nil
	}
	if raw == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return openai.ToolCall{}, fmt.Errorf("failed to read tool call: %w", err)
		}
		raw = string(data)
	}

	var call openai.ToolCall
	if err := json.Unmarshal([]byte(raw), &call); err != nil {
		return openai.ToolCall{}, fmt.Errorf("failed to parse tool call: %w", err)
	}
	if call.Function.Name == "" {
		return openai.ToolCall{}, fmt.Errorf("tool call has no function name")
	}
	if call.ID == "" {
		call.ID = "call_" + uuid.NewString()
	}
	return call, nil
}

func runTool(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, l, err := loadRuntime("warn")
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	engine, _, err := startEngine(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Shutdown(ctx) }()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	if toolList {
		return enc.Encode(engine.Tools())
	}

	call, err := parseToolCall(toolCallJSON, cmd.InOrStdin())
	if err != nil {
		return err
	}

	msg, err := engine.CallTool(ctx, &host.TextEvent{From: "cli"}, call)
	if err != nil {
		return err
	}
	return enc.Encode(msg)
}
