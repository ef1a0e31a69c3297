package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/denysvitali/nbalance/internal/host"
)

var chatSender string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run a local chat session against the loaded plugins",
	Long: `chat reads messages from stdin, one per line, and routes them to the
plugin commands. Commands may be prefixed with / ! ！ or . (for example "/余额").`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSender, "sender", "local", "Sender name attached to each message")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

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

	_, _ = fmt.Fprintf(out, "Commands: %s (Ctrl+D to exit)\n", strings.Join(engine.Commands(), ", "))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev := &host.TextEvent{
			Text: line,
			From: chatSender,
			ReplyFn: func(text string) error {
				_, err := fmt.Fprintln(out, text)
				return err
			},
		}
		if !engine.Dispatch(ctx, ev) {
			l.Debug("No command matched", zap.String("text", line))
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
