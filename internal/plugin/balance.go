// Package plugin provides the NewAPI balance chat-bot plugin.
package plugin

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/denysvitali/nbalance/internal/balance"
	"github.com/denysvitali/nbalance/internal/config"
	"github.com/denysvitali/nbalance/internal/host"
	"github.com/denysvitali/nbalance/internal/logger"
	"github.com/denysvitali/nbalance/internal/provider/newapi"
	"github.com/denysvitali/nbalance/internal/version"
)

const (
	// CommandBalance is the chat command that replies with the balance
	CommandBalance = "余额"
	// ToolQueryBalance is the LLM tool name
	ToolQueryBalance = "query_balance"

	msgToolDisabled = "余额查询 LLM 工具未启用"
)

// BalancePlugin answers balance queries from chat users and LLM agents
type BalancePlugin struct {
	cfg      config.Config
	provider *newapi.Provider
	fetcher  *balance.Fetcher
	logger   *zap.Logger
}

var _ host.Plugin = (*BalancePlugin)(nil)

// NewBalancePlugin builds the plugin from a loaded configuration.
// No network activity happens until the first query.
func NewBalancePlugin(cfg config.Config, l *zap.Logger, opts ...newapi.Option) *BalancePlugin {
	l = logger.OrNop(l).With(zap.String("plugin", "nbalance"))

	client := newapi.NewClient(cfg.APIConfig, cfg.UserID, cfg.Token, opts...)
	p := newapi.NewProvider(client, cfg.QuotaPerUnit)

	return &BalancePlugin{
		cfg:      cfg,
		provider: p,
		fetcher:  balance.NewFetcher(p, l),
		logger:   l,
	}
}

// Meta implements host.Plugin
func (p *BalancePlugin) Meta() host.Meta {
	return host.Meta{
		ID:          "nbalance",
		Name:        "NewAPI Balance",
		Description: "查询 NewAPI 用户余额",
		Version:     version.Version,
	}
}

// Initialize implements host.Plugin
func (p *BalancePlugin) Initialize(_ context.Context) error {
	p.logger.Info("Balance plugin initialized",
		zap.String("endpoint", p.provider.Endpoint()),
		zap.Bool("llm_tool", p.cfg.EnableLLMTool),
	)
	return nil
}

// Terminate implements host.Plugin. It closes the shared HTTP session.
func (p *BalancePlugin) Terminate(_ context.Context) error {
	p.provider.Close()
	p.logger.Info("Balance plugin unloaded")
	return nil
}

// Register implements host.Plugin
func (p *BalancePlugin) Register(r host.Registrar) {
	r.OnCommand(CommandBalance, p.handleBalance)
	r.OnTool(host.Tool{
		Definition: openai.FunctionDefinition{
			Name:        ToolQueryBalance,
			Description: "查询并返回当前配置的所有余额信息",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		Handler: p.handleQueryBalanceTool,
	})
}

// Fetcher exposes the balance fetcher for non-chat front ends
func (p *BalancePlugin) Fetcher() *balance.Fetcher {
	return p.fetcher
}

// ToolEnabled reports whether the LLM tool answers queries
func (p *BalancePlugin) ToolEnabled() bool {
	return p.cfg.EnableLLMTool
}

func (p *BalancePlugin) handleBalance(ctx context.Context, ev host.Event, _ string) {
	result := p.fetcher.Query(ctx)
	if err := ev.Reply(result); err != nil {
		p.logger.Warn("Failed to send reply", zap.String("sender", ev.Sender()), zap.Error(err))
	}
}

func (p *BalancePlugin) handleQueryBalanceTool(ctx context.Context, _ host.Event, _ string) (string, error) {
	if !p.cfg.EnableLLMTool {
		return msgToolDisabled, nil
	}
	return p.fetcher.Query(ctx), nil
}
