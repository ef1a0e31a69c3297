package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/denysvitali/nbalance/internal/balance"
	"github.com/denysvitali/nbalance/internal/config"
	"github.com/denysvitali/nbalance/internal/output"
	"github.com/denysvitali/nbalance/internal/plugin"
)

// writeConfig points a config file at a stub NewAPI server returning quota.
func writeConfig(t *testing.T, quota string, enableTool bool) string {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"quota":` + quota + `}}`))
	}))
	t.Cleanup(upstream.Close)

	cfg := config.Default()
	cfg.APIConfig = upstream.URL
	cfg.EnableLLMTool = enableTool
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return path
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		configPath, logLevel = "", ""
		jsonOutput, waybarOutput = false, false
		toolCallJSON, toolList = "", false
		setupPlain = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_JSON(t *testing.T) {
	path := writeConfig(t, "100000", false)

	out, err := run(t, "", "--config", path, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var res balance.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res.Text != "0.20美元" {
		t.Errorf("Text = %q, want 0.20美元", res.Text)
	}
}

func TestRoot_Waybar(t *testing.T) {
	path := writeConfig(t, "1000000", false)

	out, err := run(t, "", "--config", path, "--waybar")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var w output.WaybarOutput
	if err := json.Unmarshal([]byte(out), &w); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if w.Class != output.ClassNormal || !strings.Contains(w.Text, "2.00美元") {
		t.Errorf("waybar = %+v", w)
	}
}

func TestChat(t *testing.T) {
	path := writeConfig(t, "100000", false)

	out, err := run(t, "hello\n/余额\n！余额\n", "--config", path, "chat")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.Count(out, "0.20美元"); got != 2 {
		t.Errorf("replies = %d, want 2\n%s", got, out)
	}
}

func TestTool(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		want    string
	}{
		{"disabled", false, "余额查询 LLM 工具未启用"},
		{"enabled", true, "0.20美元"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "100000", tt.enabled)

			out, err := run(t, "", "--config", path, "tool")
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			var msg openai.ChatCompletionMessage
			if err := json.Unmarshal([]byte(out), &msg); err != nil {
				t.Fatalf("invalid JSON %q: %v", out, err)
			}
			if msg.Content != tt.want || msg.Role != openai.ChatMessageRoleTool {
				t.Errorf("message = %+v", msg)
			}
		})
	}
}

func TestTool_UnknownFromStdin(t *testing.T) {
	path := writeConfig(t, "100000", true)

	_, err := run(t, `{"id":"x","type":"function","function":{"name":"nope"}}`, "--config", path, "tool", "--call", "-")
	if err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Errorf("error = %v, want unknown tool", err)
	}
}

func TestParseToolCall(t *testing.T) {
	call, err := parseToolCall("", nil)
	if err != nil || call.Function.Name != plugin.ToolQueryBalance {
		t.Errorf("default call = %+v, %v", call, err)
	}
	if !strings.HasPrefix(call.ID, "call_") || len(call.ID) <= len("call_") {
		t.Errorf("default call ID = %q", call.ID)
	}

	call, err = parseToolCall(`{"function":{"name":"query_balance"}}`, nil)
	if err != nil || call.ID == "" {
		t.Errorf("call without ID = %+v, %v", call, err)
	}

	if _, err := parseToolCall(`{"id":"x"}`, nil); err == nil {
		t.Error("call without function name accepted")
	}
	if _, err := parseToolCall(`{`, nil); err == nil {
		t.Error("malformed call accepted")
	}
}

func TestConfigPath(t *testing.T) {
	out, err := run(t, "", "--config", "/tmp/x/config.yaml", "config", "path")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(out) != "/tmp/x/config.yaml" {
		t.Errorf("out = %q", out)
	}
}

func TestConfigShow_RedactsToken(t *testing.T) {
	path := writeConfig(t, "1", false)

	out, err := run(t, "", "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, `token: '***'`) && !strings.Contains(out, `token: "***"`) {
		t.Errorf("token not redacted:\n%s", out)
	}
}

func TestSetupPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := run(t, "https://api.example.com\n9\nsk\nn\n", "--config", path, "setup", "--plain"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIConfig != "https://api.example.com" || cfg.UserID != "9" {
		t.Errorf("cfg = %+v", cfg.Redacted())
	}
}
