package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/denysvitali/nbalance/internal/balance"
	"github.com/denysvitali/nbalance/internal/provider"
)

func okResult(amount float64) balance.Result {
	b := &provider.Balance{Provider: "newapi", Quota: amount * 500000, Amount: amount, Currency: "美元"}
	return balance.Result{Text: b.Format(), Outcome: balance.OutcomeOK, Balance: b}
}

func TestWaybarClass(t *testing.T) {
	tests := []struct {
		name string
		res  balance.Result
		want string
	}{
		{"normal", okResult(5), ClassNormal},
		{"at threshold", okResult(1), ClassNormal},
		{"below threshold", okResult(0.2), ClassWarning},
		{"error", balance.Result{Text: "查询超时，请稍后重试", Outcome: balance.OutcomeTimeout}, ClassError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WaybarClass(tt.res, 1); got != tt.want {
				t.Errorf("WaybarClass() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWaybar(t *testing.T) {
	var buf bytes.Buffer
	if err := Waybar(&buf, okResult(0.2), 1); err != nil {
		t.Fatalf("Waybar() error = %v", err)
	}

	var out WaybarOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if out.Text != "0.20美元" {
		t.Errorf("Text = %q", out.Text)
	}
	if out.Class != ClassWarning {
		t.Errorf("Class = %q, want warning", out.Class)
	}
}

func TestWaybar_Error(t *testing.T) {
	var buf bytes.Buffer
	res := balance.Result{Text: "查询失败，状态码: 401", Outcome: balance.OutcomeStatus}
	if err := Waybar(&buf, res, 1); err != nil {
		t.Fatalf("Waybar() error = %v", err)
	}

	var out WaybarOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Class != ClassError || out.Text != "NewAPI: Error" || !strings.Contains(out.Tooltip, "401") {
		t.Errorf("got %+v", out)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, okResult(2)); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var got balance.Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Text != "2.00美元" || got.Outcome != balance.OutcomeOK || got.Balance == nil {
		t.Errorf("got %+v", got)
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, "https://newapi.example/api/user/self", okResult(0.5), 1)

	out := buf.String()
	for _, want := range []string{"NewAPI Balance", "0.50美元", "余额不足", "newapi.example"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
