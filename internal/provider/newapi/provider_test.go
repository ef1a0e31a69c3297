package newapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestProvider_Identity(t *testing.T) {
	p := NewProvider(NewClient("http://x", "1", "t"), 0)

	if p.Name() != "NewAPI" {
		t.Errorf("Name() = %q", p.Name())
	}
	if p.ID() != "newapi" {
		t.Errorf("ID() = %q", p.ID())
	}
	if p.quotaPerUnit != DefaultQuotaPerUnit {
		t.Errorf("quotaPerUnit = %v, want default %v", p.quotaPerUnit, DefaultQuotaPerUnit)
	}
}

func TestProvider_GetBalance(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"success":true,"data":{"quota":100000}}`)

	p := NewProvider(NewClient(server.URL, "1", "t"), DefaultQuotaPerUnit)
	defer p.Close()

	b, err := p.GetBalance(context.Background())
	if err != nil {
		t.Fatalf("GetBalance() error = %v", err)
	}
	if b.Quota != 100000 {
		t.Errorf("Quota = %v, want 100000", b.Quota)
	}
	if b.Amount != 0.2 {
		t.Errorf("Amount = %v, want 0.2", b.Amount)
	}
	if got := b.Format(); got != "0.20美元" {
		t.Errorf("Format() = %q, want 0.20美元", got)
	}
}

func TestProvider_GetBalance_CustomQuotaPerUnit(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"data":{"quota":"1000"}}`)

	p := NewProvider(NewClient(server.URL, "1", "t"), 100)
	defer p.Close()

	b, err := p.GetBalance(context.Background())
	if err != nil {
		t.Fatalf("GetBalance() error = %v", err)
	}
	if b.Amount != 10 {
		t.Errorf("Amount = %v, want 10", b.Amount)
	}
}

func TestProvider_GetBalance_APIError(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage *string
	}{
		{"with message", `{"success":false,"message":"余额不足"}`, ptr("余额不足")},
		{"without message", `{"success":false}`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(t, http.StatusOK, tc.body)
			p := NewProvider(NewClient(server.URL, "1", "t"), 0)
			defer p.Close()

			_, err := p.GetBalance(context.Background())

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			switch {
			case tc.wantMessage == nil && apiErr.Message != nil:
				t.Errorf("Message = %q, want nil", *apiErr.Message)
			case tc.wantMessage != nil && (apiErr.Message == nil || *apiErr.Message != *tc.wantMessage):
				t.Errorf("Message = %v, want %q", apiErr.Message, *tc.wantMessage)
			}
		})
	}
}

func TestProvider_GetBalance_ConversionError(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"success":true,"data":{"quota":"N/A"}}`)

	p := NewProvider(NewClient(server.URL, "1", "t"), 0)
	defer p.Close()

	_, err := p.GetBalance(context.Background())

	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("expected *QueryError, got %T: %v", err, err)
	}
	if queryErr.Kind != KindConversion {
		t.Errorf("Kind = %q, want %q", queryErr.Kind, KindConversion)
	}
}

func ptr(s string) *string { return &s }
