package newapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_GetSelf_SendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/api/user/self" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("New-API-User"); got != "10001" {
			t.Errorf("unexpected New-API-User header: %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"quota":100000}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "10001", "sk-test")
	defer c.Close()

	self, err := c.GetSelf(context.Background())
	if err != nil {
		t.Fatalf("GetSelf() error = %v", err)
	}
	if !self.IsSuccess() {
		t.Error("expected success")
	}
	quota, err := self.QuotaValue()
	if err != nil {
		t.Fatalf("QuotaValue() error = %v", err)
	}
	if quota != 100000 {
		t.Errorf("quota = %v, want 100000", quota)
	}
}

func TestClient_GetSelf_StatusError(t *testing.T) {
	server := newTestServer(t, http.StatusUnauthorized, `{"success":false,"message":"unauthorized"}`)

	c := NewClient(server.URL, "1", "bad")
	defer c.Close()

	_, err := c.GetSelf(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", statusErr.StatusCode)
	}
}

func TestClient_GetSelf_DecodeError(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `<html>not json</html>`)

	c := NewClient(server.URL, "1", "t")
	defer c.Close()

	_, err := c.GetSelf(context.Background())

	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("expected *QueryError, got %T: %v", err, err)
	}
	if queryErr.Kind != KindDecode {
		t.Errorf("Kind = %q, want %q", queryErr.Kind, KindDecode)
	}
}

func TestClient_GetSelf_NonBooleanSuccess(t *testing.T) {
	for _, body := range []string{`{"success":0}`, `{"success":"false"}`, `{"success":1,"data":{"quota":1}}`} {
		t.Run(body, func(t *testing.T) {
			c := NewClient(newTestServer(t, http.StatusOK, body).URL, "1", "t")
			defer c.Close()

			_, err := c.GetSelf(context.Background())

			var queryErr *QueryError
			if !errors.As(err, &queryErr) || queryErr.Kind != KindDecode {
				t.Errorf("GetSelf() error = %v, want %s", err, KindDecode)
			}
		})
	}
}

func TestClient_GetSelf_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "1", "t", WithTimeout(50*time.Millisecond))
	defer c.Close()

	_, err := c.GetSelf(context.Background())

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %T: %v", err, err)
	}
}

func TestClient_GetSelf_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewClient(url, "1", "t")
	defer c.Close()

	_, err := c.GetSelf(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T: %v", err, err)
	}
	if netErr.Error() == "" {
		t.Error("network error should carry details")
	}
}

func TestClient_SessionReuse(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"data":{"quota":1}}`)

	c := NewClient(server.URL, "1", "t")

	for i := 0; i < 2; i++ {
		if _, err := c.GetSelf(context.Background()); err != nil {
			t.Fatalf("GetSelf() #%d error = %v", i, err)
		}
	}
	if c.created != 1 {
		t.Errorf("created %d sessions, want 1", c.created)
	}

	c.Close()
	if c.httpClient != nil {
		t.Fatal("Close() should drop the session")
	}

	if _, err := c.GetSelf(context.Background()); err != nil {
		t.Fatalf("GetSelf() after Close error = %v", err)
	}
	if c.created != 2 {
		t.Errorf("created %d sessions, want a fresh one after Close", c.created)
	}
	c.Close()
}

func TestClient_ConcurrentCallsShareSession(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"data":{"quota":1}}`)

	c := NewClient(server.URL, "1", "t")
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetSelf(context.Background()); err != nil {
				t.Errorf("GetSelf() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if c.created != 1 {
		t.Errorf("created %d sessions, want 1", c.created)
	}
}

func TestClient_CloseWithoutSession(t *testing.T) {
	c := NewClient("http://127.0.0.1", "1", "t")
	c.Close()
	c.Close()

	if c.created != 0 {
		t.Errorf("Close() must not create a session, created = %d", c.created)
	}
}

func TestClient_DefaultTimeout(t *testing.T) {
	if DefaultTimeout != 10*time.Second {
		t.Fatalf("DefaultTimeout = %v, want 10s", DefaultTimeout)
	}

	tests := []struct {
		name string
		opts []Option
		want time.Duration
	}{
		{"default", nil, 10 * time.Second},
		{"zero keeps default", []Option{WithTimeout(0)}, 10 * time.Second},
		{"negative keeps default", []Option{WithTimeout(-time.Second)}, 10 * time.Second},
		{"override", []Option{WithTimeout(3 * time.Second)}, 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient("http://127.0.0.1", "1", "t", tt.opts...)
			if c.timeout != tt.want {
				t.Errorf("timeout = %v, want %v", c.timeout, tt.want)
			}
		})
	}
}
