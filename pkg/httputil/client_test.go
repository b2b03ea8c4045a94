package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientGet(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantStatus int
	}{
		{
			name:   "ok",
			status: http.StatusOK,
			body:   "<html></html>",
		},
		{
			name:       "notFound",
			status:     http.StatusNotFound,
			wantErr:    true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "serverError",
			status:     http.StatusServiceUnavailable,
			wantErr:    true,
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") == "" {
					t.Error("missing User-Agent header")
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.Client(), time.Second)
			body, err := client.Get(context.Background(), server.URL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Get() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("error %v is not a *StatusError", err)
				}
				if statusErr.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, tt.wantStatus)
				}
				return
			}
			if string(body) != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestClientDoesNotRetry(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.Client(), 0)
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.Client(), 20*time.Millisecond)
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Error("expected timeout error")
	}
}
