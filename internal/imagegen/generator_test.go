package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeminiGenerator(t *testing.T) {
	png := base64.StdEncoding.EncodeToString([]byte("fake-png"))

	tests := []struct {
		name     string
		body     string
		status   int
		wantData string
		wantErr  error
		anyErr   bool
	}{
		{
			name:     "inlineImage",
			status:   http.StatusOK,
			body:     fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":"here"},{"inlineData":{"mimeType":"image/png","data":%q}}]}}]}`, png),
			wantData: "fake-png",
		},
		{
			name:    "textOnly",
			status:  http.StatusOK,
			body:    `{"candidates":[{"content":{"role":"model","parts":[{"text":"no image today"}]}}]}`,
			wantErr: ErrNoImage,
		},
		{
			name:   "serverError",
			status: http.StatusInternalServerError,
			body:   `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`,
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gen, err := NewGeminiGenerator(context.Background(), "test-key", "gemini-2.5-flash-image", server.URL)
			if err != nil {
				t.Fatalf("NewGeminiGenerator() error = %v", err)
			}

			image, err := gen.Generate(context.Background(), "draw a jetski")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Generate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.anyErr {
				if err == nil {
					t.Fatal("Generate() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if string(image.Data) != tt.wantData {
				t.Errorf("Data = %q, want %q", image.Data, tt.wantData)
			}
			if image.MIMEType != "image/png" {
				t.Errorf("MIMEType = %q", image.MIMEType)
			}
		})
	}
}
