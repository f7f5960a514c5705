package mentor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateSendsPromptAndReturnsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "mentor-small" || !strings.Contains(req.Prompt, "biology") {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Text: `{"medicine": 82}`})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1", "mentor-small", time.Second)
	text, err := client.Generate(context.Background(), "student likes biology")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != `{"medicine": 82}` {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGenerateSurfacesFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}},
		{"body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
		{"error field", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(generateResponse{Error: "quota exceeded"})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			if _, err := NewClient(srv.URL, "", "", time.Second).Generate(context.Background(), "p"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestGenerateHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := NewClient(srv.URL, "", "", 5*time.Second).Generate(ctx, "p"); err == nil {
		t.Fatalf("expected context error")
	}
}
