package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestGenerateContent(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"response": "  {\"candidates\": []}\n",
			"done":     true,
		})
	}))
	defer server.Close()

	g := NewGenerator(Config{URL: server.URL + "/", Model: "test-model", Temperature: 0.7}, zap.NewNop())
	resp, err := g.GenerateContent(context.Background(), "system rules", "extract")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if resp != `{"candidates": []}` {
		t.Errorf("unexpected response: %q", resp)
	}
	if got.Model != "test-model" || got.System != "system rules" || got.Prompt != "extract" {
		t.Errorf("unexpected request: %+v", got)
	}
	if got.Stream {
		t.Errorf("expected non-streaming request")
	}
	if got.Options.Temperature != 0.7 {
		t.Errorf("unexpected temperature %v", got.Options.Temperature)
	}
}

func TestGenerateContentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `model "missing" not found`, http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewGenerator(Config{URL: server.URL, Model: "missing"}, nil).GenerateContent(context.Background(), "", "test")
	if err == nil {
		t.Fatal("should error on 404")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected status and body in error, got %v", err)
	}
}

func TestGenerateContentEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "", "done": true}`))
	}))
	defer server.Close()

	if _, err := NewGenerator(Config{URL: server.URL}, nil).GenerateContent(context.Background(), "", "test"); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestGenerateContentTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	g := NewGenerator(Config{URL: server.URL, Timeout: 20 * time.Millisecond}, nil)
	if _, err := g.GenerateContent(context.Background(), "", "test"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestDefaults(t *testing.T) {
	g := NewGenerator(Config{}, nil)
	if g.baseURL != "http://localhost:11434" {
		t.Error("should default to localhost")
	}
	if g.model != "llama3.1" {
		t.Error("should default to llama3.1")
	}
	if g.client.Timeout != 300*time.Second {
		t.Errorf("unexpected timeout %v", g.client.Timeout)
	}
	if g.Provider() != "ollama" {
		t.Errorf("unexpected provider %q", g.Provider())
	}
}
