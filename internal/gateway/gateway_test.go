package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripReply(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`"That's great!"`, `That's great!`},
		{`'nice one'`, `nice one`},
		{`  "wrapped and padded"  `, `wrapped and padded`},
		{`no quotes at all`, `no quotes at all`},
		{`"only leading`, `only leading`},
		{`only trailing"`, `only trailing`},
		{`""`, ``},
		{`"`, ``},
		{``, ``},
		{`"say "hi" to them"`, `say "hi" to them`},
	}
	for _, tc := range cases {
		if got := StripReply(tc.in); got != tc.want {
			t.Fatalf("StripReply(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var gotReq chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "hello back"}},
			},
		})
	}))
	defer srv.Close()

	p, err := New(Config{Provider: "openai", APIKey: "test-key", Model: "test-model", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := p.Complete(context.Background(), []Turn{{Role: RoleUser, Content: "hello"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hello back" {
		t.Fatalf("Complete = %q", got)
	}
	if gotReq.Model != "test-model" || len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
		t.Fatalf("unexpected request body: %+v", gotReq)
	}
}

func TestOpenAIProvider_ErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "rate_limit"},
		})
	}))
	defer srv.Close()

	p := newOpenAIProvider(Config{APIKey: "k", Model: "m", BaseURL: srv.URL})
	if _, err := p.Complete(context.Background(), []Turn{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	p := newOpenAIProvider(Config{APIKey: "k", Model: "m", BaseURL: srv.URL})
	if _, err := p.Complete(context.Background(), []Turn{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIProvider_EmptyRequestRejected(t *testing.T) {
	p := newOpenAIProvider(Config{APIKey: "k", Model: "m", BaseURL: "http://127.0.0.1:0"})
	if _, err := p.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty turn list")
	}
}
