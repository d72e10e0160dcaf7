package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompleteHTTP(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"action\":\"chat\"}"}}]}`))
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL, MaxTokens: 256})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer p.Close()

	out, err := p.Complete(context.Background(), "you are a router", "open youtube")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if out != `{"action":"chat"}` {
		t.Fatalf("unexpected content: %q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", gotReq.Messages)
	}
	if gotReq.Model != defaultModel {
		t.Fatalf("model = %q, want default", gotReq.Model)
	}
}

func TestCompleteHTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth"}}`))
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "sk-bad", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := p.Complete(context.Background(), "", "hi"); err == nil {
		t.Fatal("expected error from API failure")
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := New(Config{Provider: "gpt9", APIKey: "x"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
