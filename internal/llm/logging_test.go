package llm

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/lingodeck/internal/store"
)

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	events := st.EventRepo()

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"sentences":[]}`), Usage: Usage{InputTokens: 40, OutputTokens: 9}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("boom")}},
	)
	p := WithLogging(mock, events, nil)

	ctx := WithPurpose(context.Background(), "sentence-gen")
	req := Request{
		System:   "sys prompt",
		Messages: []Message{{Role: RoleUser, Content: "give me sentences"}},
		Schema:   &Schema{Name: "sentence-batch", Definition: map[string]any{"type": "object"}},
	}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected error")
	}

	got, err := events.QueryLLMEvents(context.Background(), store.QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}

	failed, ok := got[0], got[1]
	if failed.Success || !strings.Contains(failed.ErrorMessage, "boom") {
		t.Errorf("failed event = %+v", failed.LLMRequestEventData)
	}
	if !ok.Success || ok.Purpose != "sentence-gen" || ok.Provider != ProviderMock {
		t.Errorf("ok event = %+v", ok.LLMRequestEventData)
	}
	if ok.InputTokens != 40 || ok.OutputTokens != 9 {
		t.Errorf("tokens = %d/%d", ok.InputTokens, ok.OutputTokens)
	}
	if ok.ResponseBody != `{"sentences":[]}` {
		t.Errorf("response body = %q", ok.ResponseBody)
	}
	for _, want := range []string{"[system]\nsys prompt", "[user]\ngive me sentences", "[schema: sentence-batch]"} {
		if !strings.Contains(ok.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, ok.RequestBody)
		}
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock, Retry: RetryConfig{MaxAttempts: 1}}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("model = %q", p.ModelID())
	}
	if _, err := NewProvider(context.Background(), Config{Provider: ProviderOpenAI}, nil, nil); err == nil {
		t.Fatal("expected error without an API key")
	}
}
