package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var cardSchema = &Schema{
	Name:        "test-card",
	Description: "One practice sentence",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content":     map[string]any{"type": "string"},
			"translation": map[string]any{"type": "string"},
			"level":       map[string]any{"type": "string", "enum": []any{"A1", "A2", "B1"}},
		},
		"required":             []any{"content", "translation"},
		"additionalProperties": false,
	},
}

const cardJSON = `{"content":"Ich trinke Kaffee.","translation":"I drink coffee.","level":"A1"}`

func cardRequest() Request {
	return Request{
		System:    "You write example sentences for language learners.",
		Messages:  []Message{{Role: RoleUser, Content: "One German sentence, please."}},
		Schema:    cardSchema,
		MaxTokens: 256,
	}
}

func serve(t *testing.T, status int, body any, inspect func(r *http.Request, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			var req map[string]any
			_ = json.NewDecoder(r.Body).Decode(&req)
			inspect(r, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// --- Anthropic ---

func anthropicAt(url string) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(url),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func anthropicMessage(text, stop string) map[string]any {
	content := []map[string]any{}
	if text != "" {
		content = append(content, map[string]any{"type": "text", "text": text})
	}
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     content,
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicProvider_StructuredOutput(t *testing.T) {
	srv := serve(t, http.StatusOK, anthropicMessage(cardJSON, "end_turn"), func(r *http.Request, body map[string]any) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
		assert.Contains(t, body, "output_config")
		assert.Contains(t, body, "system")
	})

	resp, err := anthropicAt(srv.URL).Generate(context.Background(), cardRequest())
	require.NoError(t, err)
	assert.JSONEq(t, cardJSON, string(resp.Content))
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 30, TotalTokens: 80}, resp.Usage)
}

func TestAnthropicProvider_Failures(t *testing.T) {
	apiError := func(kind string) map[string]any {
		return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
	}
	tests := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{"rate limit", http.StatusTooManyRequests, apiError("rate_limit_error"), func(t *testing.T, err error) {
			var target *ErrRateLimit
			assert.ErrorAs(t, err, &target)
		}},
		{"server error", http.StatusInternalServerError, apiError("api_error"), func(t *testing.T, err error) {
			var target *ErrProviderUnavailable
			assert.ErrorAs(t, err, &target)
		}},
		{"bad request", http.StatusBadRequest, apiError("invalid_request_error"), func(t *testing.T, err error) {
			var target *ErrProviderUnavailable
			assert.ErrorAs(t, err, &target)
		}},
		{"truncated", http.StatusOK, anthropicMessage(`{"content":"Ich`, "max_tokens"), func(t *testing.T, err error) {
			var target *ErrMaxTokensExceeded
			assert.ErrorAs(t, err, &target)
		}},
		{"schema mismatch", http.StatusOK, anthropicMessage(`{"content":"Hallo"}`, "end_turn"), func(t *testing.T, err error) {
			var target *ErrInvalidResponse
			assert.ErrorAs(t, err, &target)
		}},
		{"no text", http.StatusOK, anthropicMessage("", "end_turn"), func(t *testing.T, err error) {
			var target *ErrInvalidResponse
			assert.ErrorAs(t, err, &target)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body, nil)
			_, err := anthropicAt(srv.URL).Generate(context.Background(), cardRequest())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestAnthropicModelAliases(t *testing.T) {
	p, err := NewAnthropicProvider(ProviderConfig{APIKey: "k", Model: "claude-sonnet"})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", p.ModelID())

	p, err = NewAnthropicProvider(ProviderConfig{APIKey: "k", Model: "claude-opus-4-1"})
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-1", p.ModelID())

	_, err = NewAnthropicProvider(ProviderConfig{})
	assert.Error(t, err)
}

// --- OpenAI ---

func openaiAt(url string) *OpenAIProvider {
	conf := openai.DefaultConfig("test-key")
	conf.BaseURL = url + "/v1"
	return &OpenAIProvider{client: openai.NewClientWithConfig(conf), model: "gpt-4o-mini"}
}

func chatCompletion(content, finish string) map[string]any {
	choices := []map[string]any{}
	if finish != "" {
		choices = append(choices, map[string]any{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		})
	}
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"model":   "gpt-4o-mini",
		"choices": choices,
		"usage":   map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_StructuredOutput(t *testing.T) {
	srv := serve(t, http.StatusOK, chatCompletion(cardJSON, "stop"), func(r *http.Request, body map[string]any) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		msgs, _ := body["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])

		format, _ := body["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", format["type"])
		schema, _ := format["json_schema"].(map[string]any)
		assert.Equal(t, "test-card", schema["name"])
		assert.Equal(t, true, schema["strict"])
	})

	resp, err := openaiAt(srv.URL).Generate(context.Background(), cardRequest())
	require.NoError(t, err)
	assert.JSONEq(t, cardJSON, string(resp.Content))
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, 65, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
}

func TestOpenAIProvider_FreeText(t *testing.T) {
	srv := serve(t, http.StatusOK, chatCompletion(`"Guten Morgen"`, "stop"), func(_ *http.Request, body map[string]any) {
		assert.NotContains(t, body, "response_format")
	})
	req := cardRequest()
	req.Schema = nil

	resp, err := openaiAt(srv.URL).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `"Guten Morgen"`, string(resp.Content))
}

func TestOpenAIProvider_Failures(t *testing.T) {
	apiError := map[string]any{"error": map[string]any{"message": "nope", "type": "error"}}
	tests := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{"rate limit", http.StatusTooManyRequests, apiError, func(t *testing.T, err error) {
			var target *ErrRateLimit
			assert.ErrorAs(t, err, &target)
		}},
		{"server error", http.StatusServiceUnavailable, apiError, func(t *testing.T, err error) {
			var target *ErrProviderUnavailable
			assert.ErrorAs(t, err, &target)
		}},
		{"truncated", http.StatusOK, chatCompletion(`{"content":`, "length"), func(t *testing.T, err error) {
			var target *ErrMaxTokensExceeded
			assert.ErrorAs(t, err, &target)
		}},
		{"no choices", http.StatusOK, chatCompletion("", ""), func(t *testing.T, err error) {
			var target *ErrInvalidResponse
			assert.ErrorAs(t, err, &target)
		}},
		{"enum violation", http.StatusOK, chatCompletion(`{"content":"a","translation":"b","level":"C2"}`, "stop"), func(t *testing.T, err error) {
			var target *ErrInvalidResponse
			assert.ErrorAs(t, err, &target)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body, nil)
			_, err := openaiAt(srv.URL).Generate(context.Background(), cardRequest())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenAIProvider_BaseURLOverride(t *testing.T) {
	srv := serve(t, http.StatusOK, chatCompletion(cardJSON, "stop"), nil)

	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "test-key", Model: "gpt-4o", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())

	_, err = p.Generate(context.Background(), cardRequest())
	assert.NoError(t, err)
}

// --- Gemini ---

func geminiAt(t *testing.T, url string) *GeminiProvider {
	t.Helper()
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: url + "/"},
	})
	require.NoError(t, err)
	return &GeminiProvider{client: client, model: "gemini-2.5-flash"}
}

func geminiResponse(text, finish string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": finish,
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 8, "totalTokenCount": 20},
	}
}

func TestGeminiProvider_StructuredOutput(t *testing.T) {
	srv := serve(t, http.StatusOK, geminiResponse(cardJSON, "STOP"), func(r *http.Request, body map[string]any) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")
		conf, _ := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", conf["responseMimeType"])
		assert.Contains(t, body, "systemInstruction")
	})

	resp, err := geminiAt(t, srv.URL).Generate(context.Background(), cardRequest())
	require.NoError(t, err)
	assert.JSONEq(t, cardJSON, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 8, TotalTokens: 20}, resp.Usage)
}

func TestGeminiProvider_Failures(t *testing.T) {
	srv := serve(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"},
	}, nil)
	_, err := geminiAt(t, srv.URL).Generate(context.Background(), cardRequest())
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	srv = serve(t, http.StatusOK, geminiResponse(`{"content":"Ich`, "MAX_TOKENS"), nil)
	_, err = geminiAt(t, srv.URL).Generate(context.Background(), cardRequest())
	var truncated *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &truncated)
}

func TestGeminiModelAliases(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gemini-2.5-pro", resolveModel("gemini-pro", geminiModels))
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-2.0-flash", geminiModels))
}

func TestBuildGeminiSchema(t *testing.T) {
	s := buildGeminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sentences": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"content":           map[string]any{"type": "string", "description": "sentence"},
						"difficulty_rating": map[string]any{"type": "number"},
						"level":             map[string]any{"type": "string", "enum": []any{"A1", "A2"}},
					},
					"required": []string{"content"},
				},
			},
			"note": map[string]any{"description": "untyped"},
		},
		"required":             []any{"sentences"},
		"additionalProperties": false,
	})

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"sentences"}, s.Required)

	items := s.Properties["sentences"].Items
	require.NotNil(t, items)
	assert.Equal(t, genai.TypeArray, s.Properties["sentences"].Type)
	assert.Equal(t, genai.TypeNumber, items.Properties["difficulty_rating"].Type)
	assert.Equal(t, "sentence", items.Properties["content"].Description)
	assert.Equal(t, []string{"A1", "A2"}, items.Properties["level"].Enum)
	assert.Equal(t, []string{"content"}, items.Required)
	assert.Equal(t, genai.Type(""), s.Properties["note"].Type)
}
