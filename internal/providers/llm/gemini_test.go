package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/aquabot/internal/core"
	"github.com/sandevgo/aquabot/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "secret-test-key"

func okBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
					"role":  "model",
				},
				"finishReason": "STOP",
			},
		},
	})
	return string(b)
}

func newTestClient(url string, maxRetries int, delay time.Duration) *Gemini {
	return NewGemini(GeminiOptions{
		BaseURL: url,
		APIKey:  testKey,
		Model:   "test-model",
		Retry: &retry.Config{
			MaxRetries:    maxRetries,
			BackoffFactor: 2,
			InitialDelay:  delay,
			MaxDelay:      time.Second,
		},
		AttemptTimeout: time.Second,
	})
}

func TestGemini_RequestShape(t *testing.T) {
	tests := []struct {
		name       string
		jsonMode   bool
		wantConfig string
	}{
		{"plain", false, `{}`},
		{"json mode", true, `{"response_mime_type":"application/json"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotKey, gotQuery string
			var gotBody map[string]json.RawMessage
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.RawQuery
				gotKey = r.Header.Get("x-goog-api-key")
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				data, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(data, &gotBody))
				fmt.Fprint(w, okBody("hello"))
			}))
			defer server.Close()

			client := newTestClient(server.URL, 0, time.Millisecond)
			text, err := client.Complete(context.Background(), core.CompletionRequest{Prompt: "Hi there", JSONMode: tt.jsonMode})

			require.NoError(t, err)
			assert.Equal(t, "hello", text)
			assert.Equal(t, "/models/test-model:generateContent", gotPath)
			assert.Empty(t, gotQuery, "key must not travel in the URL")
			assert.Equal(t, testKey, gotKey)
			assert.JSONEq(t, `[{"parts":[{"text":"Hi there"}]}]`, string(gotBody["contents"]))
			assert.JSONEq(t, tt.wantConfig, string(gotBody["generationConfig"]))
		})
	}
}

func TestGemini_RetryThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, okBody("third time lucky"))
	}))
	defer server.Close()

	initial := 20 * time.Millisecond
	client := newTestClient(server.URL, 3, initial)

	start := time.Now()
	text, err := client.Complete(context.Background(), core.CompletionRequest{Prompt: "q"})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "third time lucky", text)
	assert.Equal(t, int32(3), attempts.Load())
	assert.GreaterOrEqual(t, elapsed, initial+2*initial)
}

func TestGemini_RetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3, time.Millisecond)
	_, err := client.Complete(context.Background(), core.CompletionRequest{Prompt: "q"})

	require.Error(t, err)
	assert.Equal(t, core.KindRetriesExhausted, core.KindOf(err))
	assert.ErrorIs(t, err, core.ErrNetworkOrHTTP)
	assert.Equal(t, int32(4), attempts.Load(), "initial attempt + 3 retries")
	assert.NotContains(t, err.Error(), testKey)
}

func TestGemini_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"no candidates", `{"candidates":[]}`},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`},
		{"part without text", `{"candidates":[{"content":{"parts":[{"inlineData":{}}]},"finishReason":"SAFETY"}]}`},
		{"empty text", okBody("   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := newTestClient(server.URL, 2, time.Millisecond)
			_, err := client.Complete(context.Background(), core.CompletionRequest{Prompt: "q"})

			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrRetriesExhausted)
			assert.ErrorIs(t, err, core.ErrMalformedResponse)
			assert.Equal(t, int32(3), attempts.Load(), "malformed responses are retried")
		})
	}
}

func TestGemini_MalformedThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			fmt.Fprint(w, `{"candidates":[]}`)
			return
		}
		fmt.Fprint(w, okBody("ok"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3, time.Millisecond)
	text, err := client.Complete(context.Background(), core.CompletionRequest{Prompt: "q"})

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGemini_AttemptTimeoutIsRetryable(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		fmt.Fprint(w, okBody("after timeout"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2, time.Millisecond)
	client.attemptTimeout = 50 * time.Millisecond

	text, err := client.Complete(context.Background(), core.CompletionRequest{Prompt: "q"})

	require.NoError(t, err)
	assert.Equal(t, "after timeout", text)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGemini_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	_, err := client.Complete(ctx, core.CompletionRequest{Prompt: "q"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, core.ErrRetriesExhausted)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGemini_CompleteWithOverridesPolicy(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3, time.Millisecond)
	_, err := client.CompleteWith(context.Background(), core.CompletionRequest{Prompt: "q"}, retry.Config{
		MaxRetries:    1,
		BackoffFactor: 2,
		InitialDelay:  time.Millisecond,
	})

	assert.ErrorIs(t, err, core.ErrRetriesExhausted)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGemini_Models(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, testKey, r.Header.Get("x-goog-api-key"))
		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, `{"models":[
				{"name":"models/gemini-a","displayName":"Gemini A","inputTokenLimit":1000,"supportedGenerationMethods":["generateContent"]},
				{"name":"models/embed","supportedGenerationMethods":["embedContent"]}
			],"nextPageToken":"p2"}`)
			return
		}
		fmt.Fprint(w, `{"models":[{"name":"models/gemini-b","supportedGenerationMethods":["countTokens","generateContent"]}]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, time.Millisecond)
	models, err := client.Models(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Model{
		{ID: "gemini-a", Name: "Gemini A", ContextLength: 1000},
		{ID: "gemini-b", Name: "models/gemini-b"},
	}, models)
}

func TestGemini_ModelsRejectedKeyIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, `{"error":{"status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3, time.Millisecond)
	_, err := client.Models(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 403")
	assert.NotErrorIs(t, err, retry.ErrExhausted)
	assert.NotContains(t, err.Error(), testKey)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestGemini_ModelsRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"models":[{"name":"models/gemini-a","supportedGenerationMethods":["generateContent"]}]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2, time.Millisecond)
	models, err := client.Models(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Model{{ID: "gemini-a", Name: "models/gemini-a"}}, models)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGemini_NegativeRetriesStillSends(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		fmt.Fprint(w, okBody("answer"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, -1, time.Millisecond)
	text, err := client.Complete(context.Background(), core.CompletionRequest{Prompt: "q"})

	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Equal(t, int32(1), attempts.Load())
}
