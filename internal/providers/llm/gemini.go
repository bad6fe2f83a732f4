package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandevgo/aquabot/internal/core"
	"github.com/sandevgo/aquabot/pkg/log"
	"github.com/sandevgo/aquabot/pkg/retry"
)

const (
	maxResponseSize = 1 << 20
	maxErrorSnippet = 256
	apiKeyHeader    = "x-goog-api-key"
)

type GeminiOptions struct {
	BaseURL        string
	APIKey         string
	Model          string
	Retry          *retry.Config
	AttemptTimeout time.Duration
}

// Gemini is a completion client for the generateContent endpoint.
type Gemini struct {
	baseProvider
	retry          retry.Config
	attemptTimeout time.Duration
}

func NewGemini(opts GeminiOptions) *Gemini {
	rc := retry.NewDefaultConfig()
	if opts.Retry != nil {
		rc = opts.Retry
	}
	return &Gemini{
		baseProvider:   newBaseProvider(strings.TrimRight(opts.BaseURL, "/"), opts.APIKey, opts.Model),
		retry:          *rc,
		attemptTimeout: opts.AttemptTimeout,
	}
}

// Complete runs req with the configured retry policy.
func (g *Gemini) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	return g.CompleteWith(ctx, req, g.retry)
}

// CompleteWith runs req with an explicit retry policy. Every attempt failure is retried;
// after the last one the error wraps core.ErrRetriesExhausted and the final cause.
// Cancelling ctx stops immediately and returns ctx.Err().
func (g *Gemini) CompleteWith(ctx context.Context, req core.CompletionRequest, rc retry.Config) (string, error) {
	logger := log.FromCtx(ctx)
	payload := newGeminiRequest(req)
	start := time.Now()

	retrier := retry.NewRetrier(&rc).OnRetry(func(attempt int, delay time.Duration, err error) {
		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("completion attempt failed, retrying")
	})

	var text string
	err := retrier.Do(ctx, func() error {
		var err error
		text, err = g.attempt(ctx, payload)
		if err != nil && !core.Retryable(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, retry.ErrExhausted) {
			logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("completion failed after retries")
			return "", fmt.Errorf("%w: %w", core.ErrRetriesExhausted, err)
		}
		return "", err
	}

	logger.Debug().
		Str("model", g.model).
		Bool("json_mode", req.JSONMode).
		Int("response_len", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("completion succeeded")
	return text, nil
}

func (g *Gemini) attempt(ctx context.Context, payload geminiRequest) (string, error) {
	if g.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.attemptTimeout)
		defer cancel()
	}

	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(g.model))
	resp, err := g.doRequest(ctx, http.MethodPost, path, payload, map[string]string{apiKeyHeader: g.apiKey})
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrNetworkOrHTTP, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", core.ErrNetworkOrHTTP, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: http %d: %s", core.ErrNetworkOrHTTP, resp.StatusCode, snippet(data))
	}

	return parseGeminiResponse(data)
}

func newGeminiRequest(req core.CompletionRequest) geminiRequest {
	r := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
	}
	if req.JSONMode {
		r.GenerationConfig.ResponseMimeType = "application/json"
	}
	return r
}

// parseGeminiResponse extracts candidates[0].content.parts[0].text.
func parseGeminiResponse(data []byte) (string, error) {
	var result geminiResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("%w: decode: %w", core.ErrMalformedResponse, err)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates: %s", core.ErrMalformedResponse, snippet(data))
	}
	parts := result.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == nil {
		return "", fmt.Errorf("%w: no text in first candidate (finish reason %q)",
			core.ErrMalformedResponse, result.Candidates[0].FinishReason)
	}
	if strings.TrimSpace(*parts[0].Text) == "" {
		return "", fmt.Errorf("%w: empty text", core.ErrMalformedResponse)
	}
	return *parts[0].Text, nil
}

// Models lists models that support generateContent. Pages are retried with the
// client's policy; a 4xx answer such as a rejected key fails at once.
func (g *Gemini) Models(ctx context.Context) ([]Model, error) {
	retrier := retry.NewRetrier(&g.retry).OnRetry(func(attempt int, delay time.Duration, err error) {
		log.FromCtx(ctx).Debug().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("model list fetch failed, retrying")
	})

	var models []Model
	pageToken := ""
	for {
		var page geminiModelList
		err := retrier.Do(ctx, func() error {
			var err error
			page, err = g.modelsPage(ctx, pageToken)
			return err
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}

		for _, m := range page.Models {
			if !supports(m.SupportedGenerationMethods, "generateContent") {
				continue
			}
			name := m.DisplayName
			if name == "" {
				name = m.Name
			}
			models = append(models, Model{
				ID:            strings.TrimPrefix(m.Name, "models/"),
				Name:          name,
				ContextLength: m.InputTokenLimit,
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	return models, nil
}

func (g *Gemini) modelsPage(ctx context.Context, pageToken string) (geminiModelList, error) {
	var page geminiModelList

	path := "/models?pageSize=1000"
	if pageToken != "" {
		path += "&pageToken=" + url.QueryEscape(pageToken)
	}

	resp, err := g.doRequest(ctx, http.MethodGet, path, nil, map[string]string{apiKeyHeader: g.apiKey})
	if err != nil {
		return page, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return page, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("http %d: %s", resp.StatusCode, snippet(data))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return page, retry.Permanent(err)
		}
		return page, err
	}

	if err := json.Unmarshal(data, &page); err != nil {
		return page, fmt.Errorf("decode models response: %w", err)
	}
	return page, nil
}

func supports(methods []string, want string) bool {
	for _, m := range methods {
		if m == want {
			return true
		}
	}
	return false
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorSnippet {
		return s[:maxErrorSnippet] + "..."
	}
	return s
}
