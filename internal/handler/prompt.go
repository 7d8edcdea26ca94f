package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/workiq/weave/internal/engine"
	"github.com/workiq/weave/pkg/api"
)

// PromptCaller builds handlers that call a chat-completions style API
type PromptCaller struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

const promptContentPath = "choices.0.message.content"

var (
	ErrPromptHTTP    = errors.New("prompt call returned HTTP error")
	ErrPromptContent = errors.New("prompt call returned no content")
)

// NewPromptCaller creates a prompt handler factory for the given
// completions URL. The API key may be empty for unauthenticated targets
func NewPromptCaller(url, apiKey string, timeout time.Duration) *PromptCaller {
	return &PromptCaller{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:    url,
		apiKey: apiKey,
	}
}

// Handler returns the executable capability for a prompt endpoint
func (c *PromptCaller) Handler(spec *api.PromptSpec) engine.Handler {
	return func(ctx context.Context, input any) (any, error) {
		prompt := substituteVars(spec.Prompt, input)
		body, err := json.Marshal(c.request(spec, prompt))
		if err != nil {
			return nil, err
		}

		content, err := c.call(ctx, body)
		if err != nil {
			return nil, err
		}

		// Prompts instructed to answer in JSON yield structured output
		var parsed map[string]any
		if err := json.Unmarshal([]byte(content), &parsed); err == nil {
			return parsed, nil
		}
		return map[string]any{"content": content}, nil
	}
}

func (c *PromptCaller) request(spec *api.PromptSpec, prompt string) map[string]any {
	req := map[string]any{
		"model": spec.Model,
		"messages": []any{
			map[string]any{"role": "user", "content": prompt},
		},
	}
	if spec.MaxTokens > 0 {
		req["max_tokens"] = spec.MaxTokens
	}
	if spec.Temperature > 0 {
		req["temperature"] = spec.Temperature
	}
	return req
}

func (c *PromptCaller) call(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.url, bytes.NewReader(body),
	)
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	dur := time.Since(start)

	if err != nil {
		slog.Error("Prompt request failed",
			slog.Duration("duration", dur),
			slog.Any("error", err))
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Prompt HTTP error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(respBody)))
		return "", fmt.Errorf("%w: HTTP %d", ErrPromptHTTP, resp.StatusCode)
	}

	content := gjson.GetBytes(respBody, promptContentPath).String()
	if content == "" {
		return "", ErrPromptContent
	}
	return content, nil
}

// substituteVars replaces {{input.key}} placeholders with string forms of
// the invocation input's values. Prompt text and query argv use this
// convention; chain step inputs go through the template compiler instead
func substituteVars(text string, input any) string {
	in, ok := input.(map[string]any)
	if !ok {
		return text
	}

	res := text
	for key, value := range in {
		placeholder := "{{input." + key + "}}"
		if !strings.Contains(res, placeholder) {
			continue
		}
		res = strings.ReplaceAll(res, placeholder, cast.ToString(value))
	}
	return res
}
