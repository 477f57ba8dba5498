package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/forPelevin/narrashort/internal/domain/script"
	"github.com/forPelevin/narrashort/internal/types"
)

// Adapter writes the monologue through an OpenAI-compatible chat endpoint.
type Adapter struct {
	key    string
	model  string
	client *openai.Client
}

const (
	requestTimeout = 90 * time.Second
)

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = normalizeBaseURL(baseURL) + "/api/v1"
	cfg.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	return &Adapter{key: apiKey, model: model, client: openai.NewClientWithConfig(cfg)}
}

func (a *Adapter) Write(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", types.ExternalFailure("openrouter", nil, fmt.Errorf("timeout after %s (model=%s)", requestTimeout, a.model))
		}
		msg := truncate(redactSecrets(err.Error(), a.key), 400)
		return "", types.ExternalFailure("openrouter", []byte(msg), errors.New("chat completion failed"))
	}
	if len(resp.Choices) == 0 {
		return "", types.ExternalFailure("openrouter", nil, errors.New("no choices in response"))
	}
	text := script.Clean(stripFences(resp.Choices[0].Message.Content))
	if text == "" {
		return "", types.ExternalFailure("openrouter", nil, errors.New("empty content"))
	}
	return text, nil
}

func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	if i := strings.Index(t, "\n"); i >= 0 {
		t = t[i+1:]
	} else {
		t = strings.TrimPrefix(t, "```")
	}
	if j := strings.LastIndex(t, "```"); j >= 0 {
		t = t[:j]
	}
	return strings.TrimSpace(t)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
