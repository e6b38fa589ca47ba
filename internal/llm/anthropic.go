package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
)

type AnthropicProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	return &AnthropicProvider{
		apiKey:     apiKey,
		model:      model,
		baseURL:    anthropicBaseURL,
		httpClient: newHTTPClient(),
	}
}

func (a *AnthropicProvider) Name() string { return "anthropic" }

// Ping sends a one-token message; there is no cheaper authenticated call.
// A 400 still proves the key and endpoint work.
func (a *AnthropicProvider) Ping(ctx context.Context) error {
	err := a.post(ctx, anthropicRequest{
		Model:     a.model,
		MaxTokens: 1,
		Messages:  []anthropicMessage{{Role: "user", Content: "hi"}},
	}, nil)

	var se *StatusError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("anthropic: invalid API key")
	case errors.As(err, &se) && se.StatusCode == http.StatusBadRequest:
		return nil
	}
	return err
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *AnthropicProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	in := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if in.Model == "" {
		in.Model = a.model
	}
	// max_tokens is mandatory on this API.
	if in.MaxTokens == 0 {
		in.MaxTokens = 2048
	}

	system, rest := splitSystem(req.Messages)
	in.System = system
	for _, m := range rest {
		in.Messages = append(in.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	var out anthropicResponse
	if err := a.post(ctx, in, &out); err != nil {
		return nil, err
	}
	if len(out.Content) == 0 {
		return nil, fmt.Errorf("anthropic: empty content")
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &CompletionResponse{
		Content:      text.String(),
		Model:        in.Model,
		FinishReason: out.StopReason,
		Usage: Usage{
			PromptTokens:     out.Usage.InputTokens,
			CompletionTokens: out.Usage.OutputTokens,
			TotalTokens:      out.Usage.InputTokens + out.Usage.OutputTokens,
		},
	}, nil
}

func (a *AnthropicProvider) post(ctx context.Context, in anthropicRequest, out any) error {
	header := http.Header{}
	header.Set("x-api-key", a.apiKey)
	header.Set("anthropic-version", anthropicVersion)
	return call(ctx, a.httpClient, "anthropic", http.MethodPost, a.baseURL+"/messages", header, in, out)
}
