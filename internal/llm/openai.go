package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions API.
// Groq, OpenRouter and custom endpoints are the same wire format with a
// different base URL and name.
type OpenAIProvider struct {
	name       string
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	groqBaseURL       = "https://api.groq.com/openai/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

func newCompatProvider(name, baseURL, apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		name:       name,
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return newCompatProvider("openai", openAIBaseURL, apiKey, model)
}

func NewGroqProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "llama-3.1-70b-versatile"
	}
	return newCompatProvider("groq", groqBaseURL, apiKey, model)
}

func NewOpenRouterProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "meta-llama/llama-3.1-70b-instruct"
	}
	return newCompatProvider("openrouter", openRouterBaseURL, apiKey, model)
}

func NewCustomProvider(baseURL, apiKey, model string) *OpenAIProvider {
	return newCompatProvider("custom", baseURL, apiKey, model)
}

func (o *OpenAIProvider) Name() string { return o.name }

func (o *OpenAIProvider) Ping(ctx context.Context) error {
	err := call(ctx, o.httpClient, o.name, http.MethodGet, o.baseURL+"/models", o.header(), nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: invalid API key", o.name)
	}
	return err
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (o *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	in := openAIRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if in.Model == "" {
		in.Model = o.model
	}
	for _, m := range req.Messages {
		in.Messages = append(in.Messages, openAIMessage{Role: m.Role, Content: m.Content})
	}
	// Policy and summary answers are JSON objects; ask for JSON mode so
	// the model does not wrap them in prose.
	if req.JSON {
		in.ResponseFormat = &openAIFormat{Type: "json_object"}
	}

	var out openAIResponse
	if err := call(ctx, o.httpClient, o.name, http.MethodPost, o.baseURL+"/chat/completions", o.header(), in, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%s: no choices in response", o.name)
	}

	choice := out.Choices[0]
	return &CompletionResponse{
		Content:      choice.Message.Content,
		Model:        in.Model,
		FinishReason: choice.FinishReason,
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}, nil
}

func (o *OpenAIProvider) header() http.Header {
	h := http.Header{}
	if o.apiKey != "" {
		h.Set("Authorization", "Bearer "+o.apiKey)
	}
	return h
}
