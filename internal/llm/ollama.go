package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const ollamaHost = "http://localhost:11434"

// OllamaProvider runs against a local Ollama daemon. Nothing leaves the
// machine, which suits drafting policies for unreleased products.
type OllamaProvider struct {
	host       string
	model      string
	httpClient *http.Client
}

func NewOllamaProvider(host, model string) *OllamaProvider {
	if host == "" {
		host = ollamaHost
	}
	return &OllamaProvider{
		host:       strings.TrimRight(host, "/"),
		model:      model,
		httpClient: newHTTPClient(),
	}
}

func (o *OllamaProvider) Name() string { return "ollama" }

func (o *OllamaProvider) Ping(ctx context.Context) error {
	if err := call(ctx, o.httpClient, "ollama", http.MethodGet, o.host+"/api/tags", nil, nil, nil); err != nil {
		return fmt.Errorf("ollama at %s: %w", o.host, err)
	}
	return nil
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  struct {
		Temperature float64 `json:"temperature,omitempty"`
		NumPredict  int     `json:"num_predict,omitempty"`
	} `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	DoneReason      string        `json:"done_reason,omitempty"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

func (o *OllamaProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	in := ollamaRequest{Model: req.Model}
	if in.Model == "" {
		in.Model = o.model
	}
	for _, m := range req.Messages {
		in.Messages = append(in.Messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}
	in.Options.Temperature = req.Temperature
	in.Options.NumPredict = req.MaxTokens
	if req.JSON {
		in.Format = "json"
	}

	var out ollamaResponse
	if err := call(ctx, o.httpClient, "ollama", http.MethodPost, o.host+"/api/chat", nil, in, &out); err != nil {
		return nil, err
	}

	return &CompletionResponse{
		Content:      out.Message.Content,
		Model:        out.Model,
		FinishReason: out.DoneReason,
		Usage: Usage{
			PromptTokens:     out.PromptEvalCount,
			CompletionTokens: out.EvalCount,
			TotalTokens:      out.PromptEvalCount + out.EvalCount,
		},
	}, nil
}
