package llm

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

// AzureProvider calls a chat deployment on Azure OpenAI.
type AzureProvider struct {
	client     *azopenai.Client
	deployment string
}

func NewAzureProvider(endpoint, apiKey, deployment string) (*AzureProvider, error) {
	return newAzureProvider(endpoint, apiKey, deployment, nil)
}

func newAzureProvider(endpoint, apiKey, deployment string, opts *azopenai.ClientOptions) (*AzureProvider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("azure requires base_url")
	}
	if deployment == "" {
		return nil, fmt.Errorf("azure requires azure_deployment")
	}

	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), opts)
	if err != nil {
		return nil, fmt.Errorf("error creating Azure OpenAI client: %w", err)
	}

	return &AzureProvider{client: client, deployment: deployment}, nil
}

func (a *AzureProvider) Name() string {
	return "azure"
}

func (a *AzureProvider) Ping(ctx context.Context) error {
	_, err := a.Complete(ctx, &CompletionRequest{
		Messages:  []Message{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	})
	return err
}

// Complete always targets the configured deployment. req.Model carries the
// shared model setting, which on Azure is not an address.
func (a *AzureProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	deployment := a.deployment

	messages := make([]azopenai.ChatRequestMessageClassification, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, &azopenai.ChatRequestSystemMessage{
				Content: azopenai.NewChatRequestSystemMessageContent(m.Content),
			})
		case "assistant":
			messages = append(messages, &azopenai.ChatRequestAssistantMessage{
				Content: azopenai.NewChatRequestAssistantMessageContent(m.Content),
			})
		default:
			messages = append(messages, &azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(m.Content),
			})
		}
	}

	opts := azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(deployment),
		Messages:       messages,
		Temperature:    to.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		opts.MaxTokens = to.Ptr(int32(req.MaxTokens))
	}
	if req.JSON {
		opts.ResponseFormat = &azopenai.ChatCompletionsJSONResponseFormat{}
	}

	resp, err := a.client.GetChatCompletions(ctx, opts, nil)
	if err != nil {
		return nil, fmt.Errorf("azure request failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return nil, fmt.Errorf("no completion received from Azure OpenAI")
	}

	out := &CompletionResponse{
		Content: *resp.Choices[0].Message.Content,
		Model:   deployment,
	}
	if fr := resp.Choices[0].FinishReason; fr != nil {
		out.FinishReason = string(*fr)
	}
	if u := resp.Usage; u != nil {
		out.Usage = Usage{
			PromptTokens:     int(deref(u.PromptTokens)),
			CompletionTokens: int(deref(u.CompletionTokens)),
			TotalTokens:      int(deref(u.TotalTokens)),
		}
	}
	return out, nil
}

func deref(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}
