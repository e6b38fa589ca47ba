// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/sant0-9/policygen/internal/llm"
)

// Reply is one scripted answer. Block waits for the context to end, which
// is how tests simulate a generator that never answers.
type Reply struct {
	Content string
	Err     error
	Block   bool
	Panic   any
}

// Provider returns scripted replies in order. The last reply repeats once
// the script runs out.
type Provider struct {
	mu      sync.Mutex
	replies []Reply
	calls   []*llm.CompletionRequest
	PingErr error
}

func New(replies ...Reply) *Provider {
	return &Provider{replies: replies}
}

// Text is shorthand for a provider that always answers content.
func Text(content string) *Provider {
	return New(Reply{Content: content})
}

func (p *Provider) Name() string { return "fake" }

func (p *Provider) Ping(ctx context.Context) error { return p.PingErr }

func (p *Provider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	var r Reply
	if n := len(p.replies); n > 0 {
		idx := len(p.calls) - 1
		if idx >= n {
			idx = n - 1
		}
		r = p.replies[idx]
	}
	p.mu.Unlock()

	if r.Panic != nil {
		panic(r.Panic)
	}
	if r.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &llm.CompletionResponse{Content: r.Content, Model: req.Model, FinishReason: "stop"}, nil
}

// Calls returns the requests received so far.
func (p *Provider) Calls() []*llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*llm.CompletionRequest, len(p.calls))
	copy(out, p.calls)
	return out
}

// LastPrompt returns the user message of the most recent call.
func (p *Provider) LastPrompt() string {
	calls := p.Calls()
	if len(calls) == 0 {
		return ""
	}
	msgs := calls[len(calls)-1].Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			return msgs[i].Content
		}
	}
	return ""
}
