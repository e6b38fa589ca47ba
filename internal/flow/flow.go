// Package flow exposes the named generation flows. Each flow validates its
// input, makes exactly one prompt invocation and returns the result or the
// pipeline's failure unchanged.
package flow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/failure"
	"github.com/sant0-9/policygen/internal/metrics"
	"github.com/sant0-9/policygen/internal/pipeline"
	"github.com/sant0-9/policygen/internal/prompts"
)

const (
	GeneratePolicyFlow  = "generatePrivacyPolicyFromInputFlow"
	SummarizePolicyFlow = "summarizePrivacyPolicyFlow"
	SuggestTemplateFlow = "suggestTemplateFlow"
)

var (
	generatePolicy = pipeline.Definition{
		Name:     GeneratePolicyFlow,
		Template: prompts.GeneratePolicy,
		Input:    contract.GenerationInput,
		Output:   contract.GenerationOutput,
	}
	summarizePolicy = pipeline.Definition{
		Name:     SummarizePolicyFlow,
		Template: prompts.SummarizePolicy,
		Input:    contract.SummaryInput,
		Output:   contract.SummaryOutput,
	}
	suggestTemplate = pipeline.Definition{
		Name:     SuggestTemplateFlow,
		Template: prompts.SuggestTemplate,
		Input:    contract.SuggestionInput,
		Output:   contract.SuggestionOutput,
	}
)

// Info describes a registered flow.
type Info struct {
	Name         string
	Template     string
	InputSchema  string
	OutputSchema string
	Placeholders []string
}

// Flows lists the registered flows in a stable order.
func Flows() []Info {
	defs := []pipeline.Definition{generatePolicy, summarizePolicy, suggestTemplate}
	out := make([]Info, len(defs))
	for i, d := range defs {
		out[i] = Info{
			Name:         d.Name,
			Template:     d.Template.Name,
			InputSchema:  d.Input.Name,
			OutputSchema: d.Output.Name,
			Placeholders: d.Template.Placeholders(),
		}
	}
	return out
}

// Orchestrator runs flows against one invoker. It is safe for concurrent use.
type Orchestrator struct {
	inv    *pipeline.Invoker
	logger *zap.Logger
}

func New(inv *pipeline.Invoker, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{inv: inv, logger: logger}
}

func (o *Orchestrator) GeneratePolicy(ctx context.Context, req contract.GenerationRequest) (contract.GenerationResult, error) {
	return run[contract.GenerationRequest, contract.GenerationResult](ctx, o, generatePolicy, req)
}

func (o *Orchestrator) SummarizeText(ctx context.Context, req contract.SummaryRequest) (contract.SummaryResult, error) {
	return run[contract.SummaryRequest, contract.SummaryResult](ctx, o, summarizePolicy, req)
}

func (o *Orchestrator) SuggestTemplate(ctx context.Context, req contract.SuggestionRequest) (contract.SuggestionResult, error) {
	return run[contract.SuggestionRequest, contract.SuggestionResult](ctx, o, suggestTemplate, req)
}

func run[In, Out any](ctx context.Context, o *Orchestrator, def pipeline.Definition, in In) (Out, error) {
	start := time.Now()
	metrics.IncFlowRequest(def.Name)

	var out Out
	err := contract.Validate(def.Input, in)
	if err == nil {
		out, err = pipeline.Invoke[In, Out](ctx, o.inv, def, in)
	}

	elapsed := time.Since(start)
	metrics.ObserveFlowDuration(def.Name, elapsed)
	if err != nil {
		metrics.IncFlowFailure(def.Name, string(failure.CodeOf(err)))
		o.logger.Debug("flow failed",
			zap.String("flow", def.Name),
			zap.String("code", string(failure.CodeOf(err))),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return out, err
	}

	o.logger.Debug("flow completed", zap.String("flow", def.Name), zap.Duration("elapsed", elapsed))
	return out, nil
}
