package wizard

import (
	"context"

	"github.com/sant0-9/policygen/internal/contract"
)

// Actions is the only way the wizard reaches the generator. Implementations
// never fail; they return substitute values instead.
type Actions interface {
	GeneratePolicy(ctx context.Context, req contract.GenerationRequest) contract.GenerationResult
	SummarizePolicy(ctx context.Context, req contract.SummaryRequest) contract.SummaryResult
}

// Suggester is implemented by action backends that can recommend a template.
type Suggester interface {
	SuggestTemplate(ctx context.Context, req contract.SuggestionRequest) contract.SuggestionResult
}

// Runner drives one submission to completion: generate, then summarize
// only if a policy came back.
type Runner struct {
	Actions Actions
}

// Run submits req on st and blocks until the run ends or is superseded.
func (r *Runner) Run(ctx context.Context, st *State, req contract.GenerationRequest) error {
	run, err := st.Submit(req)
	if err != nil {
		return err
	}

	policy := r.Generate(ctx, run)
	if !st.PolicyArrived(run, policy) || st.Policy == nil {
		return nil
	}

	st.SummaryArrived(run, r.Summarize(ctx, *st.Policy))
	return nil
}

// Generate is the first step of a run.
func (r *Runner) Generate(ctx context.Context, run Run) string {
	return r.Actions.GeneratePolicy(ctx, run.Request).PrivacyPolicy
}

// Summarize is the second step; policy must be the first step's output.
func (r *Runner) Summarize(ctx context.Context, policy string) string {
	return r.Actions.SummarizePolicy(ctx, contract.SummaryRequest{PrivacyPolicyText: policy}).Summary
}
