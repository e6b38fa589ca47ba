// Package action is the boundary between the flows and anything a user
// drives: the wizard, the CLI and the HTTP server. Its methods never return
// an error. Every failure is logged and replaced by a substitute value that
// still satisfies the output contract.
package action

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/failure"
	"github.com/sant0-9/policygen/internal/i18n"
	"github.com/sant0-9/policygen/internal/metrics"
)

const (
	GeneratePolicyAction  = "generatePolicyAction"
	SummarizePolicyAction = "summarizePolicyAction"
	SuggestTemplateAction = "suggestTemplateAction"
)

// Flows is what the action layer needs from the orchestrator.
type Flows interface {
	GeneratePolicy(ctx context.Context, req contract.GenerationRequest) (contract.GenerationResult, error)
	SummarizeText(ctx context.Context, req contract.SummaryRequest) (contract.SummaryResult, error)
	SuggestTemplate(ctx context.Context, req contract.SuggestionRequest) (contract.SuggestionResult, error)
}

type Options struct {
	// Retries is how many extra attempts a GENERATOR_UNAVAILABLE failure gets.
	Retries int
	// Backoff is the first retry delay; it doubles per attempt.
	Backoff  time.Duration
	Language string
	Logger   *zap.Logger
}

type Service struct {
	flows   Flows
	retries int
	backoff time.Duration
	msgs    i18n.Messages
	logger  *zap.Logger
}

func New(flows Flows, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 100 * time.Millisecond
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Service{
		flows:   flows,
		retries: opts.Retries,
		backoff: opts.Backoff,
		msgs:    i18n.For(opts.Language),
		logger:  opts.Logger,
	}
}

// Messages returns the catalog the service localizes substitutes with.
func (s *Service) Messages() i18n.Messages {
	return s.msgs
}

// GeneratePolicy returns the generated policy, or an empty policy on any failure.
func (s *Service) GeneratePolicy(ctx context.Context, req contract.GenerationRequest) contract.GenerationResult {
	res, err := call(ctx, s, GeneratePolicyAction, "privacyPolicy",
		func(ctx context.Context) (contract.GenerationResult, error) { return s.flows.GeneratePolicy(ctx, req) },
		func(r contract.GenerationResult) string { return r.PrivacyPolicy })
	if err != nil {
		return contract.GenerationResult{PrivacyPolicy: ""}
	}
	return res
}

// SummarizePolicy returns the summary, or the localized failure message.
func (s *Service) SummarizePolicy(ctx context.Context, req contract.SummaryRequest) contract.SummaryResult {
	res, err := call(ctx, s, SummarizePolicyAction, "summary",
		func(ctx context.Context) (contract.SummaryResult, error) { return s.flows.SummarizeText(ctx, req) },
		func(r contract.SummaryResult) string { return r.Summary })
	if err != nil {
		return contract.SummaryResult{Summary: s.msgs.SummaryFailed}
	}
	return res
}

// SuggestTemplate returns a suggestion, or an empty suggestion whose reason
// explains that none is available.
func (s *Service) SuggestTemplate(ctx context.Context, req contract.SuggestionRequest) contract.SuggestionResult {
	res, err := call(ctx, s, SuggestTemplateAction, "templateSuggestion",
		func(ctx context.Context) (contract.SuggestionResult, error) { return s.flows.SuggestTemplate(ctx, req) },
		func(r contract.SuggestionResult) string { return r.TemplateSuggestion })
	if err != nil {
		return contract.SuggestionResult{Reason: s.msgs.SuggestionFailed}
	}
	return res
}

func call[Out any](
	ctx context.Context,
	s *Service,
	action, field string,
	fn func(context.Context) (Out, error),
	primary func(Out) string,
) (Out, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("action", action), zap.String("run_id", runID))

	var (
		out     Out
		lastErr error
	)

	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			backoff := s.backoff * time.Duration(1<<(attempt-1))
			metrics.IncActionRetry(action)
			log.Warn("retrying after generator failure",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				lastErr = failure.GeneratorUnavailable(action, ctx.Err())
				return fail(log, action, out, lastErr, attempt)
			}
		}

		out, lastErr = attemptOnce(ctx, action, fn)
		if lastErr == nil {
			if strings.TrimSpace(primary(out)) == "" {
				lastErr = failure.EmptyResult(action, field)
				return fail(log, action, out, lastErr, attempt+1)
			}
			log.Debug("action succeeded", zap.Int("attempts", attempt+1))
			return out, nil
		}

		if !failure.IsRetryable(lastErr) || ctx.Err() != nil {
			return fail(log, action, out, lastErr, attempt+1)
		}
	}

	return fail(log, action, out, lastErr, s.retries+1)
}

// attemptOnce runs fn, turning a panic into an error so nothing escapes.
func attemptOnce[Out any](ctx context.Context, action string, fn func(context.Context) (Out, error)) (out Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &failure.Error{
				Code:    failure.CodeUnknown,
				Op:      action,
				Message: "flow panicked",
				Err:     fmt.Errorf("%v", r),
			}
		}
	}()
	return fn(ctx)
}

func fail[Out any](log *zap.Logger, action string, out Out, err error, attempts int) (Out, error) {
	metrics.IncActionSubstitute(action)
	log.Error("action failed, returning substitute value",
		zap.String("code", string(failure.CodeOf(err))),
		zap.Int("attempts", attempts),
		zap.Error(err))
	return out, err
}
