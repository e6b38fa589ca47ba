// Package pipeline runs one prompt against the generator: render the
// template, call the provider with a bounded wait, and shape the answer into
// the output contract. It keeps no state between calls and never retries.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sant0-9/policygen/internal/config"
	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/failure"
	"github.com/sant0-9/policygen/internal/llm"
	"github.com/sant0-9/policygen/internal/prompts"
)

const defaultTimeout = 90 * time.Second

// Definition binds a template to its input and output contracts.
type Definition struct {
	Name     string
	Template *prompts.Template
	Input    *contract.Contract
	Output   *contract.Contract
}

// Invoker holds the generator and the call settings shared by every prompt.
type Invoker struct {
	Provider    llm.Provider
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	Logger      *zap.Logger
}

func NewInvoker(provider llm.Provider, cfg *config.Config, logger *zap.Logger) *Invoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{
		Provider:    provider,
		Model:       cfg.Model,
		Timeout:     cfg.Generation.Timeout,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
		Logger:      logger,
	}
}

// Invoke renders def with in, asks the generator and returns its answer as
// Out. Errors are *failure.Error: CONTRACT_VIOLATION before any call is
// made, GENERATOR_UNAVAILABLE when the call fails or the wait runs out, and
// OUTPUT_CONTRACT_VIOLATION when the answer cannot be shaped into Out.
func Invoke[In, Out any](ctx context.Context, inv *Invoker, def Definition, in In) (Out, error) {
	var zero Out

	if err := contract.Validate(def.Input, in); err != nil {
		return zero, err
	}

	fields, err := fieldsOf(in)
	if err != nil {
		return zero, failure.ContractViolation(def.Name, failure.FieldError{Message: err.Error()})
	}

	prompt, err := def.Template.Render(fields)
	if err != nil {
		var mf *prompts.MissingFieldsError
		if errors.As(err, &mf) {
			fe := make([]failure.FieldError, len(mf.Fields))
			for i, f := range mf.Fields {
				fe[i] = failure.FieldError{Field: f, Message: "no value for placeholder"}
			}
			return zero, failure.ContractViolation(def.Name, fe...)
		}
		return zero, failure.ContractViolation(def.Name, failure.FieldError{Message: err.Error()})
	}

	schema, err := json.Marshal(def.Output.Schema)
	if err != nil {
		return zero, failure.OutputContractViolation(def.Name, err)
	}

	req := &llm.CompletionRequest{
		Model: inv.Model,
		Messages: []llm.Message{
			{Role: "system", Content: prompts.OutputInstruction(string(schema))},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   inv.MaxTokens,
		Temperature: inv.Temperature,
		JSON:        true,
	}

	start := time.Now()
	resp, err := inv.complete(ctx, req)
	if err != nil {
		inv.logger().Debug("generator call failed",
			zap.String("flow", def.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return zero, failure.GeneratorUnavailable(def.Name, err)
	}

	inv.logger().Debug("generator answered",
		zap.String("flow", def.Name),
		zap.String("provider", inv.Provider.Name()),
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))

	return decode[Out](def, resp.Content)
}

// complete calls the provider under the invoker's timeout. The select keeps
// the wait bounded even for a provider that ignores its context.
func (inv *Invoker) complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		resp *llm.CompletionResponse
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("generator panicked: %v", r)}
			}
		}()
		resp, err := inv.Provider.Complete(ctx, req)
		if err == nil && resp == nil {
			err = fmt.Errorf("generator returned no response")
		}
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", inv.Provider.Name(), ctx.Err())
	}
}

func (inv *Invoker) logger() *zap.Logger {
	if inv.Logger == nil {
		return zap.NewNop()
	}
	return inv.Logger
}

func decode[Out any](def Definition, content string) (Out, error) {
	var zero Out

	raw := ExtractJSON(content)
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return zero, failure.OutputContractViolation(def.Name, fmt.Errorf("response is not JSON: %w", err))
	}

	if err := contract.ValidateOutput(def.Output, doc); err != nil {
		return zero, err
	}

	var out Out
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return zero, failure.OutputContractViolation(def.Name, err)
	}
	return out, nil
}

// fieldsOf flattens a request record into placeholder values by its JSON names.
func fieldsOf(v any) (map[string]string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("input must be a record: %w", err)
	}

	fields := make(map[string]string, len(m))
	for k, val := range m {
		switch x := val.(type) {
		case string:
			fields[k] = x
		case nil:
		default:
			fields[k] = fmt.Sprint(x)
		}
	}
	return fields, nil
}
