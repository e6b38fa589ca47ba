package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/failure"
	"github.com/sant0-9/policygen/internal/llm"
	"github.com/sant0-9/policygen/internal/llm/llmtest"
	"github.com/sant0-9/policygen/internal/prompts"
)

var generateDef = Definition{
	Name:     "generatePolicy",
	Template: prompts.GeneratePolicy,
	Input:    contract.GenerationInput,
	Output:   contract.GenerationOutput,
}

func request() contract.GenerationRequest {
	return contract.GenerationRequest{
		CompanyName:             "Acme",
		WebsiteURL:              "https://acme.com",
		DataCollectionPractices: "emails, IP addresses",
		DataUsagePractices:      "shipping orders",
		DataSharingPractices:    "couriers",
		DataSecurityMeasures:    "encryption at rest",
		UserRights:              "access and erasure",
		ContactInformation:      "privacy@acme.com",
		EffectiveDate:           "2024-01-01",
	}
}

func newInvoker(t *testing.T, p llm.Provider) *Invoker {
	return &Invoker{
		Provider:  p,
		Model:     "test-model",
		Timeout:   time.Second,
		MaxTokens: 100,
		Logger:    zaptest.NewLogger(t),
	}
}

func TestInvokeRendersAndDecodes(t *testing.T) {
	p := llmtest.Text(`{"privacyPolicy":"Acme Privacy Policy"}`)

	out, err := Invoke[contract.GenerationRequest, contract.GenerationResult](context.Background(), newInvoker(t, p), generateDef, request())
	require.NoError(t, err)
	assert.Equal(t, "Acme Privacy Policy", out.PrivacyPolicy)

	calls := p.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].JSON)
	assert.Equal(t, "test-model", calls[0].Model)
	assert.Contains(t, calls[0].Messages[0].Content, `"privacyPolicy"`)

	prompt := p.LastPrompt()
	assert.NotContains(t, prompt, "{{{")
	assert.Contains(t, prompt, "Company Name: Acme")
	assert.Contains(t, prompt, "Effective Date: 2024-01-01")
}

func TestInvokeContractViolationSkipsGenerator(t *testing.T) {
	p := llmtest.Text(`{"privacyPolicy":"x"}`)
	req := request()
	req.ContactInformation = ""

	_, err := Invoke[contract.GenerationRequest, contract.GenerationResult](context.Background(), newInvoker(t, p), generateDef, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrContractViolation)
	assert.Empty(t, p.Calls())
}

func TestInvokeGeneratorError(t *testing.T) {
	p := llmtest.New(llmtest.Reply{Err: errors.New("connection refused")})

	_, err := Invoke[contract.GenerationRequest, contract.GenerationResult](context.Background(), newInvoker(t, p), generateDef, request())
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrGeneratorUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestInvokeTimesOut(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreOpenCensus)

	p := llmtest.New(llmtest.Reply{Block: true})
	inv := newInvoker(t, p)
	inv.Timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := Invoke[contract.GenerationRequest, contract.GenerationResult](context.Background(), inv, generateDef, request())
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrGeneratorUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestInvokeCallerCancel(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreOpenCensus)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Invoke[contract.GenerationRequest, contract.GenerationResult](ctx, newInvoker(t, llmtest.New(llmtest.Reply{Block: true})), generateDef, request())
	assert.ErrorIs(t, err, failure.ErrGeneratorUnavailable)
}

func TestInvokeProviderPanic(t *testing.T) {
	p := llmtest.New(llmtest.Reply{Panic: "boom"})

	_, err := Invoke[contract.GenerationRequest, contract.GenerationResult](context.Background(), newInvoker(t, p), generateDef, request())
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrGeneratorUnavailable)
	assert.Contains(t, err.Error(), "boom")
}

func TestInvokeOutputContract(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"fenced", "```json\n{\"privacyPolicy\": \"fenced\"}\n```", "fenced", false},
		{"preamble", "Here you go:\n{\"privacyPolicy\": \"inline\"}", "inline", false},
		{"empty string is passed up", `{"privacyPolicy": ""}`, "", false},
		{"prose", "Sorry, I cannot help with that.", "", true},
		{"wrong key", `{"policy": "x"}`, "", true},
		{"wrong type", `{"privacyPolicy": ["x"]}`, "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Invoke[contract.GenerationRequest, contract.GenerationResult](context.Background(), newInvoker(t, llmtest.Text(tt.content)), generateDef, request())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, failure.ErrOutputContractViolation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.PrivacyPolicy)
		})
	}
}

func TestInvokeMissingPlaceholderValue(t *testing.T) {
	tpl, err := prompts.Parse("t", "{{{privacyPolicyText}}} {{{language}}}")
	require.NoError(t, err)
	def := Definition{Name: "t", Template: tpl, Input: contract.SummaryInput, Output: contract.SummaryOutput}
	p := llmtest.Text(`{"summary":"x"}`)

	_, err = Invoke[contract.SummaryRequest, contract.SummaryResult](context.Background(), newInvoker(t, p), def, contract.SummaryRequest{PrivacyPolicyText: "text"})
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrContractViolation)
	assert.Empty(t, p.Calls())
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, ExtractJSON("  {\"a\":1}  "))
	assert.Equal(t, "plain", ExtractJSON("plain"))
	assert.True(t, strings.HasPrefix(ExtractJSON("x {\"a\":{\"b\":2}} y"), `{"a"`))
	assert.Equal(t, `{"a":1}`, ExtractJSON("{\"a\":1}\nLet me know if you need changes."))
}

func TestInvokeIgnoresTrailingProse(t *testing.T) {
	p := llmtest.Text("{\"privacyPolicy\":\"Acme Privacy Policy\"}\nLet me know if you want a shorter version.")

	out, err := Invoke[contract.GenerationRequest, contract.GenerationResult](context.Background(), newInvoker(t, p), generateDef, request())
	require.NoError(t, err)
	assert.Equal(t, "Acme Privacy Policy", out.PrivacyPolicy)
}

// ignoreOpenCensus skips the worker goroutine go.opencensus.io starts from
// its package init (pulled in transitively by the Gemini SDK).
var ignoreOpenCensus = goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start")
