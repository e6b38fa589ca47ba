package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sant0-9/policygen/internal/action"
	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/flow"
	"github.com/sant0-9/policygen/internal/i18n"
	"github.com/sant0-9/policygen/internal/llm/llmtest"
	"github.com/sant0-9/policygen/internal/pipeline"
)

func scenarioInput() contract.GenerationRequest {
	return contract.GenerationRequest{
		CompanyName:             "Acme",
		WebsiteURL:              "https://acme.com",
		DataCollectionPractices: "emails, IP addresses",
		DataUsagePractices:      "order fulfilment and support",
		DataSharingPractices:    "payment processor and courier",
		DataSecurityMeasures:    "TLS and encrypted backups",
		UserRights:              "access, correction and deletion",
		ContactInformation:      "privacy@acme.com",
		EffectiveDate:           "2024-01-01",
	}
}

func service(t *testing.T, p *llmtest.Provider, lang string) *action.Service {
	inv := &pipeline.Invoker{Provider: p, Timeout: time.Second, Logger: zaptest.NewLogger(t)}
	return action.New(flow.New(inv, zaptest.NewLogger(t)), action.Options{Language: lang, Logger: zaptest.NewLogger(t)})
}

func atCustomize(t *testing.T, msgs i18n.Messages) *State {
	st := New(msgs)
	require.NoError(t, st.Select("ecommerce"))
	return st
}

// recording wraps Actions and notes the order of calls and the busy flag
// seen while each call was in flight.
type recording struct {
	Actions
	st   *State
	mu   sync.Mutex
	log  []string
	busy []bool
}

func (r *recording) GeneratePolicy(ctx context.Context, req contract.GenerationRequest) contract.GenerationResult {
	r.note("generate")
	return r.Actions.GeneratePolicy(ctx, req)
}

func (r *recording) SummarizePolicy(ctx context.Context, req contract.SummaryRequest) contract.SummaryResult {
	r.note("summarize:" + req.PrivacyPolicyText)
	return r.Actions.SummarizePolicy(ctx, req)
}

func (r *recording) note(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, s)
	r.busy = append(r.busy, r.st.Busy)
}

func TestScenarioGenerateAndSummarize(t *testing.T) {
	p := llmtest.New(
		llmtest.Reply{Content: `{"privacyPolicy":"Acme Privacy Policy\n\n1. Data we collect"}`},
		llmtest.Reply{Content: `{"summary":"Acme collects emails and IP addresses."}`},
	)
	msgs := i18n.For("en")
	st := atCustomize(t, msgs)
	rec := &recording{Actions: service(t, p, "en"), st: st}

	require.NoError(t, (&Runner{Actions: rec}).Run(context.Background(), st, scenarioInput()))

	assert.Equal(t, StageResult, st.Stage)
	assert.False(t, st.Busy)
	require.NotNil(t, st.Policy)
	require.NotNil(t, st.Summary)
	assert.Equal(t, "Acme Privacy Policy\n\n1. Data we collect", *st.Policy)
	assert.Equal(t, "Acme collects emails and IP addresses.", *st.Summary)
	assert.Equal(t, []bool{true, true}, rec.busy)
	require.NotNil(t, st.Notice)
	assert.False(t, st.Notice.Failure)

	assert.Equal(t, []string{"generate", "summarize:" + *st.Policy}, rec.log)
	calls := p.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Messages[1].Content, "Company Name: Acme")
	assert.Contains(t, calls[1].Messages[1].Content, "Acme Privacy Policy")
}

func TestScenarioGeneratorAlwaysFails(t *testing.T) {
	p := llmtest.New(llmtest.Reply{Err: errors.New("service unavailable")})
	msgs := i18n.For("en")
	st := atCustomize(t, msgs)
	rec := &recording{Actions: service(t, p, "en"), st: st}

	require.NoError(t, (&Runner{Actions: rec}).Run(context.Background(), st, scenarioInput()))

	assert.Equal(t, []string{"generate"}, rec.log, "summary is never requested")
	assert.False(t, st.Busy)
	assert.Nil(t, st.Policy)
	assert.Nil(t, st.Summary)
	assert.Equal(t, StageCustomize, st.Stage)
	require.NotNil(t, st.Notice)
	assert.True(t, st.Notice.Failure)
	assert.Equal(t, msgs.FailureDescription, st.Notice.Description)
	assert.Equal(t, scenarioInput(), st.Form, "answers are kept for a retry")
}

func TestScenarioSummaryFails(t *testing.T) {
	p := llmtest.New(
		llmtest.Reply{Content: `{"privacyPolicy":"Acme Privacy Policy"}`},
		llmtest.Reply{Err: errors.New("timeout")},
	)
	st := atCustomize(t, i18n.For("tr"))

	require.NoError(t, (&Runner{Actions: service(t, p, "tr")}).Run(context.Background(), st, scenarioInput()))

	assert.Equal(t, StageResult, st.Stage)
	assert.False(t, st.Busy)
	require.NotNil(t, st.Policy)
	assert.Equal(t, "Acme Privacy Policy", *st.Policy)
	require.NotNil(t, st.Summary)
	assert.Equal(t, "Özet oluşturulurken bir hata oluştu.", *st.Summary)
}

func TestTransitions(t *testing.T) {
	st := New(i18n.For("en"))
	assert.Equal(t, StageSelect, st.Stage)

	_, err := st.Submit(scenarioInput())
	assert.ErrorIs(t, err, ErrInvalidTransition, "cannot submit before choosing a template")
	assert.ErrorIs(t, st.Select(""), ErrInvalidTransition)

	require.NoError(t, st.Select("saas"))
	assert.Equal(t, "saas", *st.TemplateID)
	assert.ErrorIs(t, st.Select("blog"), ErrInvalidTransition)

	require.NoError(t, st.Back())
	assert.Nil(t, st.TemplateID)
	require.NoError(t, st.Select("blog"))

	run, err := st.Submit(scenarioInput())
	require.NoError(t, err)
	assert.Equal(t, StageResult, st.Stage)
	assert.True(t, st.Busy)

	_, err = st.Submit(scenarioInput())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, st.Back(), ErrInvalidTransition)

	assert.True(t, st.PolicyArrived(run, "policy"))
	assert.True(t, st.AwaitingSummary())
	assert.True(t, st.SummaryArrived(run, "summary"))
	assert.False(t, st.AwaitingSummary())

	st.Restart()
	assert.Equal(t, StageSelect, st.Stage)
	assert.Nil(t, st.TemplateID)
	assert.Nil(t, st.Policy)
	assert.Nil(t, st.Summary)
	assert.False(t, st.Busy)
}

func TestStaleResultsAreDiscarded(t *testing.T) {
	st := atCustomize(t, i18n.For("en"))
	old, err := st.Submit(scenarioInput())
	require.NoError(t, err)

	assert.True(t, st.PolicyArrived(old, "old policy"))

	// The user starts over while the summary is in flight.
	st.Restart()
	require.NoError(t, st.Select("blog"))

	assert.False(t, st.SummaryArrived(old, "late summary"))
	assert.Nil(t, st.Summary)
	assert.Equal(t, StageCustomize, st.Stage)

	fresh, err := st.Submit(scenarioInput())
	require.NoError(t, err)
	assert.False(t, st.PolicyArrived(old, "old policy"), "old epoch")
	assert.Nil(t, st.Policy)
	assert.True(t, st.PolicyArrived(fresh, "new policy"))
	assert.Equal(t, "new policy", *st.Policy)
}

func TestSummaryBeforePolicyIsIgnored(t *testing.T) {
	st := atCustomize(t, i18n.For("en"))
	run, err := st.Submit(scenarioInput())
	require.NoError(t, err)

	assert.False(t, st.SummaryArrived(run, "too early"))
	assert.True(t, st.Busy)
}

// restartDuring starts over while the generation call is in flight.
type restartDuring struct {
	st      *State
	summary bool
}

func (r *restartDuring) GeneratePolicy(ctx context.Context, req contract.GenerationRequest) contract.GenerationResult {
	r.st.Restart()
	return contract.GenerationResult{PrivacyPolicy: "stale"}
}

func (r *restartDuring) SummarizePolicy(ctx context.Context, req contract.SummaryRequest) contract.SummaryResult {
	r.summary = true
	return contract.SummaryResult{Summary: "stale"}
}

func TestRunnerStopsWhenSuperseded(t *testing.T) {
	st := atCustomize(t, i18n.For("en"))
	acts := &restartDuring{st: st}

	require.NoError(t, (&Runner{Actions: acts}).Run(context.Background(), st, scenarioInput()))
	assert.False(t, acts.summary)
	assert.Equal(t, StageSelect, st.Stage)
	assert.Nil(t, st.Policy)
}

func TestCheckForm(t *testing.T) {
	msgs := i18n.For("en")
	long := "a description that is long enough"

	ok := contract.GenerationRequest{
		CompanyName: "Ac", WebsiteURL: "https://acme.com", EffectiveDate: "01.01.2024",
		ContactInformation: "privacy@acme.com",
		DataCollectionPractices: long, DataUsagePractices: long, DataSharingPractices: long,
		DataSecurityMeasures: long, UserRights: long,
	}
	assert.Empty(t, CheckForm(ok, msgs))

	bad := ok
	bad.CompanyName = "A"
	bad.WebsiteURL = "acme.com"
	bad.ContactInformation = "a@b.c"
	bad.UserRights = "too short"

	errs := CheckForm(bad, msgs)
	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Message
	}
	assert.Equal(t, map[string]string{
		"companyName":        msgs.CompanyNameTooShort,
		"websiteURL":         msgs.InvalidURL,
		"contactInformation": msgs.ContactTooShort,
		"userRights":         msgs.PracticeTooShort,
	}, fields)
}

func TestCheckFormCountsRunes(t *testing.T) {
	msgs := i18n.For("tr")
	req := contract.GenerationRequest{
		CompanyName: "Şİ", WebsiteURL: "http://örnek.com.tr", EffectiveDate: "x",
		ContactInformation: "İletişim: bilgi@örnek.com",
		DataCollectionPractices: "çerezler ve IP adresi", DataUsagePractices: "hizmet sunumu ve iyileştirme",
		DataSharingPractices: "yasal zorunluluklar dışında yok", DataSecurityMeasures: "şifreleme ve erişim kontrolü",
		UserRights: "erişim, düzeltme ve silme hakkı",
	}
	assert.Empty(t, CheckForm(req, msgs))
}
