package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sant0-9/policygen/internal/config"
	"github.com/sant0-9/policygen/internal/i18n"
	"github.com/sant0-9/policygen/internal/llm"
	"github.com/sant0-9/policygen/internal/llm/llmtest"
)

const answers = `companyName: Acme Inc
websiteURL: https://acme.com
dataCollectionPractices: Names, email addresses and order history.
dataUsagePractices: Fulfilling orders and answering support requests.
dataSharingPractices: Payment processors and couriers, nothing else.
dataSecurityMeasures: TLS everywhere and encrypted nightly backups.
userRights: Access, correction and deletion on request by email.
contactInformation: privacy@acme.com
effectiveDate: January 1, 2025
`

// setup points the CLI at a scripted provider and an isolated home.
func setup(t *testing.T, p *llmtest.Provider) *bytes.Buffer {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg = config.DefaultConfig()
	cfg.APIKey = "test-key"
	log = zap.NewNop()
	serverURL = ""

	orig := newProvider
	newProvider = func(context.Context, *config.Config) (llm.Provider, error) { return p, nil }

	t.Cleanup(func() {
		newProvider = orig
		answersPath, outPath, templateID = "", "", ""
		withSummary, forceWrite, skipFormRule = false, false, false
	})
	return new(bytes.Buffer)
}

func command(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetContext(context.Background())
	return cmd
}

func writeAnswers(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestGenerateWithSummary(t *testing.T) {
	p := llmtest.New(
		llmtest.Reply{Content: `{"privacyPolicy":"ACME PRIVACY POLICY"}`},
		llmtest.Reply{Content: `{"summary":"Acme collects little."}`},
	)
	out := setup(t, p)
	answersPath = writeAnswers(t, answers)
	withSummary = true

	require.NoError(t, runGenerate(command(out), nil))

	assert.Contains(t, out.String(), "ACME PRIVACY POLICY")
	assert.Contains(t, out.String(), "--- Summary ---\nAcme collects little.")
	assert.Len(t, p.Calls(), 2)
	assert.Contains(t, p.LastPrompt(), "ACME PRIVACY POLICY")
}

func TestGenerateWithoutSummaryMakesOneCall(t *testing.T) {
	p := llmtest.Text(`{"privacyPolicy":"ACME PRIVACY POLICY"}`)
	out := setup(t, p)
	answersPath = writeAnswers(t, answers)

	require.NoError(t, runGenerate(command(out), nil))

	assert.Len(t, p.Calls(), 1)
	assert.NotContains(t, out.String(), "Summary")
}

func TestGenerateToFileNeverOverwrites(t *testing.T) {
	p := llmtest.Text(`{"privacyPolicy":"ACME PRIVACY POLICY"}`)
	out := setup(t, p)
	answersPath = writeAnswers(t, answers)

	dir := t.TempDir()
	outPath = filepath.Join(dir, "policy.txt")
	require.NoError(t, os.WriteFile(outPath, []byte("keep me"), 0644))

	require.NoError(t, runGenerate(command(out), nil))

	kept, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(kept))

	written, err := os.ReadFile(filepath.Join(dir, "policy (1).txt"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "ACME PRIVACY POLICY")
}

func TestGenerateIntoDirectoryUsesLocalizedName(t *testing.T) {
	p := llmtest.Text(`{"privacyPolicy":"ACME GIZLILIK POLITIKASI"}`)
	out := setup(t, p)
	cfg.Language = "tr"
	answersPath = writeAnswers(t, answers)
	dir := t.TempDir()
	outPath = dir

	require.NoError(t, runGenerate(command(out), nil))

	written, err := os.ReadFile(filepath.Join(dir, "gizlilik-politikasi.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "ACME GIZLILIK POLITIKASI")
}

func TestGenerateFillsFromTemplate(t *testing.T) {
	p := llmtest.Text(`{"privacyPolicy":"BLOG POLICY"}`)
	out := setup(t, p)
	answersPath = writeAnswers(t, "companyName: Jo's Blog\nwebsiteURL: https://jo.blog\ncontactInformation: jo@jo.blog.example\n")
	templateID = "blog"

	require.NoError(t, runGenerate(command(out), nil))
	assert.Contains(t, out.String(), "BLOG POLICY")
	assert.Contains(t, p.LastPrompt(), "Jo's Blog")
}

func TestGenerateRejectsIncompleteAnswers(t *testing.T) {
	p := llmtest.Text(`{"privacyPolicy":"never"}`)
	out := setup(t, p)
	answersPath = writeAnswers(t, "companyName: A\nwebsiteURL: not a url\n")

	err := runGenerate(command(out), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "companyName")
	assert.Contains(t, err.Error(), "websiteURL")
	assert.Empty(t, p.Calls())
}

func TestGenerateReportsFailure(t *testing.T) {
	p := llmtest.New(llmtest.Reply{Err: errors.New("upstream down")})
	out := setup(t, p)
	answersPath = writeAnswers(t, answers)
	cfg.Generation.Retries = 0

	err := runGenerate(command(out), nil)
	require.Error(t, err)
	assert.Equal(t, i18n.For("en").FailureDescription, err.Error())
}

func TestSuggestPrintsMatchingTemplate(t *testing.T) {
	p := llmtest.Text(`{"templateSuggestion":"SaaS Application","reason":"Subscription software."}`)
	out := setup(t, p)
	businessType, practices = "project management app", "accounts and billing"
	t.Cleanup(func() { businessType, practices = "", "" })

	require.NoError(t, runSuggest(command(out), nil))

	assert.Contains(t, out.String(), "Suggested template: SaaS Application")
	assert.Contains(t, out.String(), "--template saas")
}

func TestTemplatesAddThenList(t *testing.T) {
	out := setup(t, llmtest.Text("{}"))
	newTemplateName = "Mobile Game"
	newTemplateDesc = "Free-to-play games with ads."
	t.Cleanup(func() { newTemplateName, newTemplateDesc = "", "" })

	require.NoError(t, runTemplatesAdd(command(out), []string{"mobile-game"}))
	assert.Contains(t, out.String(), `Created template "mobile-game"`)

	out.Reset()
	require.NoError(t, runTemplates(command(out), nil))
	assert.Contains(t, out.String(), "ecommerce")
	assert.Contains(t, out.String(), "mobile-game")
	assert.Contains(t, out.String(), "Mobile Game")
}

func TestFlowsJSON(t *testing.T) {
	out := setup(t, llmtest.Text("{}"))
	flowsJSON = true
	t.Cleanup(func() { flowsJSON = false })

	require.NoError(t, flowsCmd.RunE(command(out), nil))

	var flows []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &flows))
	require.Len(t, flows, 3)
	assert.Equal(t, "generatePrivacyPolicyFromInputFlow", flows[0]["Name"])
}

func TestSummarizeFromStdin(t *testing.T) {
	p := llmtest.Text(`{"summary":"Short and sweet."}`)
	out := setup(t, p)

	cmd := command(out)
	cmd.SetIn(bytes.NewBufferString("Our policy is long."))
	require.NoError(t, runSummarize(cmd, nil))

	assert.Equal(t, "Short and sweet.\n", out.String())
	assert.Contains(t, p.LastPrompt(), "Our policy is long.")
}

func TestSummarizeEmptyInputGetsSubstitute(t *testing.T) {
	p := llmtest.Text(`{"summary":"unused"}`)
	out := setup(t, p)

	cmd := command(out)
	cmd.SetIn(bytes.NewBufferString("   "))
	require.NoError(t, runSummarize(cmd, nil))

	assert.Equal(t, i18n.For("en").SummaryFailed+"\n", out.String())
	assert.Empty(t, p.Calls())
}
