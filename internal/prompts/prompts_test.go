package prompts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRejectsBlockSyntax(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"if", "{{#if companyName}}x{{/if}}"},
		{"each", "{{#each items}}{{this}}{{/each}}"},
		{"inverse", "{{^ok}}no{{/ok}}"},
		{"else", "{{else}}"},
		{"partial", "{{> header}}"},
		{"double brace", "Hello {{name}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("t", tt.text)
			assert.Error(t, err)
		})
	}
}

func TestPlaceholdersInOrder(t *testing.T) {
	tpl, err := Parse("t", "{{{b}}} and {{{ a }}} then {{{b}}}")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, tpl.Placeholders())
}

func TestRenderSubstitutesOnce(t *testing.T) {
	tpl, err := Parse("t", "Name: {{{name}}}\nSite: {{{site}}}")
	require.NoError(t, err)

	out, err := tpl.Render(map[string]string{"name": "{{{site}}}", "site": "https://acme.com"})
	require.NoError(t, err)
	assert.Equal(t, "Name: {{{site}}}\nSite: https://acme.com", out)
}

func TestRenderMissingField(t *testing.T) {
	tpl, err := Parse("t", "{{{a}}} {{{b}}} {{{c}}}")
	require.NoError(t, err)

	_, err = tpl.Render(map[string]string{"b": "x"})
	require.Error(t, err)

	var mf *MissingFieldsError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, []string{"a", "c"}, mf.Fields)
}

func TestEmbeddedTemplates(t *testing.T) {
	assert.Equal(t, []string{
		"companyName", "websiteURL", "dataCollectionPractices", "dataUsagePractices",
		"dataSharingPractices", "dataSecurityMeasures", "userRights", "contactInformation", "effectiveDate",
	}, GeneratePolicy.Placeholders())
	assert.Equal(t, []string{"privacyPolicyText"}, SummarizePolicy.Placeholders())
	assert.Equal(t, []string{"businessType", "dataHandlingPractices"}, SuggestTemplate.Placeholders())

	instr := OutputInstruction(`{"type":"object"}`)
	assert.Contains(t, instr, `{"type":"object"}`)
	assert.NotContains(t, instr, "{{{")
}
