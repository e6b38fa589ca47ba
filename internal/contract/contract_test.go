package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/policygen/internal/failure"
)

func validRequest() GenerationRequest {
	return GenerationRequest{
		CompanyName:             "Acme",
		WebsiteURL:              "https://acme.com",
		DataCollectionPractices: "emails, IP addresses",
		DataUsagePractices:      "order processing",
		DataSharingPractices:    "payment processors only",
		DataSecurityMeasures:    "TLS everywhere",
		UserRights:              "access, deletion",
		ContactInformation:      "privacy@acme.com",
		EffectiveDate:           "2024-01-01",
	}
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var fe *failure.Error
	require.True(t, errors.As(err, &fe), "want *failure.Error, got %T", err)
	var names []string
	for _, f := range fe.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestValidateAcceptsCompleteRequest(t *testing.T) {
	assert.NoError(t, Validate(GenerationInput, validRequest()))
}

func TestValidateRejectsEachMissingField(t *testing.T) {
	tests := []struct {
		field string
		clear func(r *GenerationRequest)
	}{
		{"companyName", func(r *GenerationRequest) { r.CompanyName = "" }},
		{"websiteURL", func(r *GenerationRequest) { r.WebsiteURL = "" }},
		{"dataCollectionPractices", func(r *GenerationRequest) { r.DataCollectionPractices = "" }},
		{"dataUsagePractices", func(r *GenerationRequest) { r.DataUsagePractices = "" }},
		{"dataSharingPractices", func(r *GenerationRequest) { r.DataSharingPractices = "" }},
		{"dataSecurityMeasures", func(r *GenerationRequest) { r.DataSecurityMeasures = "" }},
		{"userRights", func(r *GenerationRequest) { r.UserRights = "" }},
		{"contactInformation", func(r *GenerationRequest) { r.ContactInformation = "" }},
		{"effectiveDate", func(r *GenerationRequest) { r.EffectiveDate = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			req := validRequest()
			tt.clear(&req)

			err := Validate(GenerationInput, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, failure.ErrContractViolation)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}
}

func TestValidateRejectsBlankAndBadURL(t *testing.T) {
	req := validRequest()
	req.UserRights = "   \n\t"
	req.WebsiteURL = "acme dot com"

	err := Validate(GenerationInput, req)
	require.Error(t, err)
	names := fieldsOf(t, err)
	assert.Contains(t, names, "userRights")
	assert.Contains(t, names, "websiteURL")
}

func TestValidateMapMissingKeyAndExtraKey(t *testing.T) {
	err := Validate(SummaryInput, map[string]any{"policy": "text"})
	require.Error(t, err)
	names := fieldsOf(t, err)
	assert.Contains(t, names, "privacyPolicyText")
	assert.Contains(t, names, "policy")
}

func TestValidateOutput(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{"ok", map[string]any{"privacyPolicy": "text"}, false},
		{"empty string is shape-valid", map[string]any{"privacyPolicy": ""}, false},
		{"extra keys allowed", map[string]any{"privacyPolicy": "x", "notes": "y"}, false},
		{"missing", map[string]any{"policy": "x"}, true},
		{"wrong type", map[string]any{"privacyPolicy": 42}, true},
		{"not an object", []any{"x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutput(GenerationOutput, tt.value)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, failure.ErrOutputContractViolation)
			assert.False(t, errors.Is(err, failure.ErrContractViolation))
		})
	}
}

func TestSuggestionContracts(t *testing.T) {
	assert.NoError(t, Validate(SuggestionInput, SuggestionRequest{BusinessType: "shop", DataHandlingPractices: "orders"}))
	assert.Error(t, Validate(SuggestionInput, SuggestionRequest{BusinessType: "shop"}))
	assert.Error(t, ValidateOutput(SuggestionOutput, map[string]any{"templateSuggestion": "saas"}))
}
