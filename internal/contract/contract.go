// Package contract defines the records exchanged with the generator and the
// JSON Schemas each of them must satisfy at the boundary.
package contract

import (
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sant0-9/policygen/internal/failure"
)

// GenerationRequest is the questionnaire a policy is generated from.
type GenerationRequest struct {
	CompanyName             string `json:"companyName" yaml:"companyName"`
	WebsiteURL              string `json:"websiteURL" yaml:"websiteURL"`
	DataCollectionPractices string `json:"dataCollectionPractices" yaml:"dataCollectionPractices"`
	DataUsagePractices      string `json:"dataUsagePractices" yaml:"dataUsagePractices"`
	DataSharingPractices    string `json:"dataSharingPractices" yaml:"dataSharingPractices"`
	DataSecurityMeasures    string `json:"dataSecurityMeasures" yaml:"dataSecurityMeasures"`
	UserRights              string `json:"userRights" yaml:"userRights"`
	ContactInformation      string `json:"contactInformation" yaml:"contactInformation"`
	EffectiveDate           string `json:"effectiveDate" yaml:"effectiveDate"`
}

type GenerationResult struct {
	PrivacyPolicy string `json:"privacyPolicy"`
}

type SummaryRequest struct {
	PrivacyPolicyText string `json:"privacyPolicyText"`
}

type SummaryResult struct {
	Summary string `json:"summary"`
}

// SuggestionRequest describes a business well enough to pick a template.
type SuggestionRequest struct {
	BusinessType          string `json:"businessType"`
	DataHandlingPractices string `json:"dataHandlingPractices"`
}

type SuggestionResult struct {
	TemplateSuggestion string `json:"templateSuggestion"`
	Reason             string `json:"reason"`
}

// Contract is a named JSON Schema. The schema is compiled on first use.
type Contract struct {
	Name   string
	Schema map[string]any

	once     sync.Once
	compiled *gojsonschema.Schema
	err      error
}

func newContract(name string, schema map[string]any) *Contract {
	return &Contract{Name: name, Schema: schema}
}

func (c *Contract) compile() (*gojsonschema.Schema, error) {
	c.once.Do(func() {
		c.compiled, c.err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(c.Schema))
	})
	return c.compiled, c.err
}

// Check returns every field of v that fails the contract. The error is
// non-nil only when v or the schema cannot be evaluated at all.
func (c *Contract) Check(v any) ([]failure.FieldError, error) {
	schema, err := c.compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", c.Name, err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	fields := make([]failure.FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		fields = append(fields, failure.FieldError{
			Field:   fieldName(desc),
			Message: desc.Description(),
		})
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Field < fields[j].Field
	})
	return fields, nil
}

// required and additionalProperties report against the parent object;
// the offending key is in the details.
func fieldName(desc gojsonschema.ResultError) string {
	if p, ok := desc.Details()["property"].(string); ok && p != "" {
		return p
	}
	return desc.Field()
}

// Validate checks an input value. Failures are CONTRACT_VIOLATION.
func Validate(c *Contract, v any) error {
	fields, err := c.Check(v)
	if err != nil {
		return failure.ContractViolation(c.Name, failure.FieldError{Message: err.Error()})
	}
	if len(fields) > 0 {
		return failure.ContractViolation(c.Name, fields...)
	}
	return nil
}

// ValidateOutput checks a decoded generator response. Failures are
// OUTPUT_CONTRACT_VIOLATION.
func ValidateOutput(c *Contract, v any) error {
	fields, err := c.Check(v)
	if err != nil {
		return failure.OutputContractViolation(c.Name, err)
	}
	if len(fields) > 0 {
		return failure.OutputContractViolation(c.Name, nil, fields...)
	}
	return nil
}
