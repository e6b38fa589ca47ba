package contract

// nonBlank is a string with at least one non-whitespace character.
func nonBlank(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"minLength":   1,
		"pattern":     `\S`,
		"description": description,
	}
}

func str(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": description,
	}
}

func object(props map[string]any, strict bool) map[string]any {
	required := make([]any, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": !strict,
	}
}

func uri(description string) map[string]any {
	s := nonBlank(description)
	s["format"] = "uri"
	return s
}

var (
	GenerationInput = newContract("generatePolicy.input", object(map[string]any{
		"companyName":             nonBlank("The name of the company."),
		"websiteURL":              uri("The URL of the website."),
		"dataCollectionPractices": nonBlank("Description of the data collection practices."),
		"dataUsagePractices":      nonBlank("Description of the data usage practices."),
		"dataSharingPractices":    nonBlank("Description of the data sharing practices."),
		"dataSecurityMeasures":    nonBlank("Description of the data security measures."),
		"userRights":              nonBlank("Description of user rights regarding their data."),
		"contactInformation":      nonBlank("Contact information for privacy inquiries."),
		"effectiveDate":           nonBlank("The effective date of the privacy policy."),
	}, true))

	GenerationOutput = newContract("generatePolicy.output", object(map[string]any{
		"privacyPolicy": str("The generated privacy policy."),
	}, false))

	SummaryInput = newContract("summarizeText.input", object(map[string]any{
		"privacyPolicyText": nonBlank("The full text of the privacy policy to summarize."),
	}, true))

	SummaryOutput = newContract("summarizeText.output", object(map[string]any{
		"summary": str("A concise summary of the privacy policy."),
	}, false))

	SuggestionInput = newContract("suggestTemplate.input", object(map[string]any{
		"businessType":          nonBlank("The type of business (e.g., e-commerce, SaaS, blog)."),
		"dataHandlingPractices": nonBlank("Description of the data handling practices of the business."),
	}, true))

	SuggestionOutput = newContract("suggestTemplate.output", object(map[string]any{
		"templateSuggestion": str("The suggested privacy policy template."),
		"reason":             str("The reasoning behind the template suggestion."),
	}, false))
)
