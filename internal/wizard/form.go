package wizard

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/failure"
	"github.com/sant0-9/policygen/internal/i18n"
)

const (
	minCompanyName = 2
	minContact     = 10
	minPractice    = 20
)

// CheckForm applies the questionnaire's field rules, which are stricter than
// the generation contract. An empty result means the form can be submitted.
func CheckForm(req contract.GenerationRequest, msgs i18n.Messages) []failure.FieldError {
	var errs []failure.FieldError
	add := func(field, msg string) {
		errs = append(errs, failure.FieldError{Field: field, Message: msg})
	}

	if runes(req.CompanyName) < minCompanyName {
		add("companyName", msgs.CompanyNameTooShort)
	}
	if !validURL(req.WebsiteURL) {
		add("websiteURL", msgs.InvalidURL)
	}
	if runes(req.EffectiveDate) < 1 {
		add("effectiveDate", msgs.EffectiveDateNeeded)
	}
	if runes(req.ContactInformation) < minContact {
		add("contactInformation", msgs.ContactTooShort)
	}

	practices := []struct {
		field string
		value string
	}{
		{"dataCollectionPractices", req.DataCollectionPractices},
		{"dataUsagePractices", req.DataUsagePractices},
		{"dataSharingPractices", req.DataSharingPractices},
		{"dataSecurityMeasures", req.DataSecurityMeasures},
		{"userRights", req.UserRights},
	}
	for _, p := range practices {
		if runes(p.value) < minPractice {
			add(p.field, msgs.PracticeTooShort)
		}
	}

	return errs
}

func runes(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

func validURL(s string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
