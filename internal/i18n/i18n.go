// Package i18n holds the user-facing strings of the wizard and the action
// layer's substitute values.
package i18n

import "golang.org/x/text/language"

// Messages is one language's catalog.
type Messages struct {
	Tag language.Tag

	// Substitute values
	SummaryFailed    string
	SuggestionFailed string

	// Notifications
	SuccessTitle       string
	SuccessDescription string
	FailureTitle       string
	FailureDescription string
	CopiedTitle        string
	CopiedDescription  string
	SavedDescription   string

	// Result screen
	SummaryHeading string
	Generating     string
	Summarizing    string

	// FileName is the download name of a policy.
	FileName string

	// Form checks
	CompanyNameTooShort string
	InvalidURL          string
	EffectiveDateNeeded string
	ContactTooShort     string
	PracticeTooShort    string
}

var english = Messages{
	Tag:                 language.English,
	SummaryFailed:       "An error occurred while generating the summary.",
	SuggestionFailed:    "No template could be suggested right now.",
	SuccessTitle:        "Success!",
	SuccessDescription:  "Your privacy policy and its summary were generated.",
	FailureTitle:        "Something went wrong",
	FailureDescription:  "We ran into a problem while generating the policy. Please try again.",
	CopiedTitle:         "Copied!",
	CopiedDescription:   "The text was copied to the clipboard.",
	SavedDescription:    "Saved to %s",
	SummaryHeading:      "Summary",
	Generating:          "Generating your privacy policy...",
	Summarizing:         "Summarizing...",
	FileName:            "privacy-policy.txt",
	CompanyNameTooShort: "Company name must be at least 2 characters.",
	InvalidURL:          "Please enter a valid URL.",
	EffectiveDateNeeded: "Effective date is required.",
	ContactTooShort:     "Contact information must be at least 10 characters.",
	PracticeTooShort:    "This field must be at least 20 characters.",
}

var turkish = Messages{
	Tag:                 language.Turkish,
	SummaryFailed:       "Özet oluşturulurken bir hata oluştu.",
	SuggestionFailed:    "Şu anda bir şablon önerilemiyor.",
	SuccessTitle:        "Başarılı!",
	SuccessDescription:  "Gizlilik politikanız ve özeti oluşturuldu.",
	FailureTitle:        "Hata Oluştu",
	FailureDescription:  "Politika oluşturulurken bir sorunla karşılaşıldı. Lütfen tekrar deneyin.",
	CopiedTitle:         "Kopyalandı!",
	CopiedDescription:   "Metin panoya kopyalandı.",
	SavedDescription:    "%s dosyasına kaydedildi",
	SummaryHeading:      "Özet",
	Generating:          "Gizlilik politikanız oluşturuluyor...",
	Summarizing:         "Özetleniyor...",
	FileName:            "gizlilik-politikasi.txt",
	CompanyNameTooShort: "Şirket adı en az 2 karakter olmalıdır.",
	InvalidURL:          "Lütfen geçerli bir URL girin.",
	EffectiveDateNeeded: "Yürürlük tarihi zorunludur.",
	ContactTooShort:     "İletişim bilgileri en az 10 karakter olmalıdır.",
	PracticeTooShort:    "Bu alan en az 20 karakter olmalıdır.",
}

var (
	supported = []Messages{english, turkish}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Turkish})
)

// For picks the closest catalog for a BCP 47 tag such as "tr-TR". Unknown or
// empty tags get English.
func For(lang string) Messages {
	tag, err := language.Parse(lang)
	if err != nil {
		return english
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return english
	}
	return supported[idx]
}

// DateLayout is the display format for the default effective date.
func (m Messages) DateLayout() string {
	if m.Tag == language.Turkish {
		return "02.01.2006"
	}
	return "January 2, 2006"
}
