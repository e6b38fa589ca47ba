package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"en", english.SummaryFailed},
		{"en-GB", english.SummaryFailed},
		{"tr", "Özet oluşturulurken bir hata oluştu."},
		{"tr-TR", "Özet oluşturulurken bir hata oluştu."},
		{"", english.SummaryFailed},
		{"not a tag!", english.SummaryFailed},
		{"ja", english.SummaryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, For(tt.lang).SummaryFailed)
		})
	}
}

func TestDateLayout(t *testing.T) {
	assert.Equal(t, "02.01.2006", For("tr").DateLayout())
	assert.Equal(t, "January 2, 2006", For("en").DateLayout())
}

func TestResultStrings(t *testing.T) {
	for _, m := range supported {
		assert.NotEmpty(t, m.SummaryHeading)
		assert.NotEmpty(t, m.Generating)
		assert.NotEmpty(t, m.Summarizing)
		assert.NotEmpty(t, m.FileName)
	}
	assert.Equal(t, "gizlilik-politikasi.txt", For("tr").FileName)
	assert.Equal(t, "Özet", For("tr-TR").SummaryHeading)
	assert.Equal(t, "privacy-policy.txt", For("en").FileName)
}
