package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	for _, lang := range []string{"en", "tr", "tr-TR", "de", ""} {
		t.Run(lang, func(t *testing.T) {
			c, err := Load(lang, "")
			require.NoError(t, err)
			require.Equal(t, 3, c.Count())

			ids := make([]string, 0, 3)
			for _, tpl := range c.All() {
				ids = append(ids, tpl.ID)
				assert.True(t, tpl.Builtin)
				assert.NotEmpty(t, tpl.Name)
				for _, v := range []string{
					tpl.Defaults.DataCollectionPractices, tpl.Defaults.DataUsagePractices,
					tpl.Defaults.DataSharingPractices, tpl.Defaults.DataSecurityMeasures, tpl.Defaults.UserRights,
				} {
					assert.GreaterOrEqual(t, len([]rune(v)), 20, "default %q too short for the form check", v)
				}
			}
			assert.Equal(t, []string{"ecommerce", "saas", "blog"}, ids)
		})
	}
}

func TestTurkishNames(t *testing.T) {
	c, err := Load("tr", "")
	require.NoError(t, err)
	assert.Equal(t, "E-Ticaret Sitesi", c.Get("ecommerce").Name)
	assert.Equal(t, "Blog veya İçerik Sitesi", c.Get("blog").Name)
}

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name, "TEMPLATE.md"), []byte(content), 0644))
}

func TestUserTemplates(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "Mobile App", "---\nname: Mobile App\ndefaults:\n  userRights: Delete your account from settings at any time.\n---\nFor iOS and Android apps.\n")
	writeTemplate(t, dir, "saas", "---\nid: saas\nname: Our SaaS\n---\n")
	writeTemplate(t, dir, "broken", "no front matter here\n")

	c, err := Load("en", dir)
	require.Error(t, err, "broken template is reported")
	assert.Contains(t, err.Error(), "broken")

	require.Equal(t, 4, c.Count())
	mobile := c.Get("mobile-app")
	require.NotNil(t, mobile)
	assert.Equal(t, "For iOS and Android apps.", mobile.Description)
	assert.False(t, mobile.Builtin)

	// A user template overrides the built-in with the same id, in place.
	assert.Equal(t, "Our SaaS", c.All()[1].Name)
}

func TestUnusableIDIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "symbols", "---\nid: \"!!!\"\nname: Nothing\n---\n")
	writeTemplate(t, dir, "___", "---\nname: Underscores\n---\n")

	c, err := Load("en", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"!!!"`)
	assert.Contains(t, err.Error(), `"___"`)

	assert.Equal(t, 3, c.Count())
	assert.Nil(t, c.Get(""))
	for _, tmpl := range c.All() {
		assert.NotEmpty(t, tmpl.ID)
	}
}

func TestMissingDirIsFine(t *testing.T) {
	c, err := Load("en", filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Count())
}

func TestMatch(t *testing.T) {
	c, err := Load("en", "")
	require.NoError(t, err)

	tests := []struct {
		suggestion string
		want       string
	}{
		{"saas", "saas"},
		{"SaaS Application", "saas"},
		{"I recommend the E-Commerce Store template.", "ecommerce"},
		{"A blog template fits best", "blog"},
		{"a healthcare portal template", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.suggestion, func(t *testing.T) {
			got := c.Match(tt.suggestion)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestPrefill(t *testing.T) {
	c, err := Load("en", "")
	require.NoError(t, err)

	req := c.Get("blog").Prefill(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2006-01-02")
	assert.Equal(t, "2024-01-01", req.EffectiveDate)
	assert.Empty(t, req.CompanyName)
	assert.Equal(t, c.Get("blog").Defaults.UserRights, req.UserRights)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Load("en", dir)
	require.NoError(t, err)

	tpl := &Template{ID: "My Shop", Name: "My Shop", Defaults: c.Get("ecommerce").Defaults}
	require.NoError(t, c.Save(tpl))
	assert.Equal(t, "my-shop", tpl.ID)

	data, err := os.ReadFile(filepath.Join(dir, "my-shop", "TEMPLATE.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\n"))

	again, err := Load("en", dir)
	require.NoError(t, err)
	require.NotNil(t, again.Get("my-shop"))
	assert.Equal(t, tpl.Defaults, again.Get("my-shop").Defaults)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "my-cool-app", SanitizeID("  My Cool_App!! "))
	assert.Equal(t, "a-b", SanitizeID("a---b"))
}
