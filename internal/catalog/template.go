package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sant0-9/policygen/internal/contract"
)

// Defaults pre-fill the practice fields of the questionnaire.
type Defaults struct {
	DataCollectionPractices string `yaml:"dataCollectionPractices" json:"dataCollectionPractices"`
	DataUsagePractices      string `yaml:"dataUsagePractices" json:"dataUsagePractices"`
	DataSharingPractices    string `yaml:"dataSharingPractices" json:"dataSharingPractices"`
	DataSecurityMeasures    string `yaml:"dataSecurityMeasures" json:"dataSecurityMeasures"`
	UserRights              string `yaml:"userRights" json:"userRights"`
}

// Template is a starting point for a policy.
type Template struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Defaults    Defaults `yaml:"defaults" json:"defaults"`

	Path    string `yaml:"-" json:"-"` // empty for built-ins
	Builtin bool   `yaml:"-" json:"builtin"`
}

// Prefill returns a request carrying the template defaults and today's date.
// Company, website and contact details are left for the user.
func (t *Template) Prefill(now time.Time, dateLayout string) contract.GenerationRequest {
	return contract.GenerationRequest{
		DataCollectionPractices: t.Defaults.DataCollectionPractices,
		DataUsagePractices:      t.Defaults.DataUsagePractices,
		DataSharingPractices:    t.Defaults.DataSharingPractices,
		DataSecurityMeasures:    t.Defaults.DataSecurityMeasures,
		UserRights:              t.Defaults.UserRights,
		EffectiveDate:           now.Format(dateLayout),
	}
}

// Parse reads a TEMPLATE.md document. Only the YAML front matter is
// meaningful; a markdown body is used as the description when the front
// matter has none.
func Parse(r io.Reader) (*Template, error) {
	var frontmatter, body strings.Builder
	scanner := bufio.NewScanner(r)
	inFrontmatter := false
	done := false
	lineCount := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineCount++

		if lineCount == 1 && strings.TrimSpace(line) == "---" {
			inFrontmatter = true
			continue
		}

		switch {
		case inFrontmatter && !done:
			if strings.TrimSpace(line) == "---" {
				done = true // End of frontmatter
				continue
			}
			frontmatter.WriteString(line)
			frontmatter.WriteString("\n")
		default:
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !inFrontmatter || !done {
		return nil, fmt.Errorf("missing front matter")
	}

	var t Template
	if err := yaml.Unmarshal([]byte(frontmatter.String()), &t); err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}
	if t.Description == "" {
		t.Description = strings.TrimSpace(body.String())
	}
	return &t, nil
}

// Marshal renders t in the TEMPLATE.md format read by Parse.
func Marshal(t *Template) ([]byte, error) {
	fm, err := yaml.Marshal(t)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	return buf.Bytes(), nil
}

var (
	invalidIDChars = regexp.MustCompile(`[^a-z0-9-]`)
	repeatedDashes = regexp.MustCompile(`-+`)
)

// SanitizeID turns a free-form name into a template id.
func SanitizeID(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "_", "-")
	name = invalidIDChars.ReplaceAllString(name, "")
	name = repeatedDashes.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}
