// Package prompts holds the prompt templates sent to the generator.
//
// Templates are flat: the only construct is a {{{name}}} placeholder that is
// replaced by the input field of the same name. Conditionals, loops and
// partials are rejected when a template is parsed.
package prompts

import (
	"embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

//go:embed templates/*.md
var files embed.FS

var (
	placeholderRE = regexp.MustCompile(`\{\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}\}`)
	blockRE       = regexp.MustCompile(`\{\{\s*(#|/|\^|>|else\b)`)
)

// Template is a parsed prompt.
type Template struct {
	Name string
	Text string

	placeholders []string
}

// Parse checks text for anything other than flat placeholders.
func Parse(name, text string) (*Template, error) {
	if loc := blockRE.FindStringIndex(text); loc != nil {
		return nil, fmt.Errorf("template %s: block syntax %q is not allowed", name, text[loc[0]:loc[1]])
	}

	rest := placeholderRE.ReplaceAllString(text, "")
	if strings.Contains(rest, "{{") || strings.Contains(rest, "}}") {
		return nil, fmt.Errorf("template %s: only {{{name}}} placeholders are allowed", name)
	}

	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderRE.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}

	return &Template{Name: name, Text: text, placeholders: names}, nil
}

// Placeholders returns the placeholder names in order of first use.
func (t *Template) Placeholders() []string {
	out := make([]string, len(t.placeholders))
	copy(out, t.placeholders)
	return out
}

// MissingFieldsError lists placeholders that had no value.
type MissingFieldsError struct {
	Template string
	Fields   []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("template %s: no value for %s", e.Template, strings.Join(e.Fields, ", "))
}

// Render substitutes every placeholder in one pass. Substituted values are
// not scanned again, so input that happens to contain braces stays literal.
func (t *Template) Render(fields map[string]string) (string, error) {
	var missing []string
	for _, name := range t.placeholders {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &MissingFieldsError{Template: t.Name, Fields: missing}
	}

	out := placeholderRE.ReplaceAllStringFunc(t.Text, func(m string) string {
		name := placeholderRE.FindStringSubmatch(m)[1]
		return fields[name]
	})
	return strings.TrimSpace(out), nil
}

// Load parses an embedded template by file stem.
func Load(name string) (*Template, error) {
	data, err := files.ReadFile("templates/" + name + ".md")
	if err != nil {
		return nil, fmt.Errorf("unknown template %s: %w", name, err)
	}
	return Parse(name, string(data))
}

func mustLoad(name string) *Template {
	t, err := Load(name)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	GeneratePolicy  = mustLoad("generate_policy")
	SummarizePolicy = mustLoad("summarize_policy")
	SuggestTemplate = mustLoad("suggest_template")

	output = mustLoad("output")
)

// OutputInstruction is the system prompt asking for JSON matching schema.
func OutputInstruction(schema string) string {
	s, _ := output.Render(map[string]string{"schema": schema})
	return s
}
