// Package catalog lists the policy templates a user can start from: the
// built-in ones shipped with the binary and any TEMPLATE.md files under the
// user's templates directory.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

//go:embed builtin
var builtinFS embed.FS

// Catalog is an ordered set of templates. Built-ins come first in their
// shipped order, then user templates by id.
type Catalog struct {
	templates []*Template
	byID      map[string]*Template
	dir       string
}

// DefaultDir is ~/.config/policygen/templates.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "policygen", "templates")
}

var builtinOrder = []string{"ecommerce", "saas", "blog"}

// Load builds the catalog for lang. dir may be empty or missing; a user
// template with a built-in's id replaces it. Invalid user templates are
// skipped and reported in the returned error alongside a usable catalog.
func Load(lang, dir string) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Template), dir: dir}

	for _, id := range builtinOrder {
		t, err := loadBuiltin(builtinLang(lang), id)
		if err != nil {
			return nil, err
		}
		c.add(t)
	}

	if dir == "" {
		return c, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}

	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		p := filepath.Join(dir, entry.Name(), "TEMPLATE.md")
		f, err := os.Open(p)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		t, err := Parse(f)
		f.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}

		// Use directory name as fallback if no id in frontmatter
		if t.ID == "" {
			t.ID = entry.Name()
		}
		raw := t.ID
		t.ID = SanitizeID(raw)
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id %q has no usable characters", p, raw))
			continue
		}
		if t.Name == "" {
			t.Name = t.ID
		}
		t.Path = p
		c.add(t)
	}

	return c, errors.Join(errs...)
}

func builtinLang(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "en"
	}
	if base, _ := tag.Base(); base.String() == "tr" {
		return "tr"
	}
	return "en"
}

func loadBuiltin(lang, id string) (*Template, error) {
	f, err := builtinFS.Open(path.Join("builtin", lang, id+".md"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("builtin %s/%s: %w", lang, id, err)
	}
	t.Builtin = true
	return t, nil
}

func (c *Catalog) add(t *Template) {
	if old, ok := c.byID[t.ID]; ok {
		for i, existing := range c.templates {
			if existing == old {
				c.templates[i] = t
			}
		}
		c.byID[t.ID] = t
		return
	}
	c.templates = append(c.templates, t)
	c.byID[t.ID] = t
}

// Get returns a template by id
func (c *Catalog) Get(id string) *Template {
	if c == nil {
		return nil
	}
	return c.byID[id]
}

// All returns the templates in display order.
func (c *Catalog) All() []*Template {
	if c == nil {
		return nil
	}
	out := make([]*Template, len(c.templates))
	copy(out, c.templates)
	return out
}

func (c *Catalog) Count() int {
	if c == nil {
		return 0
	}
	return len(c.templates)
}

// Dir returns the user templates directory
func (c *Catalog) Dir() string {
	return c.dir
}

// Match finds the template a free-text suggestion refers to: an exact id
// first, then an id or name mentioned anywhere in the text.
func (c *Catalog) Match(suggestion string) *Template {
	s := strings.ToLower(strings.TrimSpace(suggestion))
	if s == "" || c == nil {
		return nil
	}
	if t := c.byID[SanitizeID(s)]; t != nil {
		return t
	}
	for _, t := range c.templates {
		if strings.Contains(s, strings.ToLower(t.Name)) {
			return t
		}
	}
	for _, t := range c.templates {
		if strings.Contains(s, t.ID) {
			return t
		}
	}
	return nil
}

// Save writes t as <dir>/<id>/TEMPLATE.md.
func (c *Catalog) Save(t *Template) error {
	if c.dir == "" {
		return fmt.Errorf("no templates directory")
	}
	t.ID = SanitizeID(t.ID)
	if t.ID == "" {
		return fmt.Errorf("template id is empty")
	}

	dir := filepath.Join(c.dir, t.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	p := filepath.Join(dir, "TEMPLATE.md")
	if err := os.WriteFile(p, data, 0644); err != nil {
		return err
	}
	t.Path = p
	t.Builtin = false
	c.add(t)
	return nil
}

