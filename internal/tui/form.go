package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sant0-9/policygen/internal/contract"
)

// formField is one questionnaire answer. Short answers use a single-line
// input, practice descriptions a textarea.
type formField struct {
	key   string
	label string
	field func(*contract.GenerationRequest) *string

	multiline bool
	input     textinput.Model
	area      textarea.Model
}

func (f *formField) value() string {
	if f.multiline {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *formField) setValue(s string) {
	if f.multiline {
		f.area.SetValue(s)
		return
	}
	f.input.SetValue(s)
}

func (f *formField) focus() tea.Cmd {
	if f.multiline {
		return f.area.Focus()
	}
	return f.input.Focus()
}

func (f *formField) blur() {
	if f.multiline {
		f.area.Blur()
		return
	}
	f.input.Blur()
}

func (f *formField) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.multiline {
		f.area, cmd = f.area.Update(msg)
	} else {
		f.input, cmd = f.input.Update(msg)
	}
	return cmd
}

func (f *formField) view() string {
	if f.multiline {
		return f.area.View()
	}
	return f.input.View()
}

type form struct {
	fields []*formField
	focus  int
}

func newForm() *form {
	short := func(key, label, placeholder string, get func(*contract.GenerationRequest) *string) *formField {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 200
		in.Width = 60
		return &formField{key: key, label: label, field: get, input: in}
	}
	long := func(key, label, placeholder string, get func(*contract.GenerationRequest) *string) *formField {
		ta := textarea.New()
		ta.Placeholder = placeholder
		ta.ShowLineNumbers = false
		ta.CharLimit = 2000
		ta.SetWidth(64)
		ta.SetHeight(3)
		return &formField{key: key, label: label, field: get, multiline: true, area: ta}
	}

	return &form{fields: []*formField{
		short("companyName", "Company name", "Acme Inc.",
			func(r *contract.GenerationRequest) *string { return &r.CompanyName }),
		short("websiteURL", "Website URL", "https://example.com",
			func(r *contract.GenerationRequest) *string { return &r.WebsiteURL }),
		long("dataCollectionPractices", "Data collection practices", "What personal data do you collect?",
			func(r *contract.GenerationRequest) *string { return &r.DataCollectionPractices }),
		long("dataUsagePractices", "Data usage practices", "How is the data used?",
			func(r *contract.GenerationRequest) *string { return &r.DataUsagePractices }),
		long("dataSharingPractices", "Data sharing practices", "Who is the data shared with?",
			func(r *contract.GenerationRequest) *string { return &r.DataSharingPractices }),
		long("dataSecurityMeasures", "Data security measures", "How is the data protected?",
			func(r *contract.GenerationRequest) *string { return &r.DataSecurityMeasures }),
		long("userRights", "User rights", "Which rights do users have over their data?",
			func(r *contract.GenerationRequest) *string { return &r.UserRights }),
		short("contactInformation", "Contact information", "privacy@example.com",
			func(r *contract.GenerationRequest) *string { return &r.ContactInformation }),
		short("effectiveDate", "Effective date", "January 1, 2025",
			func(r *contract.GenerationRequest) *string { return &r.EffectiveDate }),
	}}
}

// request collects the answers. Values are trimmed the way a user expects a
// form to behave; the contract itself never trims.
func (f *form) request() contract.GenerationRequest {
	var req contract.GenerationRequest
	for _, fld := range f.fields {
		*fld.field(&req) = strings.TrimSpace(fld.value())
	}
	return req
}

func (f *form) fill(req contract.GenerationRequest) {
	for _, fld := range f.fields {
		fld.setValue(*fld.field(&req))
	}
}

func (f *form) focusFirst() tea.Cmd {
	for _, fld := range f.fields {
		fld.blur()
	}
	f.focus = 0
	return f.fields[0].focus()
}

func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].focus()
}

// focusKey moves focus to the field named key, if there is one.
func (f *form) focusKey(key string) tea.Cmd {
	for i, fld := range f.fields {
		if fld.key == key {
			f.fields[f.focus].blur()
			f.focus = i
			return fld.focus()
		}
	}
	return nil
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	return f.fields[f.focus].update(msg)
}
