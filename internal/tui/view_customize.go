package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// fieldRows is roughly how many lines one form field takes on screen.
const fieldRows = 5

func (a *App) renderCustomize() string {
	s := a.state
	var b strings.Builder

	name := ""
	if s.wiz.TemplateID != nil {
		name = *s.wiz.TemplateID
		if t := s.catalog.Get(name); t != nil {
			name = t.Name
		}
	}
	title := styleTitle.Render("Customize: " + name)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	if n := a.renderNotice(); n != "" {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, n))
		b.WriteString("\n\n")
	}

	first, last := a.visibleFields()
	var rows []string
	if first > 0 {
		rows = append(rows, styleSubtitle.Render("  ..."))
	}
	for i := first; i < last; i++ {
		f := s.form.fields[i]
		label := styleSubtitle.Render(f.label)
		if i == s.form.focus {
			label = styleSelected.Render(f.label)
		}
		rows = append(rows, label, f.view())
		if msg, ok := s.formErrors[f.key]; ok {
			rows = append(rows, styleFieldError.Render(msg))
		}
		rows = append(rows, "")
	}
	if last < len(s.form.fields) {
		rows = append(rows, styleSubtitle.Render("  ..."))
	}

	box := styleBox.Copy().
		Width(min(72, max(30, a.width-4))).
		BorderForeground(colorPrimary).
		Render(strings.TrimRight(strings.Join(rows, "\n"), "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, box))
	b.WriteString("\n\n")

	status := styleStatusBar.Render("[Tab/Shift+Tab] Move  [Ctrl+S] Generate  [Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return a.centerVertically(b.String())
}

// visibleFields returns the window of fields around the focused one that
// fits the terminal.
func (a *App) visibleFields() (int, int) {
	total := len(a.state.form.fields)
	fit := total
	if a.height > 0 {
		fit = max(1, (a.height-10)/fieldRows)
	}
	if fit >= total {
		return 0, total
	}

	first := a.state.form.focus - fit/2
	first = max(0, min(first, total-fit))
	return first, first + fit
}

func (a *App) renderNotice() string {
	n := a.state.wiz.Notice
	if n == nil {
		return ""
	}
	style := styleNoticeOK
	if n.Failure {
		style = styleNoticeFail
	}
	return style.Width(min(72, max(30, a.width-4))).Render(n.Title + "\n" + n.Description)
}
