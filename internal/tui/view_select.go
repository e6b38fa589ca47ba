package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const logo = `
 ┌─┐┌─┐┬  ┬┌─┐┬ ┬┌─┐┌─┐┌┐┌
 ├─┘│ ││  ││  └┬┘│ ┬├┤ │││
 ┴  └─┘┴─┘┴└─┘ ┴ └─┘└─┘┘└┘
`

func (a *App) renderSelect() string {
	s := a.state
	var b strings.Builder

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleLogo.Render(logo)))
	b.WriteString("\n")
	subtitle := styleSubtitle.Render("Privacy policy generator. Pick a template to start from.")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, subtitle))
	b.WriteString("\n\n")

	var lines []string
	for i, t := range s.catalog.All() {
		cursor := "  "
		style := styleSubtitle
		if i == s.cursor {
			cursor = "> "
			style = styleSelected
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s%-24s %s", cursor, truncate(t.Name, 24), truncate(t.Description, 40))))
	}
	if len(lines) == 0 {
		lines = append(lines, styleSubtitle.Render("No templates available."))
	}

	list := styleBox.Copy().
		Width(min(72, max(30, a.width-4))).
		BorderForeground(colorPrimary).
		Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, list))
	b.WriteString("\n\n")

	if panel := a.renderSuggestPanel(); panel != "" {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, panel))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, a.renderConnection()))
	b.WriteString("\n")

	var status string
	if s.suggesting {
		status = styleStatusBar.Render("[Tab] Next field  [Enter] Suggest  [Esc] Close")
	} else {
		status = styleStatusBar.Render("[j/k] Navigate  [Enter] Select  [s] Suggest  [p] Settings  [?] Help  [Esc] Quit")
	}
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return a.centerVertically(b.String())
}

func (a *App) renderSuggestPanel() string {
	s := a.state
	if !s.suggesting && s.suggestion == nil && !s.suggestBusy {
		return ""
	}

	var lines []string
	if s.suggesting {
		lines = append(lines,
			styleTitle.Render("Business type"),
			s.businessType.View(),
			"",
			styleTitle.Render("Data handling practices"),
			s.practices.View(),
		)
	}

	switch {
	case s.suggestBusy:
		lines = append(lines, "", s.spinner.View()+" Finding a template...")
	case s.suggestion != nil:
		if s.suggestion.TemplateSuggestion != "" {
			lines = append(lines, "", styleSelected.Render("Suggested: "+s.suggestion.TemplateSuggestion))
		}
		if s.suggestion.Reason != "" {
			lines = append(lines, styleSubtitle.Render(s.suggestion.Reason))
		}
	}

	return styleBox.Copy().
		Width(min(72, max(30, a.width-4))).
		BorderForeground(colorSecondary).
		Render(strings.Join(lines, "\n"))
}

func (a *App) renderConnection() string {
	s := a.state
	switch {
	case s.backendError != nil:
		return styleFieldError.Render(truncate("Generator: "+s.backendError.Error(), 70))
	case s.backendReady:
		return styleStatusBar.Render(fmt.Sprintf("Generator: %s / %s", s.config.Provider, s.config.Model))
	case a.connect == nil:
		return ""
	default:
		return styleStatusBar.Render("Connecting to generator...")
	}
}

func (a *App) centerVertically(content string) string {
	lines := strings.Count(content, "\n") + 1
	padding := (a.height - lines) / 2
	if padding < 0 {
		padding = 0
	}
	return strings.Repeat("\n", padding) + content
}
