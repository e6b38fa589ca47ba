package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderResult() string {
	s := a.state
	msgs := s.wiz.Messages()
	var b strings.Builder

	if s.run.Request.CompanyName != "" {
		asked := styleSubtitle.Render(truncate(s.run.Request.CompanyName+"  "+s.run.Request.WebsiteURL, 70))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, asked))
		b.WriteString("\n\n")
	}

	if n := a.renderNotice(); n != "" {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, n))
		b.WriteString("\n\n")
	}

	if s.wiz.Policy == nil {
		waiting := s.spinner.View() + " " + msgs.Generating
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, waiting))
		b.WriteString("\n\n")
		status := styleStatusBar.Render("[n] Start over  [Ctrl+C] Quit")
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))
		return a.centerVertically(b.String())
	}

	resultBox := styleBox.Copy().
		Width(s.viewport.Width + 2).
		BorderForeground(colorPrimary).
		Render(s.viewport.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, resultBox))
	b.WriteString("\n")

	if s.wiz.AwaitingSummary() {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, s.spinner.View()+" "+msgs.Summarizing))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	status := styleStatusBar.Render("[c] Copy  [y] Copy summary  [d] Download  [n] New policy  [x] Dismiss  [q] Quit")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return a.centerVertically(b.String())
}
