package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderHelp() string {
	var b strings.Builder

	// Title
	title := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("Help")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	steps := []string{
		"  1. Select     pick the template closest to your business",
		"  2. Customize  review the pre-filled answers, add your details",
		"  3. Result     read, copy or download the policy and summary",
	}
	stepsBox := styleBox.Copy().
		Width(66).
		Render(strings.Join(steps, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, stepsBox))
	b.WriteString("\n\n")

	shortcuts := []string{
		"  s              Suggest a template (select screen)",
		"  p              Settings (select screen)",
		"  Tab            Next form field",
		"  Ctrl+S         Generate the policy",
		"  c / y          Copy policy / summary",
		"  d              Save the policy to " + a.state.wiz.Messages().FileName,
		"  n              Start a new policy",
		"  Esc            Go back",
		"  Ctrl+C         Quit",
	}

	shortcutsTitle := styleSubtitle.Render("Keyboard Shortcuts")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, shortcutsTitle))
	b.WriteString("\n\n")

	shortcutsBox := styleBox.Copy().
		Width(66).
		Render(strings.Join(shortcuts, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, shortcutsBox))
	b.WriteString("\n\n")

	instructions := styleStatusBar.Render("[Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}
