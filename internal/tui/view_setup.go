package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/policygen/internal/config"
)

// First-run steps. The endpoint step only appears for providers that need a
// base URL, the key step only for providers that need a key.
const (
	setupProvider = iota
	setupKey
	setupEndpoint
)

func (a *App) renderSetup() string {
	provider := config.GetProvider(a.state.config.Provider)

	switch a.state.setupStep {
	case setupKey:
		var link string
		if provider.SignupURL != "" {
			link = fmt.Sprintf("Get one at: %s", provider.SignupURL)
		}
		return a.setupFrame(
			fmt.Sprintf("Enter your %s API key:", provider.Name),
			link,
			a.state.apiKeyInput.View(),
			"[Enter] Continue  [Esc] Back",
		)
	case setupEndpoint:
		return a.setupFrame(
			fmt.Sprintf("Where is your %s endpoint?", provider.Name),
			"The base URL requests are sent to.",
			a.state.endpointInput.View(),
			"[Enter] Continue  [Esc] Back",
		)
	}

	lines := make([]string, len(config.Providers))
	for i, p := range config.Providers {
		row := fmt.Sprintf("[ ] %-12s %s", p.Name, p.Description)
		style := lipgloss.NewStyle().Foreground(colorMuted)
		if i == a.state.selectedProvider {
			row = fmt.Sprintf("[x] %-12s %s", p.Name, p.Description)
			style = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
		}
		lines[i] = style.Render(row)
	}
	return a.setupFrame(
		"Choose the model provider that writes your policies:",
		"",
		strings.Join(lines, "\n"),
		"[j/k] Navigate  [Enter] Select",
	)
}

func (a *App) setupFrame(title, subtitle, body, hint string) string {
	center := func(s string) string { return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, s) }

	parts := []string{
		center(styleLogo.Render(logo)),
		center(lipgloss.NewStyle().Foreground(colorWhite).Bold(true).Render(title)),
	}
	if subtitle != "" {
		parts = append(parts, center(styleSubtitle.Render(subtitle)))
	}
	parts = append(parts,
		center(styleBox.Copy().Width(60).BorderForeground(colorSecondary).Render(body)),
		center(styleStatusBar.Render(hint)),
	)
	return a.centerVertically(strings.Join(parts, "\n\n"))
}

func (a *App) handleSetupKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state

	switch s.setupStep {
	case setupProvider:
		switch {
		case key.Matches(msg, keys.Back):
			a.quitting = true
			return tea.Quit
		case key.Matches(msg, keys.Up):
			s.selectedProvider = max(0, s.selectedProvider-1)
		case key.Matches(msg, keys.Down):
			s.selectedProvider = min(len(config.Providers)-1, s.selectedProvider+1)
		case key.Matches(msg, keys.Enter):
			p := config.Providers[s.selectedProvider]
			s.config.Provider = p.ID
			s.config.SetModel(p.DefaultModel)
			s.config.BaseURL = ""
			return a.nextSetupStep(p)
		}

	case setupEndpoint:
		switch {
		case key.Matches(msg, keys.Back):
			s.endpointInput.Reset()
			s.endpointInput.Blur()
			s.setupStep = setupProvider
		case key.Matches(msg, keys.Enter):
			url := strings.TrimSpace(s.endpointInput.Value())
			if url == "" {
				return nil
			}
			s.config.BaseURL = url
			s.endpointInput.Blur()
			return a.nextSetupStep(*config.GetProvider(s.config.Provider))
		default:
			return a.updateFocused(msg)
		}

	case setupKey:
		switch {
		case key.Matches(msg, keys.Back):
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
			s.setupStep = setupProvider
		case key.Matches(msg, keys.Enter):
			s.config.APIKey = strings.TrimSpace(s.apiKeyInput.Value())
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
			return a.finishSetup()
		default:
			return a.updateFocused(msg)
		}
	}
	return nil
}

// nextSetupStep moves past the current step to the first one p still needs.
func (a *App) nextSetupStep(p config.ProviderInfo) tea.Cmd {
	s := a.state
	if p.NeedsBaseURL && s.config.BaseURL == "" {
		s.setupStep = setupEndpoint
		return s.endpointInput.Focus()
	}
	if p.NeedsAPIKey {
		s.setupStep = setupKey
		return s.apiKeyInput.Focus()
	}
	return a.finishSetup()
}

func (a *App) finishSetup() tea.Cmd {
	cfg := *a.state.config
	return func() tea.Msg {
		if err := saveConfig(&cfg); err != nil {
			return setupErrorMsg{err}
		}
		return setupCompleteMsg{}
	}
}
