package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sant0-9/policygen/internal/catalog"
	"github.com/sant0-9/policygen/internal/config"
	"github.com/sant0-9/policygen/internal/i18n"
	"github.com/sant0-9/policygen/internal/wizard"
)

func (a *App) renderSettings() string {
	cfg := a.state.config
	provider := config.GetProvider(cfg.Provider)

	switch a.state.settingsMode {
	case "provider":
		names := make([]string, len(config.Providers))
		for i, p := range config.Providers {
			names[i] = p.Name
		}
		return a.panel("Select Provider", "", pickList(names, a.state.settingsSelected, ""),
			"[Up/Down] Navigate  [Enter] Select  [Esc] Cancel")
	case "model":
		if provider == nil {
			return a.panel("Select Model", "No provider selected", "", "[Esc] Cancel")
		}
		return a.panel("Select Model", "Provider: "+provider.Name,
			pickList(provider.Models, a.state.settingsSelected, cfg.Model),
			"[Up/Down] Navigate  [Enter] Select  [Esc] Cancel")
	case "apikey":
		return a.panel("Update API Key", "Enter your new API key", a.state.apiKeyInput.View(),
			"[Enter] Save  [Esc] Cancel")
	case "endpoint":
		return a.panel("Update Endpoint", "Base URL of the provider API", a.state.endpointInput.View(),
			"[Enter] Save  [Esc] Cancel")
	}

	providerName := cfg.Provider
	if provider != nil {
		providerName = provider.Name
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	rows := []string{
		fmt.Sprintf("  Provider: %s", providerName),
		fmt.Sprintf("  Model:    %s", cfg.Model),
		fmt.Sprintf("  API Key:  %s", maskKey(cfg.APIKey)),
	}
	if cfg.BaseURL != "" {
		rows = append(rows, fmt.Sprintf("  Endpoint: %s", truncate(cfg.BaseURL, 38)))
	}
	rows = append(rows,
		fmt.Sprintf("  Language: %s", language),
		fmt.Sprintf("  Timeout:  %s", cfg.Generation.Timeout),
		"",
		"  [p] Change provider",
		"  [m] Change model",
		"  [k] Update API key",
		"  [u] Update endpoint",
		"  [l] Switch language (en/tr)",
	)
	return a.panel("Settings", "", strings.Join(rows, "\n"), "[Esc] Back")
}

// panel is the settings screen layout: a title, an optional subtitle, a
// boxed body and a key hint, centered.
func (a *App) panel(title, subtitle, body, hint string) string {
	center := func(s string) string { return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, s) }

	parts := []string{center(lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render(title))}
	if subtitle != "" {
		parts = append(parts, center(styleSubtitle.Render(subtitle)))
	}
	if body != "" {
		parts = append(parts, center(styleBox.Copy().Width(50).Render(body)))
	}
	parts = append(parts, center(styleStatusBar.Render(hint)))
	return a.centerVertically(strings.Join(parts, "\n\n"))
}

func pickList(items []string, selected int, current string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		line := "  " + item
		if item == current {
			line += " (current)"
		}
		if i == selected {
			line = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render("> " + line[2:])
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func maskKey(k string) string {
	switch {
	case k == "":
		return "Not set"
	case len(k) > 8:
		return k[:4] + "****" + k[len(k)-4:]
	}
	return "****"
}

func (a *App) openSettings() {
	a.view = viewSettings
	a.state.settingsMode = ""
	a.state.settingsSelected = 0
}

func (a *App) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	cfg := s.config

	switch s.settingsMode {
	case "provider":
		switch {
		case key.Matches(msg, keys.Back):
			s.settingsMode = ""
		case key.Matches(msg, keys.Up):
			s.settingsSelected = max(0, s.settingsSelected-1)
		case key.Matches(msg, keys.Down):
			s.settingsSelected = min(len(config.Providers)-1, s.settingsSelected+1)
		case key.Matches(msg, keys.Enter):
			p := config.Providers[s.settingsSelected]
			if p.ID != cfg.Provider {
				cfg.Provider = p.ID
				cfg.SetModel(p.DefaultModel)
				cfg.APIKey = ""
				cfg.BaseURL = ""
			}
			return a.nextSettingsStep(p)
		}

	case "model":
		provider := config.GetProvider(cfg.Provider)
		if provider == nil || len(provider.Models) == 0 {
			s.settingsMode = ""
			return nil
		}
		switch {
		case key.Matches(msg, keys.Back):
			s.settingsMode = ""
		case key.Matches(msg, keys.Up):
			s.settingsSelected = max(0, s.settingsSelected-1)
		case key.Matches(msg, keys.Down):
			s.settingsSelected = min(len(provider.Models)-1, s.settingsSelected+1)
		case key.Matches(msg, keys.Enter):
			cfg.SetModel(provider.Models[s.settingsSelected])
			return a.applySettings()
		}

	case "apikey":
		switch {
		case key.Matches(msg, keys.Back):
			s.settingsMode = ""
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
		case key.Matches(msg, keys.Enter):
			cfg.APIKey = strings.TrimSpace(s.apiKeyInput.Value())
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
			return a.applySettings()
		default:
			return a.updateFocused(msg)
		}

	case "endpoint":
		switch {
		case key.Matches(msg, keys.Back):
			s.settingsMode = ""
			s.endpointInput.Reset()
			s.endpointInput.Blur()
		case key.Matches(msg, keys.Enter):
			url := strings.TrimSpace(s.endpointInput.Value())
			if url == "" {
				return nil
			}
			cfg.BaseURL = url
			s.endpointInput.Reset()
			s.endpointInput.Blur()
			if p := config.GetProvider(cfg.Provider); p != nil {
				return a.nextSettingsStep(*p)
			}
			return a.applySettings()
		default:
			return a.updateFocused(msg)
		}

	default:
		switch msg.String() {
		case "esc":
			a.view = viewWizard
		case "p":
			s.settingsMode = "provider"
			s.settingsSelected = 0
			for i, p := range config.Providers {
				if p.ID == cfg.Provider {
					s.settingsSelected = i
				}
			}
		case "m":
			s.settingsMode = "model"
			s.settingsSelected = 0
		case "k":
			s.settingsMode = "apikey"
			return s.apiKeyInput.Focus()
		case "u":
			s.settingsMode = "endpoint"
			s.endpointInput.SetValue(cfg.BaseURL)
			return s.endpointInput.Focus()
		case "l":
			return a.switchLanguage()
		}
	}

	return nil
}

// switchLanguage toggles between the two message catalogs. The wizard starts
// over because its notices and the template defaults are localized.
func (a *App) switchLanguage() tea.Cmd {
	s := a.state
	if s.wiz.Busy {
		return nil
	}

	next := "tr"
	if i18n.For(s.config.Language).Tag == i18n.For("tr").Tag {
		next = "en"
	}
	s.config.Language = next

	cat, err := catalog.Load(next, s.catalog.Dir())
	if err != nil && cat == nil {
		a.logger.Warn("reload templates", zap.Error(err))
	} else {
		s.catalog = cat
	}
	s.wiz = wizard.New(i18n.For(next))
	a.restart()

	return a.applySettings()
}

// nextSettingsStep asks for whatever p still lacks, then applies.
func (a *App) nextSettingsStep(p config.ProviderInfo) tea.Cmd {
	s := a.state
	if p.NeedsBaseURL && s.config.BaseURL == "" {
		s.settingsMode = "endpoint"
		return s.endpointInput.Focus()
	}
	if p.NeedsAPIKey && s.config.APIKey == "" {
		s.settingsMode = "apikey"
		return s.apiKeyInput.Focus()
	}
	return a.applySettings()
}

// applySettings saves the config and reconnects with it.
func (a *App) applySettings() tea.Cmd {
	a.state.settingsMode = ""
	return a.finishSetup()
}
