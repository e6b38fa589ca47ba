package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sant0-9/policygen/internal/catalog"
	"github.com/sant0-9/policygen/internal/config"
	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/wizard"
)

type state struct {
	// Config
	config     *config.Config
	needsSetup bool

	// Setup wizard state
	setupStep        int
	selectedProvider int
	apiKeyInput      textinput.Model
	endpointInput    textinput.Model

	// Settings
	settingsMode     string
	settingsSelected int

	// Backend
	backend      Backend
	backendReady bool
	backendError error

	// Policy wizard
	wiz     *wizard.State
	catalog *catalog.Catalog
	run     wizard.Run

	// runCtx scopes the generator calls of run; restarting cancels it.
	runCtx    context.Context
	cancelRun context.CancelFunc

	// Select
	cursor       int
	suggesting   bool
	suggestFocus int
	businessType textinput.Model
	practices    textinput.Model
	suggestion   *contract.SuggestionResult
	suggestBusy  bool

	// Customize
	form       *form
	formErrors map[string]string

	// Result
	spinner  spinner.Model
	viewport viewport.Model
}

func newState(cfg *config.Config, cat *catalog.Catalog, wiz *wizard.State) *state {
	apiKey := textinput.New()
	apiKey.Placeholder = "Paste your API key here..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.CharLimit = 200
	apiKey.Width = 50

	endpoint := textinput.New()
	endpoint.Placeholder = "https://my-resource.openai.azure.com"
	endpoint.CharLimit = 300
	endpoint.Width = 50

	business := textinput.New()
	business.Placeholder = "e-commerce, SaaS, blog..."
	business.CharLimit = 200
	business.Width = 50

	practices := textinput.New()
	practices.Placeholder = "What data do you collect and why?"
	practices.CharLimit = 500
	practices.Width = 50

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styleAccent

	return &state{
		config:        cfg,
		apiKeyInput:   apiKey,
		endpointInput: endpoint,
		wiz:           wiz,
		catalog:       cat,
		businessType:  business,
		practices:     practices,
		form:          newForm(),
		spinner:       sp,
		viewport:      viewport.New(70, 20),
	}
}
