// Package tui is the terminal front end of the policy wizard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sant0-9/policygen/internal/catalog"
	"github.com/sant0-9/policygen/internal/config"
	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/i18n"
	"github.com/sant0-9/policygen/internal/wizard"
	"github.com/sant0-9/policygen/internal/writer"
)

// Backend is what the TUI drives: the in-process action service or the
// client of a remote server.
type Backend interface {
	wizard.Actions
	wizard.Suggester
	Ping(ctx context.Context) error
}

// Connector builds a backend for cfg. It runs again whenever the settings
// change.
type Connector func(ctx context.Context, cfg *config.Config) (Backend, error)

type Options struct {
	Config *config.Config
	// NeedsSetup starts on the provider picker instead of the wizard.
	NeedsSetup bool
	Catalog    *catalog.Catalog
	Connect    Connector
	Logger     *zap.Logger
}

var (
	copyText   = writer.Copy
	saveText   = writer.Save
	saveConfig = func(c *config.Config) error { return c.Save() }
)

var errNotConnected = errors.New("no generator configured")

type view int

const (
	viewWizard view = iota
	viewSetup
	viewSettings
	viewHelp
)

type App struct {
	width    int
	height   int
	view     view
	state    *state
	connect  Connector
	logger   *zap.Logger
	quitting bool
}

func NewApp(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := newState(cfg, opts.Catalog, wizard.New(i18n.For(cfg.Language)))
	s.needsSetup = opts.NeedsSetup

	a := &App{
		view:    viewWizard,
		state:   s,
		connect: opts.Connect,
		logger:  logger,
	}
	if s.needsSetup {
		a.view = viewSetup
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.state.needsSetup {
		return tea.Batch(tea.WindowSize(), textinput.Blink)
	}
	return tea.Batch(tea.WindowSize(), a.connectBackend())
}

type backendMsg struct {
	backend Backend
	err     error
}

type setupCompleteMsg struct{}
type setupErrorMsg struct{ error }

// policyMsg and summaryMsg carry the run they belong to so that results of
// an abandoned run are dropped by the wizard.
type policyMsg struct {
	run    wizard.Run
	policy string
}

type summaryMsg struct {
	run     wizard.Run
	summary string
}

type suggestionMsg struct {
	result contract.SuggestionResult
}

type noticeMsg struct {
	notice wizard.Notice
}

// connectBackend builds the backend and pings it. A failed ping keeps the
// backend: actions never fail, they would only answer with substitutes.
func (a *App) connectBackend() tea.Cmd {
	if a.connect == nil {
		return nil
	}
	cfg := *a.state.config
	connect := a.connect
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		backend, err := connect(ctx, &cfg)
		if err != nil {
			return backendMsg{err: err}
		}
		return backendMsg{backend: backend, err: backend.Ping(ctx)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.state.viewport.Width = max(20, min(80, msg.Width-4))
		a.state.viewport.Height = max(5, msg.Height-12)
		a.refreshResult()
		return a, nil

	case setupCompleteMsg:
		a.state.needsSetup = false
		a.view = viewWizard
		return a, a.connectBackend()

	case setupErrorMsg:
		a.state.backendError = msg.error
		return a, nil

	case backendMsg:
		a.state.backend = msg.backend
		a.state.backendReady = msg.backend != nil
		a.state.backendError = msg.err
		if msg.err != nil {
			a.logger.Warn("generator not reachable", zap.Error(msg.err))
		}
		return a, nil

	case policyMsg:
		return a, a.policyArrived(msg)

	case summaryMsg:
		if a.state.wiz.SummaryArrived(msg.run, msg.summary) {
			a.endRun()
			a.refreshResult()
		}
		return a, nil

	case suggestionMsg:
		a.state.suggestBusy = false
		res := msg.result
		a.state.suggestion = &res
		if t := a.state.catalog.Match(res.TemplateSuggestion); t != nil {
			for i, c := range a.state.catalog.All() {
				if c.ID == t.ID {
					a.state.cursor = i
				}
			}
		}
		return a, nil

	case noticeMsg:
		n := msg.notice
		a.state.wiz.Notice = &n
		return a, nil

	case spinner.TickMsg:
		if !a.state.wiz.Busy && !a.state.suggestBusy {
			return a, nil
		}
		var cmd tea.Cmd
		a.state.spinner, cmd = a.state.spinner.Update(msg)
		return a, cmd
	}

	// Cursor blinks and the like go to whatever input has focus.
	return a, a.updateFocused(msg)
}

func (a *App) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case a.view == viewSetup && a.state.setupStep == setupKey,
		a.view == viewSettings && a.state.settingsMode == "apikey":
		a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
	case a.view == viewSetup && a.state.setupStep == setupEndpoint,
		a.view == viewSettings && a.state.settingsMode == "endpoint":
		a.state.endpointInput, cmd = a.state.endpointInput.Update(msg)
	case a.view != viewWizard:
	case a.state.wiz.Stage == wizard.StageSelect && a.state.suggesting:
		if a.state.suggestFocus == 0 {
			a.state.businessType, cmd = a.state.businessType.Update(msg)
		} else {
			a.state.practices, cmd = a.state.practices.Update(msg)
		}
	case a.state.wiz.Stage == wizard.StageCustomize:
		cmd = a.state.form.update(msg)
	}
	return cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Quit) {
		a.endRun()
		a.quitting = true
		return tea.Quit
	}

	switch a.view {
	case viewSetup:
		return a.handleSetupKey(msg)
	case viewSettings:
		return a.handleSettingsKey(msg)
	case viewHelp:
		if key.Matches(msg, keys.Back) || key.Matches(msg, keys.Help) {
			a.view = viewWizard
		}
		return nil
	}

	switch a.state.wiz.Stage {
	case wizard.StageSelect:
		return a.handleSelectKey(msg)
	case wizard.StageCustomize:
		return a.handleCustomizeKey(msg)
	default:
		return a.handleResultKey(msg)
	}
}

func (a *App) handleSelectKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	if s.suggesting {
		switch {
		case key.Matches(msg, keys.Back):
			s.suggesting = false
			s.businessType.Blur()
			s.practices.Blur()
			return nil
		case key.Matches(msg, keys.Next), key.Matches(msg, keys.Prev):
			s.suggestFocus = 1 - s.suggestFocus
			if s.suggestFocus == 0 {
				s.practices.Blur()
				return s.businessType.Focus()
			}
			s.businessType.Blur()
			return s.practices.Focus()
		case key.Matches(msg, keys.Enter):
			return a.suggest()
		}
		return a.updateFocused(msg)
	}

	templates := s.catalog.All()
	switch {
	case key.Matches(msg, keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, keys.Down):
		if s.cursor < len(templates)-1 {
			s.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if s.cursor < len(templates) {
			return a.selectTemplate(templates[s.cursor])
		}
	case key.Matches(msg, keys.Suggest):
		s.suggesting = true
		s.suggestFocus = 0
		s.practices.Blur()
		return s.businessType.Focus()
	case key.Matches(msg, keys.Settings):
		a.openSettings()
	case key.Matches(msg, keys.Help):
		a.view = viewHelp
	case key.Matches(msg, keys.Back), msg.String() == "q":
		a.quitting = true
		return tea.Quit
	}
	return nil
}

func (a *App) selectTemplate(t *catalog.Template) tea.Cmd {
	if err := a.state.wiz.Select(t.ID); err != nil {
		return nil
	}
	msgs := a.state.wiz.Messages()
	a.state.form.fill(t.Prefill(time.Now(), msgs.DateLayout()))
	a.state.formErrors = nil
	return a.state.form.focusFirst()
}

func (a *App) suggest() tea.Cmd {
	s := a.state
	if s.suggestBusy || s.backend == nil {
		return nil
	}
	req := contract.SuggestionRequest{
		BusinessType:          strings.TrimSpace(s.businessType.Value()),
		DataHandlingPractices: strings.TrimSpace(s.practices.Value()),
	}
	s.suggestBusy = true
	s.suggestion = nil

	backend := s.backend
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		return suggestionMsg{result: backend.SuggestTemplate(context.Background(), req)}
	})
}

func (a *App) handleCustomizeKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	switch {
	case key.Matches(msg, keys.Back):
		if err := s.wiz.Back(); err == nil {
			s.formErrors = nil
		}
		return nil
	case key.Matches(msg, keys.Next):
		return s.form.move(1)
	case key.Matches(msg, keys.Prev):
		return s.form.move(-1)
	case key.Matches(msg, keys.Submit):
		return a.submit()
	}
	return s.form.update(msg)
}

// submit checks the form and starts a run. Form errors keep the user on
// Customize with focus on the first offending field.
func (a *App) submit() tea.Cmd {
	s := a.state
	msgs := s.wiz.Messages()

	if s.backend == nil {
		err := s.backendError
		if err == nil {
			err = errNotConnected
		}
		s.wiz.Notice = &wizard.Notice{Title: msgs.FailureTitle, Description: err.Error(), Failure: true}
		return nil
	}

	req := s.form.request()
	if errs := wizard.CheckForm(req, msgs); len(errs) > 0 {
		s.formErrors = make(map[string]string, len(errs))
		for _, e := range errs {
			s.formErrors[e.Field] = e.Message
		}
		return s.form.focusKey(errs[0].Field)
	}
	s.formErrors = nil

	run, err := s.wiz.Submit(req)
	if err != nil {
		return nil
	}
	s.run = run
	a.refreshResult()
	return tea.Batch(s.spinner.Tick, a.generate(a.startRun(), run))
}

// startRun gives the new run its own context, cancelling any previous one.
func (a *App) startRun() context.Context {
	a.endRun()
	a.state.runCtx, a.state.cancelRun = context.WithCancel(context.Background())
	return a.state.runCtx
}

func (a *App) endRun() {
	if a.state.cancelRun != nil {
		a.state.cancelRun()
	}
	a.state.runCtx, a.state.cancelRun = nil, nil
}

func (a *App) runner() *wizard.Runner {
	return &wizard.Runner{Actions: a.state.backend}
}

func (a *App) generate(ctx context.Context, run wizard.Run) tea.Cmd {
	r := a.runner()
	return func() tea.Msg {
		return policyMsg{run: run, policy: r.Generate(ctx, run)}
	}
}

func (a *App) summarize(ctx context.Context, run wizard.Run, policy string) tea.Cmd {
	r := a.runner()
	return func() tea.Msg {
		return summaryMsg{run: run, summary: r.Summarize(ctx, policy)}
	}
}

func (a *App) policyArrived(msg policyMsg) tea.Cmd {
	wiz := a.state.wiz
	if !wiz.PolicyArrived(msg.run, msg.policy) {
		return nil
	}
	if wiz.Policy == nil {
		// Generation failed and the wizard went back to Customize.
		a.endRun()
		a.state.form.fill(wiz.Form)
		return a.state.form.focusFirst()
	}
	a.refreshResult()
	ctx := a.state.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	return a.summarize(ctx, msg.run, *wiz.Policy)
}

func (a *App) handleResultKey(msg tea.KeyMsg) tea.Cmd {
	s := a.state
	msgs := s.wiz.Messages()
	switch {
	case key.Matches(msg, keys.Copy):
		if s.wiz.Policy != nil {
			return copyCmd(msgs, *s.wiz.Policy)
		}
	case key.Matches(msg, keys.CopySum):
		if s.wiz.Summary != nil {
			return copyCmd(msgs, *s.wiz.Summary)
		}
	case key.Matches(msg, keys.Download):
		if s.wiz.Policy != nil {
			policy := *s.wiz.Policy
			return exportCmd(msgs, func() (string, error) {
				path, err := saveText(msgs.FileName, policy)
				return fmt.Sprintf(msgs.SavedDescription, path), err
			}, msgs.SuccessTitle)
		}
	case key.Matches(msg, keys.Restart):
		a.restart()
	case key.Matches(msg, keys.Dismiss):
		s.wiz.DismissNotice()
	case key.Matches(msg, keys.Help):
		a.view = viewHelp
	case msg.String() == "q":
		a.endRun()
		a.quitting = true
		return tea.Quit
	default:
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return cmd
	}
	return nil
}

func copyCmd(msgs i18n.Messages, text string) tea.Cmd {
	return exportCmd(msgs, func() (string, error) {
		return msgs.CopiedDescription, copyText(text)
	}, msgs.CopiedTitle)
}

func exportCmd(msgs i18n.Messages, do func() (string, error), title string) tea.Cmd {
	return func() tea.Msg {
		desc, err := do()
		if err != nil {
			return noticeMsg{wizard.Notice{Title: msgs.FailureTitle, Description: err.Error(), Failure: true}}
		}
		return noticeMsg{wizard.Notice{Title: title, Description: desc}}
	}
}

func (a *App) restart() {
	s := a.state
	a.endRun()
	s.wiz.Restart()
	s.run = wizard.Run{}
	s.cursor = 0
	s.suggestion = nil
	s.formErrors = nil
	s.form.fill(contract.GenerationRequest{})
	s.viewport.SetContent("")
}

// refreshResult re-renders the policy and summary into the viewport.
func (a *App) refreshResult() {
	wiz := a.state.wiz
	if wiz.Policy == nil {
		a.state.viewport.SetContent("")
		return
	}

	wrap := lipgloss.NewStyle().Width(a.state.viewport.Width - 2)
	var b strings.Builder
	b.WriteString(wrap.Render(*wiz.Policy))
	if wiz.Summary != nil {
		b.WriteString("\n\n")
		b.WriteString(styleTitle.Render(wiz.Messages().SummaryHeading))
		b.WriteString("\n")
		b.WriteString(wrap.Render(*wiz.Summary))
	}
	a.state.viewport.SetContent(b.String())
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	switch a.view {
	case viewSetup:
		return a.renderSetup()
	case viewSettings:
		return a.renderSettings()
	case viewHelp:
		return a.renderHelp()
	}

	switch a.state.wiz.Stage {
	case wizard.StageCustomize:
		return a.renderCustomize()
	case wizard.StageResult:
		return a.renderResult()
	default:
		return a.renderSelect()
	}
}
