// Package wizard is the three-step workflow behind every front end: pick a
// template, fill in the questionnaire, read the result. State is a plain
// value owned by one session; nothing here is safe for concurrent use and
// nothing needs to be.
package wizard

import (
	"errors"

	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/i18n"
)

type Stage int

const (
	StageSelect Stage = iota
	StageCustomize
	StageResult
)

func (s Stage) String() string {
	switch s {
	case StageSelect:
		return "Select"
	case StageCustomize:
		return "Customize"
	case StageResult:
		return "Result"
	default:
		return "Unknown"
	}
}

var (
	ErrInvalidTransition = errors.New("invalid wizard transition")
	ErrBusy              = errors.New("a generation is already running")
)

// Notice is a dismissible message for the user.
type Notice struct {
	Title       string
	Description string
	Failure     bool
}

// Run identifies one submission. Results carrying an older epoch than the
// state's are discarded on arrival.
type Run struct {
	Epoch   uint64
	Request contract.GenerationRequest
}

// State is one session's wizard. Nil pointers mean "not yet known".
type State struct {
	Stage      Stage
	TemplateID *string
	Policy     *string
	Summary    *string
	Busy       bool
	Epoch      uint64
	Notice     *Notice

	// Form keeps the last submitted answers so a failed run can be retried.
	Form contract.GenerationRequest

	msgs i18n.Messages
}

func New(msgs i18n.Messages) *State {
	return &State{Stage: StageSelect, msgs: msgs}
}

// Messages returns the catalog notices are written in.
func (s *State) Messages() i18n.Messages {
	return s.msgs
}

// Select records the chosen template and moves to Customize.
func (s *State) Select(templateID string) error {
	if s.Stage != StageSelect || templateID == "" {
		return ErrInvalidTransition
	}
	id := templateID
	s.TemplateID = &id
	s.Stage = StageCustomize
	return nil
}

// Back returns from Customize to Select.
func (s *State) Back() error {
	if s.Stage != StageCustomize || s.Busy {
		return ErrInvalidTransition
	}
	s.TemplateID = nil
	s.Notice = nil
	s.Stage = StageSelect
	return nil
}

// Submit enters Result optimistically and starts a new run.
func (s *State) Submit(req contract.GenerationRequest) (Run, error) {
	if s.Busy {
		return Run{}, ErrBusy
	}
	if s.Stage != StageCustomize {
		return Run{}, ErrInvalidTransition
	}

	s.Epoch++
	s.Form = req
	s.Stage = StageResult
	s.Busy = true
	s.Policy = nil
	s.Summary = nil
	s.Notice = nil

	return Run{Epoch: s.Epoch, Request: req}, nil
}

// PolicyArrived applies a generation result. It reports whether the result
// belonged to the current run. An empty policy ends the run and sends the
// user back to Customize with the answers kept.
func (s *State) PolicyArrived(run Run, policy string) bool {
	if !s.current(run) || s.Policy != nil {
		return false
	}

	if policy == "" {
		s.Busy = false
		s.Stage = StageCustomize
		s.Notice = &Notice{
			Title:       s.msgs.FailureTitle,
			Description: s.msgs.FailureDescription,
			Failure:     true,
		}
		return true
	}

	p := policy
	s.Policy = &p
	return true
}

// SummaryArrived stores whatever summary came back, failure text included,
// and ends the run.
func (s *State) SummaryArrived(run Run, summary string) bool {
	if !s.current(run) || s.Policy == nil {
		return false
	}

	sum := summary
	s.Summary = &sum
	s.Busy = false
	s.Notice = &Notice{
		Title:       s.msgs.SuccessTitle,
		Description: s.msgs.SuccessDescription,
	}
	return true
}

// Restart goes back to Select from anywhere. Results of a run still in
// flight will be discarded when they arrive.
func (s *State) Restart() {
	s.Epoch++
	s.Stage = StageSelect
	s.TemplateID = nil
	s.Policy = nil
	s.Summary = nil
	s.Busy = false
	s.Notice = nil
	s.Form = contract.GenerationRequest{}
}

func (s *State) DismissNotice() {
	s.Notice = nil
}

// AwaitingSummary is true between a policy arriving and its summary.
func (s *State) AwaitingSummary() bool {
	return s.Busy && s.Policy != nil && s.Summary == nil
}

func (s *State) current(run Run) bool {
	return run.Epoch == s.Epoch && s.Stage == StageResult && s.Busy
}
