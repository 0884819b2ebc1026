// Package assistant implements the chat campaign builder: an explicit
// state machine driven by discrete events, a FIFO outbox for messages
// sent while the assistant is busy, and a registry of live sessions.
package assistant

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kigopro/kigo/internal/model"
)

// ErrInvalidTransition is returned when an event does not apply in the
// current phase. The state is left unchanged.
var ErrInvalidTransition = errors.New("invalid transition")

// Phase is the coarse position of a conversation.
type Phase string

const (
	PhaseAwaitingInput     Phase = "awaiting-input"
	PhaseAnalyzing         Phase = "analyzing"
	PhasePresentingOptions Phase = "presenting-options"
	PhaseConfiguring       Phase = "configuring"
	PhaseComplete          Phase = "complete"
)

// EventKind names a machine input.
type EventKind string

const (
	EventMessage      EventKind = "message"
	EventAnalysisDone EventKind = "analysis_done"
	EventChooseOption EventKind = "choose_option"
	EventSubmitStep   EventKind = "submit_step"
	EventBack         EventKind = "back"
	EventReset        EventKind = "reset"
)

// Event is one machine input. Text is set for messages, Option for
// option choices and Fields for step submissions.
type Event struct {
	Kind   EventKind         `json:"kind"`
	Text   string            `json:"text,omitempty"`
	Option string            `json:"option,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Option is a reply the assistant offers.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Option values.
const (
	OptionCreateCampaign = "create_campaign"
	OptionBrowse         = "browse_campaigns"
	OptionStartOver      = "start_over"
)

// State is a snapshot of a conversation.
type State struct {
	Phase   Phase    `json:"phase"`
	Step    Step     `json:"step,omitempty"`
	Intent  Intent   `json:"intent,omitempty"`
	Message string   `json:"message,omitempty"` // last user message
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options,omitempty"`
	Fields  []string `json:"fields,omitempty"` // form fields of the current step
	Draft   Draft    `json:"draft"`
}

// Initial returns the greeting state for a new conversation.
func Initial(owner Owner) State {
	return State{
		Phase:  PhaseAwaitingInput,
		Prompt: "Tell me about your objective and I'll help you set up a campaign.",
		Draft:  Draft{Owner: owner},
	}
}

// Apply returns the state after ev. today bounds the schedule step.
// On error the returned state is s.
func (s State) Apply(ev Event, today model.Date) (State, error) {
	next, err := s.apply(ev, today)
	if err != nil {
		return s, err
	}
	return next, nil
}

func (s State) apply(ev Event, today model.Date) (State, error) {
	if ev.Kind == EventReset {
		return Initial(s.Draft.Owner), nil
	}

	switch s.Phase {
	case PhaseAwaitingInput, PhasePresentingOptions:
		switch ev.Kind {
		case EventMessage:
			if ev.Text == "" {
				return s, invalid(s, ev, "empty message")
			}
			s.Phase = PhaseAnalyzing
			s.Message = ev.Text
			s.Intent = Classify(ev.Text)
			s.Prompt = "Thinking..."
			s.Options = nil
			return s, nil
		case EventChooseOption:
			if s.Phase != PhasePresentingOptions {
				break
			}
			return s.choose(ev)
		case EventBack:
			if s.Phase == PhasePresentingOptions {
				return Initial(s.Draft.Owner), nil
			}
		}

	case PhaseAnalyzing:
		if ev.Kind == EventAnalysisDone {
			return s.present(), nil
		}

	case PhaseConfiguring:
		switch ev.Kind {
		case EventSubmitStep:
			return s.submit(ev, today)
		case EventBack:
			if s.Step == StepBasics {
				return s.present(), nil
			}
			return s.configure(s.Step - 1), nil
		}
	}
	return s, invalid(s, ev, "")
}

func invalid(s State, ev Event, why string) error {
	if why != "" {
		return fmt.Errorf("%w: %s in %s: %s", ErrInvalidTransition, ev.Kind, s.Phase, why)
	}
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.Kind, s.Phase)
}

// present moves to presenting-options with replies shaped by the intent.
func (s State) present() State {
	s.Phase = PhasePresentingOptions
	s.Step = 0
	s.Fields = nil
	create := Option{Value: OptionCreateCampaign, Label: "Create a campaign"}
	browse := Option{Value: OptionBrowse, Label: "Show current campaigns"}
	over := Option{Value: OptionStartOver, Label: "Start over"}

	switch s.Intent {
	case IntentAdCreation:
		s.Prompt = "Sounds like you want to launch something new. Shall we build the campaign?"
		s.Options = []Option{create, over}
	case IntentCampaignOptimization, IntentAnalyticsQuery:
		s.Prompt = "Let's start from what's running now, or set up a fresh campaign."
		s.Options = []Option{browse, create, over}
	case IntentFilterManagement:
		s.Prompt = "Targeting is set per campaign. Want to create one?"
		s.Options = []Option{create, browse, over}
	default:
		s.Prompt = "I can help you create a campaign or review current ones."
		s.Options = []Option{create, browse, over}
	}
	return s
}

func (s State) choose(ev Event) (State, error) {
	if !slices.ContainsFunc(s.Options, func(o Option) bool { return o.Value == ev.Option }) {
		return s, invalid(s, ev, fmt.Sprintf("unknown option %q", ev.Option))
	}
	switch ev.Option {
	case OptionCreateCampaign:
		return s.configure(StepBasics), nil
	case OptionStartOver:
		return Initial(s.Draft.Owner), nil
	}
	// Browsing is served by the campaign list; the conversation waits.
	s.Phase = PhaseAwaitingInput
	s.Options = nil
	s.Prompt = "Here are your campaigns. Tell me what you'd like to do next."
	return s, nil
}

func (s State) configure(step Step) State {
	s.Phase = PhaseConfiguring
	s.Step = step
	s.Options = nil
	s.Fields = step.Fields()
	switch step {
	case StepBasics:
		s.Prompt = "What should the campaign be called, and is it promotional, targeted or seasonal?"
	case StepSchedule:
		s.Prompt = "When should it start and end?"
	case StepBudget:
		s.Prompt = "What's the budget, and should it activate automatically on the start date?"
	case StepReview:
		d := s.Draft
		s.Prompt = fmt.Sprintf("Create %q (%s) from %s to %s with a $%s budget?",
			d.Name, d.Type, d.StartDate, d.EndDate, d.Budget.StringFixed(2))
	}
	return s
}

func (s State) submit(ev Event, today model.Date) (State, error) {
	d, err := s.Draft.apply(s.Step, ev.Fields, today)
	if err != nil {
		return s, err
	}
	s.Draft = d
	if s.Step < StepReview {
		return s.configure(s.Step + 1), nil
	}
	s.Phase = PhaseComplete
	s.Fields = nil
	s.Prompt = fmt.Sprintf("Done! %q is saved.", s.Draft.Name)
	return s, nil
}
