package assistant

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/model"
)

var today = model.MustParseDate("2024-06-15")

var owner = Owner{
	PartnerID:   "ptr-cvs",
	PartnerName: "CVS Pharmacy",
	ProgramID:   "prg-extracare",
	ProgramName: "ExtraCare",
	Actor:       "alice",
}

// mustApply applies events in order and fails on the first error.
func mustApply(t *testing.T, s State, evs ...Event) State {
	t.Helper()
	for _, ev := range evs {
		var err error
		s, err = s.Apply(ev, today)
		if err != nil {
			t.Fatalf("Apply(%s): %v", ev.Kind, err)
		}
	}
	return s
}

func presenting(t *testing.T, text string) State {
	t.Helper()
	return mustApply(t, Initial(owner),
		Event{Kind: EventMessage, Text: text},
		Event{Kind: EventAnalysisDone},
	)
}

func TestInitial(t *testing.T) {
	s := Initial(owner)
	if s.Phase != PhaseAwaitingInput {
		t.Errorf("phase = %s, want %s", s.Phase, PhaseAwaitingInput)
	}
	if s.Draft.Owner != owner {
		t.Errorf("owner = %+v, want %+v", s.Draft.Owner, owner)
	}
	if s.Prompt == "" {
		t.Error("expected a greeting prompt")
	}
}

func TestApply_MessageClassifies(t *testing.T) {
	s := mustApply(t, Initial(owner), Event{Kind: EventMessage, Text: "I want to create a new campaign"})
	if s.Phase != PhaseAnalyzing {
		t.Fatalf("phase = %s, want %s", s.Phase, PhaseAnalyzing)
	}
	if s.Intent != IntentAdCreation {
		t.Errorf("intent = %s, want %s", s.Intent, IntentAdCreation)
	}
	if s.Message != "I want to create a new campaign" {
		t.Errorf("message = %q", s.Message)
	}

	s = mustApply(t, s, Event{Kind: EventAnalysisDone})
	if s.Phase != PhasePresentingOptions {
		t.Fatalf("phase = %s, want %s", s.Phase, PhasePresentingOptions)
	}
	want := []Option{
		{Value: OptionCreateCampaign, Label: "Create a campaign"},
		{Value: OptionStartOver, Label: "Start over"},
	}
	if diff := cmp.Diff(want, s.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_OptionsFollowIntent(t *testing.T) {
	tests := []struct {
		text  string
		first string
	}{
		{"how do I improve performance", OptionBrowse},
		{"show me the dashboard", OptionBrowse},
		{"can I target by product selection", OptionCreateCampaign},
		{"hello", OptionCreateCampaign},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s := presenting(t, tt.text)
			if len(s.Options) == 0 || s.Options[0].Value != tt.first {
				t.Errorf("options = %+v, want first %s", s.Options, tt.first)
			}
		})
	}
}

func TestApply_FullFlow(t *testing.T) {
	s := presenting(t, "I'd like to build an ad")
	s = mustApply(t, s, Event{Kind: EventChooseOption, Option: OptionCreateCampaign})
	if s.Phase != PhaseConfiguring || s.Step != StepBasics {
		t.Fatalf("got %s/%s, want configuring/basics", s.Phase, s.Step)
	}
	if diff := cmp.Diff([]string{"name", "type", "description"}, s.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}

	s = mustApply(t, s,
		Event{Kind: EventSubmitStep, Fields: map[string]string{"name": " Summer Savings ", "type": "Seasonal"}},
		Event{Kind: EventSubmitStep, Fields: map[string]string{"start_date": "2024-07-01", "end_date": "2024-08-31"}},
		Event{Kind: EventSubmitStep, Fields: map[string]string{"budget": "$1,500", "auto_activate": "true"}},
	)
	if s.Step != StepReview {
		t.Fatalf("step = %s, want review", s.Step)
	}
	if !strings.Contains(s.Prompt, "$1500.00") || !strings.Contains(s.Prompt, "2024-07-01") {
		t.Errorf("review prompt = %q", s.Prompt)
	}

	s = mustApply(t, s, Event{Kind: EventSubmitStep, Fields: map[string]string{"confirm": "Yes"}})
	if s.Phase != PhaseComplete {
		t.Fatalf("phase = %s, want complete", s.Phase)
	}

	got := s.Draft.Campaign()
	want := &model.Campaign{
		PartnerID:    "ptr-cvs",
		PartnerName:  "CVS Pharmacy",
		ProgramID:    "prg-extracare",
		ProgramName:  "ExtraCare",
		Name:         "Summer Savings",
		Type:         model.CampaignSeasonal,
		StartDate:    model.MustParseDate("2024-07-01"),
		EndDate:      model.MustParseDate("2024-08-31"),
		AutoActivate: true,
		Budget:       decimal.NewFromInt(1500),
		CreatedBy:    "alice",
		UpdatedBy:    "alice",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("campaign mismatch (-want +got):\n%s", diff)
	}
	if err := model.ValidateCampaign(got); err != nil {
		t.Errorf("drafted campaign does not validate: %v", err)
	}
}

func TestApply_InvalidTransitionLeavesState(t *testing.T) {
	configuring := mustApply(t, presenting(t, "new campaign please"),
		Event{Kind: EventChooseOption, Option: OptionCreateCampaign})
	analyzing := mustApply(t, Initial(owner), Event{Kind: EventMessage, Text: "hi"})

	tests := []struct {
		name  string
		state State
		ev    Event
	}{
		{"analysis done while idle", Initial(owner), Event{Kind: EventAnalysisDone}},
		{"choose while idle", Initial(owner), Event{Kind: EventChooseOption, Option: OptionCreateCampaign}},
		{"back while idle", Initial(owner), Event{Kind: EventBack}},
		{"empty message", Initial(owner), Event{Kind: EventMessage}},
		{"message while analyzing", analyzing, Event{Kind: EventMessage, Text: "again"}},
		{"submit while analyzing", analyzing, Event{Kind: EventSubmitStep}},
		{"unknown option", presenting(t, "hello"), Event{Kind: EventChooseOption, Option: "launch_rocket"}},
		{"message while configuring", configuring, Event{Kind: EventMessage, Text: "wait"}},
		{"unknown kind", Initial(owner), Event{Kind: "dance"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.state.Apply(tt.ev, today)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("err = %v, want ErrInvalidTransition", err)
			}
			if diff := cmp.Diff(tt.state, got); diff != "" {
				t.Errorf("state changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_StepValidation(t *testing.T) {
	basics := mustApply(t, presenting(t, "create an ad"),
		Event{Kind: EventChooseOption, Option: OptionCreateCampaign})
	schedule := mustApply(t, basics,
		Event{Kind: EventSubmitStep, Fields: map[string]string{"name": "Fall"}})
	budget := mustApply(t, schedule,
		Event{Kind: EventSubmitStep, Fields: map[string]string{"start_date": "2024-06-15", "end_date": "2024-06-15"}})
	review := mustApply(t, budget,
		Event{Kind: EventSubmitStep, Fields: map[string]string{"budget": "0"}})

	tests := []struct {
		name   string
		state  State
		fields map[string]string
		want   []string
	}{
		{"missing name", basics, map[string]string{"type": "targeted"}, []string{"name"}},
		{"bad type", basics, map[string]string{"name": "x", "type": "viral"}, []string{"type"}},
		{"start in past", schedule, map[string]string{"start_date": "2024-06-14", "end_date": "2024-07-01"}, []string{"start_date"}},
		{"end before start", schedule, map[string]string{"start_date": "2024-07-02", "end_date": "2024-07-01"}, []string{"end_date"}},
		{"bad dates", schedule, map[string]string{"start_date": "soon", "end_date": ""}, []string{"start_date", "end_date"}},
		{"bad budget", budget, map[string]string{"budget": "lots"}, []string{"budget"}},
		{"negative budget", budget, map[string]string{"budget": "-5"}, []string{"budget"}},
		{"bad flag", budget, map[string]string{"budget": "5", "auto_activate": "maybe"}, []string{"auto_activate"}},
		{"not confirmed", review, map[string]string{"confirm": "no"}, []string{"confirm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.state.Apply(Event{Kind: EventSubmitStep, Fields: tt.fields}, today)
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *model.ValidationError", err)
			}
			var fields []string
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			if diff := cmp.Diff(tt.want, fields); diff != "" {
				t.Errorf("error fields mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.state, got); diff != "" {
				t.Errorf("state changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_Back(t *testing.T) {
	basics := mustApply(t, presenting(t, "create an ad"),
		Event{Kind: EventChooseOption, Option: OptionCreateCampaign})
	schedule := mustApply(t, basics,
		Event{Kind: EventSubmitStep, Fields: map[string]string{"name": "Fall"}})

	s := mustApply(t, schedule, Event{Kind: EventBack})
	if s.Phase != PhaseConfiguring || s.Step != StepBasics {
		t.Fatalf("got %s/%s, want configuring/basics", s.Phase, s.Step)
	}
	if s.Draft.Name != "Fall" {
		t.Errorf("draft name = %q, want kept after back", s.Draft.Name)
	}

	s = mustApply(t, s, Event{Kind: EventBack})
	if s.Phase != PhasePresentingOptions {
		t.Fatalf("phase = %s, want presenting-options", s.Phase)
	}
	if s.Step != 0 || s.Fields != nil {
		t.Errorf("step = %s fields = %v, want cleared", s.Step, s.Fields)
	}

	s = mustApply(t, s, Event{Kind: EventBack})
	if diff := cmp.Diff(Initial(owner), s); diff != "" {
		t.Errorf("back from options (-want +got):\n%s", diff)
	}
}

func TestApply_ResetAndStartOver(t *testing.T) {
	schedule := mustApply(t, presenting(t, "create an ad"),
		Event{Kind: EventChooseOption, Option: OptionCreateCampaign},
		Event{Kind: EventSubmitStep, Fields: map[string]string{"name": "Fall"}})

	s := mustApply(t, schedule, Event{Kind: EventReset})
	if diff := cmp.Diff(Initial(owner), s); diff != "" {
		t.Errorf("reset (-want +got):\n%s", diff)
	}

	s = mustApply(t, presenting(t, "hello"), Event{Kind: EventChooseOption, Option: OptionStartOver})
	if diff := cmp.Diff(Initial(owner), s); diff != "" {
		t.Errorf("start over (-want +got):\n%s", diff)
	}
}

func TestApply_Browse(t *testing.T) {
	s := mustApply(t, presenting(t, "hello"), Event{Kind: EventChooseOption, Option: OptionBrowse})
	if s.Phase != PhaseAwaitingInput {
		t.Fatalf("phase = %s, want awaiting-input", s.Phase)
	}
	if s.Options != nil {
		t.Errorf("options = %v, want none", s.Options)
	}
	// The conversation continues from there.
	s = mustApply(t, s, Event{Kind: EventMessage, Text: "create a campaign"})
	if s.Intent != IntentAdCreation {
		t.Errorf("intent = %s, want %s", s.Intent, IntentAdCreation)
	}
}

func TestApply_MessageWhilePresenting(t *testing.T) {
	s := mustApply(t, presenting(t, "hello"), Event{Kind: EventMessage, Text: "show me stats"})
	if s.Phase != PhaseAnalyzing || s.Intent != IntentAnalyticsQuery {
		t.Errorf("got %s/%s, want analyzing/%s", s.Phase, s.Intent, IntentAnalyticsQuery)
	}
	if s.Options != nil {
		t.Errorf("options = %v, want cleared while analyzing", s.Options)
	}
}

func TestStepText(t *testing.T) {
	for _, step := range []Step{StepBasics, StepSchedule, StepBudget, StepReview} {
		b, err := step.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Step
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", b, err)
		}
		if got != step {
			t.Errorf("round trip %s = %s", step, got)
		}
	}
	var s Step
	if err := s.UnmarshalText([]byte("launch")); err == nil {
		t.Error("expected error for unknown step")
	}
	if got := Step(9).String(); got != "step-9" {
		t.Errorf("String() = %q, want step-9", got)
	}
}
