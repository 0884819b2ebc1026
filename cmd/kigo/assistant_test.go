package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kigopro/kigo/internal/assistant"
	"github.com/kigopro/kigo/internal/client"
	"github.com/kigopro/kigo/internal/model"
)

// scriptedAPI replays snapshots and records the events it was sent.
type scriptedAPI struct {
	created assistant.Owner
	events  []assistant.Event
	replies []func(assistant.Event) (*assistant.Snapshot, error)
}

func (a *scriptedAPI) CreateSession(_ context.Context, owner assistant.Owner) (*assistant.Snapshot, error) {
	a.created = owner
	return &assistant.Snapshot{ID: "sess-1", State: assistant.Initial(owner)}, nil
}

func (a *scriptedAPI) SendEvent(_ context.Context, id string, ev assistant.Event) (*assistant.Snapshot, error) {
	a.events = append(a.events, ev)
	if len(a.replies) == 0 {
		return nil, errors.New("no more replies")
	}
	next := a.replies[0]
	a.replies = a.replies[1:]
	return next(ev)
}

func snap(st assistant.State) func(assistant.Event) (*assistant.Snapshot, error) {
	return func(assistant.Event) (*assistant.Snapshot, error) {
		return &assistant.Snapshot{ID: "sess-1", State: st}, nil
	}
}

func TestRunChat_BuildsCampaign(t *testing.T) {
	options := assistant.State{
		Phase:  assistant.PhasePresentingOptions,
		Prompt: "Shall we build the campaign?",
		Options: []assistant.Option{
			{Value: assistant.OptionCreateCampaign, Label: "Create a campaign"},
			{Value: assistant.OptionStartOver, Label: "Start over"},
		},
	}
	basics := assistant.State{
		Phase:  assistant.PhaseConfiguring,
		Step:   assistant.StepBasics,
		Prompt: "What should the campaign be called?",
		Fields: []string{"name", "type"},
	}
	api := &scriptedAPI{replies: []func(assistant.Event) (*assistant.Snapshot, error){
		snap(options),
		snap(basics),
		// The first submission is rejected with field errors.
		func(assistant.Event) (*assistant.Snapshot, error) {
			return nil, &client.APIError{StatusCode: 400, Message: "validation failed",
				Fields: []model.FieldError{{Field: "type", Message: "must be promotional, targeted or seasonal"}}}
		},
		func(assistant.Event) (*assistant.Snapshot, error) {
			return &assistant.Snapshot{ID: "sess-1", CampaignID: "cmp-100", State: assistant.State{
				Phase: assistant.PhaseComplete, Prompt: `Done! "Fall Sale" is saved.`,
			}}, nil
		},
	}}

	in := strings.NewReader(strings.Join([]string{
		"launch a fall promotion",
		"7", // out of range
		"1",
		"Fall Sale", "weekly",
		"Fall Sale", "seasonal",
	}, "\n") + "\n")
	var out bytes.Buffer

	owner := assistant.Owner{PartnerID: "p-1", PartnerName: "CVS", Actor: "sam"}
	if err := runChat(context.Background(), api, owner, in, &out); err != nil {
		t.Fatalf("runChat: %v", err)
	}

	if api.created != owner {
		t.Errorf("owner = %+v", api.created)
	}
	want := []assistant.Event{
		{Kind: assistant.EventMessage, Text: "launch a fall promotion"},
		{Kind: assistant.EventChooseOption, Option: assistant.OptionCreateCampaign},
		{Kind: assistant.EventSubmitStep, Fields: map[string]string{"name": "Fall Sale", "type": "weekly"}},
		{Kind: assistant.EventSubmitStep, Fields: map[string]string{"name": "Fall Sale", "type": "seasonal"}},
	}
	if diff := cmp.Diff(want, api.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}

	got := out.String()
	for _, s := range []string{"1) Create a campaign", "choose 1-2", "type must be promotional", "Created campaign cmp-100"} {
		if !strings.Contains(got, s) {
			t.Errorf("output missing %q:\n%s", s, got)
		}
	}
}

func TestRunChat_Commands(t *testing.T) {
	configuring := assistant.State{
		Phase:  assistant.PhaseConfiguring,
		Step:   assistant.StepSchedule,
		Prompt: "When should it start and end?",
		Fields: []string{"start_date", "end_date"},
	}
	api := &scriptedAPI{replies: []func(assistant.Event) (*assistant.Snapshot, error){
		snap(configuring),
		snap(assistant.Initial(assistant.Owner{})),
	}}

	in := strings.NewReader("hello\n/reset\n/quit\n")
	var out bytes.Buffer
	if err := runChat(context.Background(), api, assistant.Owner{}, in, &out); err != nil {
		t.Fatalf("runChat: %v", err)
	}
	want := []assistant.Event{
		{Kind: assistant.EventMessage, Text: "hello"},
		{Kind: assistant.EventReset},
	}
	if diff := cmp.Diff(want, api.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestRunChat_RejectedEventKeepsSession(t *testing.T) {
	current := assistant.Initial(assistant.Owner{})
	api := &scriptedAPI{replies: []func(assistant.Event) (*assistant.Snapshot, error){
		func(assistant.Event) (*assistant.Snapshot, error) {
			s := &assistant.Snapshot{ID: "sess-1", State: current}
			return s, &client.APIError{StatusCode: 409, Message: "invalid transition: back in awaiting-input", Session: s}
		},
	}}
	var out bytes.Buffer
	if err := runChat(context.Background(), api, assistant.Owner{}, strings.NewReader("/back\n"), &out); err != nil {
		t.Fatalf("runChat: %v", err)
	}
	if !strings.Contains(out.String(), "error: HTTP 409: invalid transition") {
		t.Errorf("output:\n%s", out.String())
	}
}
