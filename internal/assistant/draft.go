package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/model"
)

// Step is one page of the campaign builder.
type Step int

const (
	StepBasics Step = iota + 1
	StepSchedule
	StepBudget
	StepReview
)

var stepNames = map[Step]string{
	StepBasics:   "basics",
	StepSchedule: "schedule",
	StepBudget:   "budget",
	StepReview:   "review",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "step-" + strconv.Itoa(int(s))
}

// MarshalText renders the step name.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a step name.
func (s *Step) UnmarshalText(b []byte) error {
	for step, name := range stepNames {
		if name == string(b) {
			*s = step
			return nil
		}
	}
	return fmt.Errorf("unknown step %q", b)
}

// Fields lists the form fields a step accepts.
func (s Step) Fields() []string {
	switch s {
	case StepBasics:
		return []string{"name", "type", "description"}
	case StepSchedule:
		return []string{"start_date", "end_date"}
	case StepBudget:
		return []string{"budget", "auto_activate"}
	case StepReview:
		return []string{"confirm"}
	}
	return nil
}

// Owner is the partner program a session drafts campaigns for.
type Owner struct {
	PartnerID   string `json:"partner_id"`
	PartnerName string `json:"partner_name"`
	ProgramID   string `json:"program_id"`
	ProgramName string `json:"program_name"`
	Actor       string `json:"actor,omitempty"`
}

// Draft is the campaign being assembled.
type Draft struct {
	Owner
	Name         string             `json:"name,omitempty"`
	Type         model.CampaignType `json:"type,omitempty"`
	Description  string             `json:"description,omitempty"`
	StartDate    model.Date         `json:"start_date,omitzero"`
	EndDate      model.Date         `json:"end_date,omitzero"`
	Budget       decimal.Decimal    `json:"budget"`
	AutoActivate bool               `json:"auto_activate"`
}

// Campaign converts the draft into a new, inactive campaign.
func (d Draft) Campaign() *model.Campaign {
	return &model.Campaign{
		PartnerID:    d.PartnerID,
		PartnerName:  d.PartnerName,
		ProgramID:    d.ProgramID,
		ProgramName:  d.ProgramName,
		Name:         d.Name,
		Type:         d.Type,
		Description:  d.Description,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		AutoActivate: d.AutoActivate,
		Budget:       d.Budget,
		CreatedBy:    d.Actor,
		UpdatedBy:    d.Actor,
	}
}

// apply validates the fields of one step and returns the updated draft.
func (d Draft) apply(step Step, fields map[string]string, today model.Date) (Draft, error) {
	var ve model.ValidationError
	fail := func(field, msg string) {
		ve.Errors = append(ve.Errors, model.FieldError{Field: field, Message: msg})
	}
	get := func(k string) string { return strings.TrimSpace(fields[k]) }

	switch step {
	case StepBasics:
		if get("name") == "" {
			fail("name", "is required")
		}
		t := model.CampaignType(strings.ToLower(get("type")))
		if t == "" {
			t = model.CampaignPromotional
		}
		if !t.IsValid() {
			fail("type", "must be promotional, targeted or seasonal")
		}
		d.Name, d.Type, d.Description = get("name"), t, get("description")

	case StepSchedule:
		start, end := model.ParseDate(get("start_date")), model.ParseDate(get("end_date"))
		if !start.Valid() {
			fail("start_date", "must be a YYYY-MM-DD date")
		} else if start.Compare(today) < 0 {
			fail("start_date", "must not be in the past")
		}
		if !end.Valid() {
			fail("end_date", "must be a YYYY-MM-DD date")
		} else if start.Valid() && end.Compare(start) < 0 {
			fail("end_date", "must not be before start_date")
		}
		d.StartDate, d.EndDate = start, end

	case StepBudget:
		raw := strings.TrimPrefix(strings.ReplaceAll(get("budget"), ",", ""), "$")
		b, err := decimal.NewFromString(raw)
		switch {
		case err != nil:
			fail("budget", "must be a number")
		case b.IsNegative():
			fail("budget", "must not be negative")
		}
		d.Budget = b.Round(2)
		if v := get("auto_activate"); v != "" {
			auto, err := strconv.ParseBool(v)
			if err != nil {
				fail("auto_activate", "must be true or false")
			}
			d.AutoActivate = auto
		}

	case StepReview:
		switch strings.ToLower(get("confirm")) {
		case "yes", "y", "true":
		default:
			fail("confirm", "answer yes to create the campaign, or go back")
		}
	}

	if ve.HasErrors() {
		return d, &ve
	}
	return d, nil
}
