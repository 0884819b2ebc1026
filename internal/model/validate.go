package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) err() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

const maxNameLen = 200

func (e *ValidationError) requireName(field, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		e.add(field, "is required")
	} else if utf8.RuneCountInString(name) > maxNameLen {
		e.add(field, "must be %d characters or fewer", maxNameLen)
	}
}

// dateOrder checks that both dates parse and that end is not before start.
func (e *ValidationError) dateOrder(startField string, start Date, endField string, end Date) {
	if !start.IsZero() && !start.Valid() {
		e.add(startField, "invalid date %q", start.String())
	}
	if !end.IsZero() && !end.Valid() {
		e.add(endField, "invalid date %q", end.String())
	}
	if start.Valid() && end.Valid() && end.Compare(start) < 0 {
		e.add(endField, "must not be before %s", startField)
	}
}

// ValidateToken checks a Token for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the token is valid.
func ValidateToken(t *Token) error {
	var ve ValidationError
	ve.requireName("name", t.Name)
	if !t.Type.IsValid() {
		ve.add("type", "invalid value %q", t.Type)
	}
	if !t.State.IsValid() {
		ve.add("state", "invalid value %q", t.State)
	}
	ve.dateOrder("claim_date", t.ClaimDate, "expiration_date", t.ExpirationDate)
	if t.State == TokenUsed && !t.UseDate.Valid() {
		ve.add("use_date", "is required when state is Used")
	}
	if t.State == TokenShared && !t.ShareDate.Valid() {
		ve.add("share_date", "is required when state is Shared")
	}
	if t.Disputed && strings.TrimSpace(t.DisputeReason) == "" {
		ve.add("dispute_reason", "is required when disputed")
	}
	return ve.err()
}

// ValidateCustomer checks a Customer for constraint violations.
func ValidateCustomer(c *Customer) error {
	var ve ValidationError
	if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" {
		ve.add("name", "first or last name is required")
	}
	if email := strings.TrimSpace(c.Email); email == "" {
		ve.add("email", "is required")
	} else if at := strings.IndexByte(email, '@'); at <= 0 || at == len(email)-1 {
		ve.add("email", "invalid address %q", email)
	}
	return ve.err()
}

// ValidateAd checks an Ad for constraint violations.
func ValidateAd(a *Ad) error {
	var ve ValidationError
	ve.requireName("name", a.Name)
	if !a.Status.IsValid() {
		ve.add("status", "invalid value %q", a.Status)
	}
	if !a.OfferType.IsValid() {
		ve.add("offer_type", "invalid value %q", a.OfferType)
	}
	if a.Budget.IsNegative() {
		ve.add("budget", "must not be negative")
	}
	ve.dateOrder("start_date", a.StartDate, "end_date", a.EndDate)
	return ve.err()
}

// ValidateAdGroup checks an AdGroup for constraint violations.
func ValidateAdGroup(g *AdGroup) error {
	var ve ValidationError
	ve.requireName("name", g.Name)
	if !g.Status.IsValid() {
		ve.add("status", "invalid value %q", g.Status)
	}
	return ve.err()
}

// ValidateCampaign checks a Campaign for constraint violations.
func ValidateCampaign(c *Campaign) error {
	var ve ValidationError
	ve.requireName("name", c.Name)
	if strings.TrimSpace(c.PartnerID) == "" {
		ve.add("partner_id", "is required")
	}
	if strings.TrimSpace(c.ProgramID) == "" {
		ve.add("program_id", "is required")
	}
	if !c.Type.IsValid() {
		ve.add("type", "invalid value %q", c.Type)
	}
	if !c.StartDate.Valid() {
		ve.add("start_date", "is required")
	}
	if !c.EndDate.Valid() {
		ve.add("end_date", "is required")
	}
	ve.dateOrder("start_date", c.StartDate, "end_date", c.EndDate)
	if c.Budget.IsNegative() {
		ve.add("budget", "must not be negative")
	}
	return ve.err()
}

// ValidateListRequest checks the caller-controlled parts of a list request.
func ValidateListRequest(r *ListRequest) error {
	var ve ValidationError
	ve.dateOrder("from", r.Filters.DateRange.Start, "to", r.Filters.DateRange.End)
	if r.Filters.MinValue != nil && r.Filters.MinValue.IsNegative() {
		ve.add("min_value", "must not be negative")
	}
	if r.Pagination.CurrentPage < 0 {
		ve.add("page", "must be positive")
	}
	if r.Pagination.PageSize < 0 {
		ve.add("page_size", "must be positive")
	}
	switch r.Sort.Direction {
	case "", Asc, Desc:
	default:
		ve.add("sort", "invalid direction %q", r.Sort.Direction)
	}
	return ve.err()
}
