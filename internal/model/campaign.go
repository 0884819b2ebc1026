package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CampaignType classifies a campaign.
type CampaignType string

const (
	CampaignPromotional CampaignType = "promotional"
	CampaignTargeted    CampaignType = "targeted"
	CampaignSeasonal    CampaignType = "seasonal"
)

// IsValid checks whether the campaign type is a known value.
func (t CampaignType) IsValid() bool {
	switch t {
	case CampaignPromotional, CampaignTargeted, CampaignSeasonal:
		return true
	}
	return false
}

// CampaignStatus is derived from a campaign's dates and active flag; it is
// never set directly.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignRunning   CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignEnded     CampaignStatus = "ended"
)

// IsValid checks whether the campaign status is a known value.
func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignRunning, CampaignPaused, CampaignEnded:
		return true
	}
	return false
}

// Campaign groups offers for a partner program over a date window.
type Campaign struct {
	ID             string          `json:"id"`
	PartnerID      string          `json:"partner_id"`
	PartnerName    string          `json:"partner_name"`
	ProgramID      string          `json:"program_id"`
	ProgramName    string          `json:"program_name"`
	Name           string          `json:"name"`
	Type           CampaignType    `json:"type"`
	Description    string          `json:"description,omitempty"`
	StartDate      Date            `json:"start_date"`
	EndDate        Date            `json:"end_date"`
	Active         bool            `json:"active"`
	AutoActivate   bool            `json:"auto_activate"`
	AutoDeactivate bool            `json:"auto_deactivate"`
	HasProducts    bool            `json:"has_products"`
	Budget         decimal.Decimal `json:"budget"`
	Status         CampaignStatus  `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	CreatedBy      string          `json:"created_by,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
	UpdatedBy      string          `json:"updated_by,omitempty"`
}

// ComputeStatus derives the campaign status as of today:
//
//   - past the end date: ended
//   - active and started: active
//   - not yet started: scheduled if active or auto-activating, else draft
//   - started but inactive: paused
func (c *Campaign) ComputeStatus(today Date) CampaignStatus {
	if c.EndDate.Valid() && today.Compare(c.EndDate) > 0 {
		return CampaignEnded
	}
	started := c.StartDate.Valid() && today.Compare(c.StartDate) >= 0
	switch {
	case started && c.Active:
		return CampaignRunning
	case started:
		return CampaignPaused
	case c.Active || c.AutoActivate:
		return CampaignScheduled
	}
	return CampaignDraft
}

// RefreshStatus sets Status from ComputeStatus.
func (c *Campaign) RefreshStatus(today Date) {
	c.Status = c.ComputeStatus(today)
}
