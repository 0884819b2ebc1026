package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdStatus is the publishing state of an ad.
type AdStatus string

const (
	AdPublished AdStatus = "Published"
	AdActive    AdStatus = "Active"
	AdPaused    AdStatus = "Paused"
	AdDraft     AdStatus = "Draft"
	AdEnded     AdStatus = "Ended"
)

// String returns the string representation of the ad status.
func (s AdStatus) String() string {
	return string(s)
}

// IsValid checks whether the ad status is a known value.
func (s AdStatus) IsValid() bool {
	switch s {
	case AdPublished, AdActive, AdPaused, AdDraft, AdEnded:
		return true
	}
	return false
}

// OfferType is the mechanic of the offer behind an ad.
type OfferType string

const (
	OfferAmountOff  OfferType = "AMT"  // dollar amount off
	OfferPercentOff OfferType = "PCT"  // percent off
	OfferFreeItem   OfferType = "FREE" // free item
	OfferCash       OfferType = "CASH" // cash back
	OfferSpecial    OfferType = "SPEC" // special price
	OfferBOGO       OfferType = "BOGO"
	OfferClick      OfferType = "CLK" // click-through
	OfferCashback   OfferType = "CB"
)

// IsValid checks whether the offer type is a known value.
func (t OfferType) IsValid() bool {
	switch t {
	case OfferAmountOff, OfferPercentOff, OfferFreeItem, OfferCash,
		OfferSpecial, OfferBOGO, OfferClick, OfferCashback:
		return true
	}
	return false
}

// Ad is a merchant offer placed on one or more channels.
type Ad struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Status       AdStatus        `json:"status"`
	MerchantID   string          `json:"merchant_id,omitempty"`
	MerchantName string          `json:"merchant_name"`
	OfferID      string          `json:"offer_id,omitempty"`
	OfferType    OfferType       `json:"offer_type"`
	Channels     []string        `json:"channels,omitempty"`
	StartDate    Date            `json:"start_date,omitzero"`
	EndDate      Date            `json:"end_date,omitzero"`
	Budget       decimal.Decimal `json:"budget"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AdGroupStatus is the state of an ad group.
type AdGroupStatus string

const (
	AdGroupActive AdGroupStatus = "active"
	AdGroupPaused AdGroupStatus = "paused"
	AdGroupDraft  AdGroupStatus = "draft"
)

// IsValid checks whether the ad group status is a known value.
func (s AdGroupStatus) IsValid() bool {
	switch s {
	case AdGroupActive, AdGroupPaused, AdGroupDraft:
		return true
	}
	return false
}

// AdGroup bundles ads that are managed together.
type AdGroup struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Status       AdGroupStatus `json:"status"`
	AdIDs        []string      `json:"ad_ids,omitempty"`
	CreatedAt    Date          `json:"created_at,omitzero"`
	LastModified Date          `json:"last_modified,omitzero"`
}
