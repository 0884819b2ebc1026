package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TokenType categorizes a loyalty token.
type TokenType string

const (
	TokenCoupon     TokenType = "Coupon"
	TokenReward     TokenType = "Reward"
	TokenExtraBucks TokenType = "ExtraBucks"
	TokenLightning  TokenType = "Lightning"
)

// TokenTypes lists every token type in display order.
var TokenTypes = []TokenType{TokenCoupon, TokenReward, TokenExtraBucks, TokenLightning}

// String returns the string representation of the token type.
func (t TokenType) String() string {
	return string(t)
}

// IsValid checks whether the token type is a known value.
func (t TokenType) IsValid() bool {
	switch t {
	case TokenCoupon, TokenReward, TokenExtraBucks, TokenLightning:
		return true
	}
	return false
}

// TokenState is the lifecycle state of a token held by a customer.
type TokenState string

const (
	TokenActive  TokenState = "Active"
	TokenShared  TokenState = "Shared"
	TokenUsed    TokenState = "Used"
	TokenExpired TokenState = "Expired"
)

// TokenStates lists every token state in display order.
var TokenStates = []TokenState{TokenActive, TokenShared, TokenUsed, TokenExpired}

// String returns the string representation of the token state.
func (s TokenState) String() string {
	return string(s)
}

// IsValid checks whether the token state is a known value.
func (s TokenState) IsValid() bool {
	switch s {
	case TokenActive, TokenShared, TokenUsed, TokenExpired:
		return true
	}
	return false
}

// Support action types recorded against a token by customer support.
const (
	ActionReissued = "reissued"
	ActionDisputed = "disputed"
)

// SupportAction is an audit entry left on a token by a support agent.
type SupportAction struct {
	Type  string    `json:"type"`
	Note  string    `json:"note,omitempty"`
	Actor string    `json:"actor,omitempty"`
	At    time.Time `json:"at"`
}

// Token is an offer a customer has claimed, or a catalog entry when
// CustomerID is empty.
type Token struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customer_id,omitempty"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Type             TokenType       `json:"type"`
	State            TokenState      `json:"state"`
	ClaimDate        Date            `json:"claim_date,omitzero"`
	UseDate          Date            `json:"use_date,omitzero"`
	ShareDate        Date            `json:"share_date,omitzero"`
	ExpirationDate   Date            `json:"expiration_date,omitzero"`
	MerchantName     string          `json:"merchant_name,omitempty"`
	MerchantLocation string          `json:"merchant_location,omitempty"`
	Value            string          `json:"value,omitempty"` // "$5.00", "20%", "FREE"
	ExternalURL      string          `json:"external_url,omitempty"`
	Disputed         bool            `json:"disputed,omitempty"`
	DisputeReason    string          `json:"dispute_reason,omitempty"`
	NotHonored       bool            `json:"not_honored,omitempty"`
	SupportActions   []SupportAction `json:"support_actions,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ActivityDate is the date a token last changed hands: the use date for
// used tokens, the share date for shared ones, otherwise the claim date.
func (t *Token) ActivityDate() Date {
	switch t.State {
	case TokenUsed:
		return t.UseDate
	case TokenShared:
		return t.ShareDate
	}
	return t.ClaimDate
}

// MonetaryValue returns the dollar amount of a "$x" value. Percentage and
// free-item tokens report false.
func (t *Token) MonetaryValue() (decimal.Decimal, bool) {
	return ParseDollars(t.Value)
}

// ParseDollars parses strings such as "$5", "$10.00" or "$1,250.50".
func ParseDollars(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "$") {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s[1:], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
