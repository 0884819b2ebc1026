package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/kigopro/kigo/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanCustomer scans a row in customerColumns order.
func scanCustomer(row scannable) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.ExtraCareID,
		&c.AccountCreated,
		&c.Address.Street,
		&c.Address.AptUnit,
		&c.Address.City,
		&c.Address.State,
		&c.Address.Zip,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanToken scans a row in tokenColumns order.
func scanToken(row scannable) (*model.Token, error) {
	var t model.Token
	var (
		customerID sql.NullString
		actions    []byte
	)
	err := row.Scan(
		&t.ID,
		&customerID,
		&t.Name,
		&t.Description,
		&t.Type,
		&t.State,
		&t.ClaimDate,
		&t.UseDate,
		&t.ShareDate,
		&t.ExpirationDate,
		&t.MerchantName,
		&t.MerchantLocation,
		&t.Value,
		&t.ExternalURL,
		&t.Disputed,
		&t.DisputeReason,
		&t.NotHonored,
		&actions,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.CustomerID = customerID.String
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &t.SupportActions); err != nil {
			return nil, fmt.Errorf("token %s support_actions: %w", t.ID, err)
		}
	}
	return &t, nil
}

// scanAd scans a row in adColumns order.
func scanAd(row scannable) (*model.Ad, error) {
	var a model.Ad
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Status,
		&a.MerchantID,
		&a.MerchantName,
		&a.OfferID,
		&a.OfferType,
		pq.Array(&a.Channels),
		&a.StartDate,
		&a.EndDate,
		&a.Budget,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scanAdGroup scans a row in adGroupColumns order.
func scanAdGroup(row scannable) (*model.AdGroup, error) {
	var g model.AdGroup
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.Status,
		pq.Array(&g.AdIDs),
		&g.CreatedAt,
		&g.LastModified,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// scanCampaign scans a row in campaignColumns order. Status is the
// derived column of the campaigns query.
func scanCampaign(row scannable) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID,
		&c.PartnerID,
		&c.PartnerName,
		&c.ProgramID,
		&c.ProgramName,
		&c.Name,
		&c.Type,
		&c.Description,
		&c.StartDate,
		&c.EndDate,
		&c.Active,
		&c.AutoActivate,
		&c.AutoDeactivate,
		&c.HasProducts,
		&c.Budget,
		&c.Status,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.UpdatedAt,
		&c.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.EntityID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of model.Event pointers.
func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	events := []*model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}

// supportActionsJSON encodes a token's audit trail for its JSONB column.
func supportActionsJSON(actions []model.SupportAction) ([]byte, error) {
	if len(actions) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(actions)
}
