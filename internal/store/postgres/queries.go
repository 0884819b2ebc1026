package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
	"github.com/kigopro/kigo/internal/store"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mapErr translates driver errors into store errors.
func mapErr(kind, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", kind, id, store.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %s: %w", kind, id, pqErr.Constraint, store.ErrNotFound)
		}
	}
	return fmt.Errorf("%s %s: %w", kind, id, err)
}

// affected returns sql.ErrNoRows when an UPDATE matched nothing.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Customers

func queryCreateCustomer(ctx context.Context, db executor, c *model.Customer) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.ExtraCareID,
		c.AccountCreated,
		c.Address.Street,
		c.Address.AptUnit,
		c.Address.City,
		c.Address.State,
		c.Address.Zip,
		c.CreatedAt,
	)
	return mapErr("customer", c.ID, err)
}

func queryGetCustomer(ctx context.Context, db executor, id string) (*model.Customer, error) {
	row := db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, mapErr("customer", id, err)
	}
	return c, nil
}

func querySearchCustomers(ctx context.Context, db executor, today model.Date, req model.ListRequest) (listing.Page[*model.Customer], error) {
	return list(ctx, db, customersTable, today, req, nil, scanCustomer)
}

// Tokens

func tokenArgs(t *model.Token) ([]any, error) {
	actions, err := supportActionsJSON(t.SupportActions)
	if err != nil {
		return nil, err
	}
	var dollars sql.NullString
	if v, ok := t.MonetaryValue(); ok {
		dollars = sql.NullString{String: v.String(), Valid: true}
	}
	return []any{
		t.ID,
		nullString(t.CustomerID),
		t.Name,
		t.Description,
		string(t.Type),
		string(t.State),
		t.ClaimDate,
		t.UseDate,
		t.ShareDate,
		t.ExpirationDate,
		t.MerchantName,
		t.MerchantLocation,
		t.Value,
		t.ExternalURL,
		t.Disputed,
		t.DisputeReason,
		t.NotHonored,
		actions,
		t.CreatedAt,
		t.UpdatedAt,
		dollars,
	}, nil
}

func queryCreateToken(ctx context.Context, db executor, t *model.Token) error {
	args, err := tokenArgs(t)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO tokens (`+tokenColumns+`, dollar_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21)`,
		args...,
	)
	return mapErr("token", t.ID, err)
}

func queryGetToken(ctx context.Context, db executor, id string) (*model.Token, error) {
	row := db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE id = $1`, id)
	t, err := scanToken(row)
	if err != nil {
		return nil, mapErr("token", id, err)
	}
	return t, nil
}

func queryUpdateToken(ctx context.Context, db executor, t *model.Token) error {
	args, err := tokenArgs(t)
	if err != nil {
		return err
	}
	// created_at is immutable; drop it from the insert arguments.
	args = append(args[:18:18], t.UpdatedAt, args[20])
	err = affected(db.ExecContext(ctx, `
		UPDATE tokens SET
			customer_id = $2,
			name = $3,
			description = $4,
			type = $5,
			state = $6,
			claim_date = $7,
			use_date = $8,
			share_date = $9,
			expiration_date = $10,
			merchant_name = $11,
			merchant_location = $12,
			value = $13,
			external_url = $14,
			disputed = $15,
			dispute_reason = $16,
			not_honored = $17,
			support_actions = $18,
			updated_at = $19,
			dollar_value = $20
		WHERE id = $1`,
		args...,
	))
	return mapErr("token", t.ID, err)
}

func queryCustomerExists(ctx context.Context, db executor, id string) error {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM customers WHERE id = $1`, id).Scan(&one)
	return mapErr("customer", id, err)
}

func queryListTokens(ctx context.Context, db executor, today model.Date, customerID string, req model.ListRequest) (listing.Page[*model.Token], error) {
	if err := queryCustomerExists(ctx, db, customerID); err != nil {
		return listing.Page[*model.Token]{}, err
	}
	return list(ctx, db, tokensTable, today, req, func(q *listQuery) {
		q.and("customer_id = " + q.arg(customerID))
	}, scanToken)
}

func queryListCatalog(ctx context.Context, db executor, today model.Date, req model.ListRequest) (listing.Page[*model.Token], error) {
	return list(ctx, db, tokensTable, today, req, func(q *listQuery) {
		q.and("customer_id IS NULL")
	}, scanToken)
}

// Ads

func queryCreateAd(ctx context.Context, db executor, a *model.Ad) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO ads (`+adColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID,
		a.Name,
		string(a.Status),
		a.MerchantID,
		a.MerchantName,
		a.OfferID,
		string(a.OfferType),
		pq.Array(a.Channels),
		a.StartDate,
		a.EndDate,
		a.Budget,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return mapErr("ad", a.ID, err)
}

func queryGetAd(ctx context.Context, db executor, id string) (*model.Ad, error) {
	row := db.QueryRowContext(ctx, `SELECT `+adColumns+` FROM ads WHERE id = $1`, id)
	a, err := scanAd(row)
	if err != nil {
		return nil, mapErr("ad", id, err)
	}
	return a, nil
}

func queryUpdateAd(ctx context.Context, db executor, a *model.Ad) error {
	err := affected(db.ExecContext(ctx, `
		UPDATE ads SET
			name = $2,
			status = $3,
			merchant_id = $4,
			merchant_name = $5,
			offer_id = $6,
			offer_type = $7,
			channels = $8,
			start_date = $9,
			end_date = $10,
			budget = $11,
			updated_at = $12
		WHERE id = $1`,
		a.ID,
		a.Name,
		string(a.Status),
		a.MerchantID,
		a.MerchantName,
		a.OfferID,
		string(a.OfferType),
		pq.Array(a.Channels),
		a.StartDate,
		a.EndDate,
		a.Budget,
		a.UpdatedAt,
	))
	return mapErr("ad", a.ID, err)
}

func queryListAds(ctx context.Context, db executor, today model.Date, req model.ListRequest) (listing.Page[*model.Ad], error) {
	return list(ctx, db, adsTable, today, req, nil, scanAd)
}

// Ad groups

func queryCreateAdGroup(ctx context.Context, db executor, g *model.AdGroup) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO ad_groups (`+adGroupColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID,
		g.Name,
		g.Description,
		string(g.Status),
		pq.Array(g.AdIDs),
		g.CreatedAt,
		g.LastModified,
	)
	return mapErr("ad group", g.ID, err)
}

func queryGetAdGroup(ctx context.Context, db executor, id string) (*model.AdGroup, error) {
	row := db.QueryRowContext(ctx, `SELECT `+adGroupColumns+` FROM ad_groups WHERE id = $1`, id)
	g, err := scanAdGroup(row)
	if err != nil {
		return nil, mapErr("ad group", id, err)
	}
	return g, nil
}

func queryUpdateAdGroup(ctx context.Context, db executor, g *model.AdGroup) error {
	err := affected(db.ExecContext(ctx, `
		UPDATE ad_groups SET
			name = $2,
			description = $3,
			status = $4,
			ad_ids = $5,
			last_modified = $6
		WHERE id = $1`,
		g.ID,
		g.Name,
		g.Description,
		string(g.Status),
		pq.Array(g.AdIDs),
		g.LastModified,
	))
	return mapErr("ad group", g.ID, err)
}

func queryListAdGroups(ctx context.Context, db executor, today model.Date, req model.ListRequest) (listing.Page[*model.AdGroup], error) {
	return list(ctx, db, adGroupsTable, today, req, nil, scanAdGroup)
}

// Campaigns

func queryCreateCampaign(ctx context.Context, db executor, c *model.Campaign) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO campaigns (
			id, partner_id, partner_name, program_id, program_name,
			name, type, description, start_date, end_date, active, auto_activate,
			auto_deactivate, has_products, budget, created_at, created_by,
			updated_at, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		)`,
		c.ID,
		c.PartnerID,
		c.PartnerName,
		c.ProgramID,
		c.ProgramName,
		c.Name,
		string(c.Type),
		c.Description,
		c.StartDate,
		c.EndDate,
		c.Active,
		c.AutoActivate,
		c.AutoDeactivate,
		c.HasProducts,
		c.Budget,
		c.CreatedAt,
		c.CreatedBy,
		c.UpdatedAt,
		c.UpdatedBy,
	)
	return mapErr("campaign", c.ID, err)
}

func queryGetCampaign(ctx context.Context, db executor, today model.Date, id string) (*model.Campaign, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+campaignColumns+`
		FROM (SELECT c.*, `+campaignStatus("$2")+` AS status FROM campaigns c) AS campaigns
		WHERE id = $1`,
		id, today,
	)
	c, err := scanCampaign(row)
	if err != nil {
		return nil, mapErr("campaign", id, err)
	}
	return c, nil
}

func queryUpdateCampaign(ctx context.Context, db executor, c *model.Campaign) error {
	err := affected(db.ExecContext(ctx, `
		UPDATE campaigns SET
			partner_id = $2,
			partner_name = $3,
			program_id = $4,
			program_name = $5,
			name = $6,
			type = $7,
			description = $8,
			start_date = $9,
			end_date = $10,
			active = $11,
			auto_activate = $12,
			auto_deactivate = $13,
			has_products = $14,
			budget = $15,
			updated_at = $16,
			updated_by = $17
		WHERE id = $1`,
		c.ID,
		c.PartnerID,
		c.PartnerName,
		c.ProgramID,
		c.ProgramName,
		c.Name,
		string(c.Type),
		c.Description,
		c.StartDate,
		c.EndDate,
		c.Active,
		c.AutoActivate,
		c.AutoDeactivate,
		c.HasProducts,
		c.Budget,
		c.UpdatedAt,
		c.UpdatedBy,
	))
	return mapErr("campaign", c.ID, err)
}

func queryListCampaigns(ctx context.Context, db executor, today model.Date, req model.ListRequest) (listing.Page[*model.Campaign], error) {
	return list(ctx, db, campaignsTable, today, req, nil, scanCampaign)
}

// Events

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, entity_id, actor, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		e.Topic,
		e.EntityID,
		nullString(e.Actor),
		jsonbBytes(e.Payload),
		e.CreatedAt,
	).Scan(&e.ID)
}

func queryListEvents(ctx context.Context, db executor, entityID string) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, entity_id, actor, payload, created_at
		FROM events
		WHERE $1 = '' OR entity_id = $1
		ORDER BY id`,
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}
