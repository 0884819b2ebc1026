package postgres

import (
	"github.com/kigopro/kigo/internal/listing"
)

// Column lists used for SELECT statements, in scan order.
const (
	customerColumns = `id, first_name, last_name, email, phone, extracare_id,
	account_created, street, apt_unit, city, state, zip, created_at`

	tokenColumns = `id, customer_id, name, description, type, state,
	claim_date, use_date, share_date, expiration_date, merchant_name,
	merchant_location, value, external_url, disputed, dispute_reason,
	not_honored, support_actions, created_at, updated_at`

	adColumns = `id, name, status, merchant_id, merchant_name, offer_id,
	offer_type, channels, start_date, end_date, budget, created_at, updated_at`

	adGroupColumns = `id, name, description, status, ad_ids, created_at, last_modified`

	campaignColumns = `id, partner_id, partner_name, program_id, program_name,
	name, type, description, start_date, end_date, active, auto_activate,
	auto_deactivate, has_products, budget, status, created_at, created_by,
	updated_at, updated_by`
)

// Text sorts compare byte-wise, like the in-memory sorter.
func byText(col string) []string { return []string{col + ` COLLATE "C"`} }
func byFold(col string) []string { return []string{`lower(` + col + `) COLLATE "C"`} }
func byCol(col string) []string  { return []string{col} }

// dateIdent renders a date column as the YYYY-MM-DD string filter
// expressions compare against. NULL reads as "".
func dateIdent(col string) string {
	return `COALESCE(to_char(` + col + `, 'YYYY-MM-DD'), '')`
}

// tokenActivity mirrors Token.ActivityDate.
const tokenActivity = `CASE state WHEN 'Used' THEN use_date WHEN 'Shared' THEN share_date ELSE claim_date END`

// campaignStatus mirrors Campaign.ComputeStatus for the day in today.
func campaignStatus(today string) string {
	d := `CAST(` + today + ` AS date)`
	return `CASE
		WHEN end_date IS NOT NULL AND ` + d + ` > end_date THEN 'ended'
		WHEN start_date IS NOT NULL AND ` + d + ` >= start_date AND active THEN 'active'
		WHEN start_date IS NOT NULL AND ` + d + ` >= start_date THEN 'paused'
		WHEN active OR auto_activate THEN 'scheduled'
		ELSE 'draft'
	END`
}

// campaignsFrom derives status as of the query's day.
func campaignsFrom(q *listQuery) string {
	return `(SELECT c.*, ` + campaignStatus(q.arg(q.today)) + ` AS status FROM campaigns c) AS campaigns`
}

var customersTable = &table{
	name:    "customers",
	columns: customerColumns,
	search: []string{
		"email", "first_name", "last_name",
		`concat_ws(' ', NULLIF(first_name, ''), NULLIF(last_name, ''))`,
		"phone", "extracare_id",
	},
	rangeStart: "account_created",
	rangeEnd:   "account_created",
	sorts: map[string][]string{
		"last_name":       append(byFold("last_name"), byFold("first_name")...),
		"first_name":      byFold("first_name"),
		"email":           byFold("email"),
		"account_created": byCol("account_created"),
	},
	defaultSort: listing.CustomerSchema.DefaultSort,
	idents: map[string]string{
		"email":        "email",
		"extracare_id": "extracare_id",
		"city":         "city",
		"state":        "state",
	},
	kinds: listing.CustomerSchema.IdentKinds(),
}

var tokensTable = &table{
	name:       "tokens",
	columns:    tokenColumns,
	search:     []string{"name", "description", "value", "merchant_name", "merchant_location"},
	status:     "state",
	typ:        "type",
	rangeStart: tokenActivity,
	rangeEnd:   "expiration_date",
	fieldText:  "merchant_name",
	value:      "dollar_value",
	sorts: map[string][]string{
		"name":            byFold("name"),
		"type":            byText("type"),
		"state":           byText("state"),
		"value":           byCol("dollar_value"),
		"merchant_name":   byFold("merchant_name"),
		"claim_date":      byCol("claim_date"),
		"expiration_date": byCol("expiration_date"),
	},
	defaultSort: listing.TokenSchema.DefaultSort,
	idents: map[string]string{
		"customer_id":       "COALESCE(customer_id, '')",
		"name":              "name",
		"type":              "type",
		"state":             "state",
		"merchant_name":     "merchant_name",
		"merchant_location": "merchant_location",
		"value":             "value",
		"claim_date":        dateIdent("claim_date"),
		"use_date":          dateIdent("use_date"),
		"share_date":        dateIdent("share_date"),
		"expiration_date":   dateIdent("expiration_date"),
		"disputed":          "disputed",
		"not_honored":       "not_honored",
		// NULL for non-monetary values; reads as 0 like the in-memory ident.
		"dollar_value": "CAST(COALESCE(dollar_value, 0) AS double precision)",
	},
	kinds: listing.TokenSchema.IdentKinds(),
}

var adsTable = &table{
	name:       "ads",
	columns:    adColumns,
	search:     []string{"name", "merchant_name", "id", "offer_id"},
	searchList: []string{"channels"},
	status:     "status",
	typ:        "offer_type",
	rangeStart: "start_date",
	rangeEnd:   "end_date",
	fieldText:  "merchant_name",
	value:      "budget",
	sorts: map[string][]string{
		"name":          byFold("name"),
		"status":        byText("status"),
		"merchant_name": byFold("merchant_name"),
		"offer_type":    byText("offer_type"),
		"start_date":    byCol("start_date"),
		"end_date":      byCol("end_date"),
		"budget":        byCol("budget"),
	},
	defaultSort: listing.AdSchema.DefaultSort,
	idents: map[string]string{
		"name":          "name",
		"status":        "status",
		"merchant_id":   "merchant_id",
		"merchant_name": "merchant_name",
		"offer_type":    "offer_type",
		"start_date":    dateIdent("start_date"),
		"end_date":      dateIdent("end_date"),
		"budget":        "CAST(budget AS double precision)",
	},
	kinds: listing.AdSchema.IdentKinds(),
}

var adGroupsTable = &table{
	name:       "ad_groups",
	columns:    adGroupColumns,
	search:     []string{"name", "description"},
	status:     "status",
	rangeStart: "created_at",
	rangeEnd:   "created_at",
	sorts: map[string][]string{
		"name":          byFold("name"),
		"status":        byText("status"),
		"created_at":    byCol("created_at"),
		"last_modified": byCol("last_modified"),
		"ads":           byCol("COALESCE(cardinality(ad_ids), 0)"),
	},
	defaultSort: listing.AdGroupSchema.DefaultSort,
	idents: map[string]string{
		"name":          "name",
		"status":        "status",
		"created_at":    dateIdent("created_at"),
		"last_modified": dateIdent("last_modified"),
		"ad_count":      "COALESCE(cardinality(ad_ids), 0)",
	},
	kinds: listing.AdGroupSchema.IdentKinds(),
}

var campaignsTable = &table{
	name:       "campaigns",
	columns:    campaignColumns,
	from:       campaignsFrom,
	search:     []string{"name", "description", "partner_name", "program_name"},
	status:     "status",
	typ:        "type",
	rangeStart: "start_date",
	rangeEnd:   "end_date",
	fieldText:  "partner_name",
	value:      "budget",
	sorts: map[string][]string{
		"name":         byFold("name"),
		"type":         byText("type"),
		"status":       byText("status"),
		"partner_name": byFold("partner_name"),
		"start_date":   byCol("start_date"),
		"end_date":     byCol("end_date"),
		"budget":       byCol("budget"),
	},
	defaultSort: listing.CampaignSchema.DefaultSort,
	idents: map[string]string{
		"name":         "name",
		"type":         "type",
		"status":       "status",
		"partner_id":   "partner_id",
		"partner_name": "partner_name",
		"program_id":   "program_id",
		"start_date":   dateIdent("start_date"),
		"end_date":     dateIdent("end_date"),
		"active":       "active",
		"has_products": "has_products",
		"budget":       "CAST(budget AS double precision)",
	},
	kinds: listing.CampaignSchema.IdentKinds(),
}
