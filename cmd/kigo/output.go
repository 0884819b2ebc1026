package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
	"github.com/kigopro/kigo/internal/ui"
)

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// column is one table column over T.
type column[T any] struct {
	header string
	value  func(T) string
}

// printTable renders items as a tab-aligned table followed by the
// pagination footer.
func printTable[T any](w io.Writer, cols []column[T], items []T, p listing.Pagination, strip []listing.PageNumber) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, it := range items {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.value(it)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
	fmt.Fprintln(w)
	fmt.Fprintln(w, pageFooter(p, strip))
}

// pageFooter renders "Showing 5-8 of 30   < 1 2 [3] 4 ... 8 >".
func pageFooter(p listing.Pagination, strip []listing.PageNumber) string {
	if p.TotalItems == 0 {
		return "No results"
	}
	return fmt.Sprintf("Showing %d-%d of %d   %s", p.StartIndex+1, p.EndIndex, p.TotalItems, pageStrip(p.CurrentPage, strip))
}

// pageStrip renders the page-number strip with the current page marked.
func pageStrip(current int, strip []listing.PageNumber) string {
	parts := make([]string, 0, len(strip))
	for _, n := range strip {
		switch {
		case n.IsEllipsis():
			parts = append(parts, ui.RenderMuted(n.String()))
		case int(n) == current:
			parts = append(parts, ui.RenderAccent("["+n.String()+"]"))
		default:
			parts = append(parts, n.String())
		}
	}
	return strings.Join(parts, " ")
}

func printResponse[T any](cols []column[T], resp *listing.Response[T]) error {
	if jsonOutput {
		return printJSON(resp)
	}
	printTable(os.Stdout, cols, resp.Items, resp.Pagination, resp.PageNumbers)
	return nil
}

func titleWidth() int {
	return max(20, ui.Width(120)/3)
}

var tokenColumns = []column[*model.Token]{
	{"ID", func(t *model.Token) string { return t.ID }},
	{"STATE", func(t *model.Token) string { return ui.RenderStatus(string(t.State)) }},
	{"TYPE", func(t *model.Token) string { return string(t.Type) }},
	{"VALUE", func(t *model.Token) string { return t.Value }},
	{"NAME", func(t *model.Token) string { return ui.Truncate(t.Name, titleWidth()) }},
	{"MERCHANT", func(t *model.Token) string { return t.MerchantName }},
	{"CLAIMED", func(t *model.Token) string { return t.ClaimDate.String() }},
	{"EXPIRES", func(t *model.Token) string { return t.ExpirationDate.String() }},
}

var customerColumns = []column[*model.Customer]{
	{"ID", func(c *model.Customer) string { return c.ID }},
	{"NAME", func(c *model.Customer) string { return c.FullName() }},
	{"EMAIL", func(c *model.Customer) string { return c.Email }},
	{"PHONE", func(c *model.Customer) string { return c.Phone }},
	{"EXTRACARE", func(c *model.Customer) string { return c.ExtraCareID }},
}

var adColumns = []column[*model.Ad]{
	{"ID", func(a *model.Ad) string { return a.ID }},
	{"STATUS", func(a *model.Ad) string { return ui.RenderStatus(string(a.Status)) }},
	{"NAME", func(a *model.Ad) string { return ui.Truncate(a.Name, titleWidth()) }},
	{"MERCHANT", func(a *model.Ad) string { return a.MerchantName }},
	{"OFFER", func(a *model.Ad) string { return string(a.OfferType) }},
	{"BUDGET", func(a *model.Ad) string { return "$" + a.Budget.StringFixed(2) }},
	{"START", func(a *model.Ad) string { return a.StartDate.String() }},
	{"END", func(a *model.Ad) string { return a.EndDate.String() }},
}

var adGroupColumns = []column[*model.AdGroup]{
	{"ID", func(g *model.AdGroup) string { return g.ID }},
	{"STATUS", func(g *model.AdGroup) string { return ui.RenderStatus(string(g.Status)) }},
	{"NAME", func(g *model.AdGroup) string { return ui.Truncate(g.Name, titleWidth()) }},
	{"ADS", func(g *model.AdGroup) string { return fmt.Sprint(len(g.AdIDs)) }},
	{"MODIFIED", func(g *model.AdGroup) string { return g.LastModified.String() }},
}

var campaignColumns = []column[*model.Campaign]{
	{"ID", func(c *model.Campaign) string { return c.ID }},
	{"STATUS", func(c *model.Campaign) string { return ui.RenderStatus(campaignStatusLabel(c.Status)) }},
	{"TYPE", func(c *model.Campaign) string { return string(c.Type) }},
	{"NAME", func(c *model.Campaign) string { return ui.Truncate(c.Name, titleWidth()) }},
	{"PARTNER", func(c *model.Campaign) string { return c.PartnerName }},
	{"BUDGET", func(c *model.Campaign) string { return "$" + c.Budget.StringFixed(2) }},
	{"START", func(c *model.Campaign) string { return c.StartDate.String() }},
	{"END", func(c *model.Campaign) string { return c.EndDate.String() }},
}

// campaignStatusLabel shows the running status by its display name.
func campaignStatusLabel(s model.CampaignStatus) string {
	if s == model.CampaignRunning {
		return "running"
	}
	return string(s)
}

func printToken(t *model.Token) error {
	if jsonOutput {
		return printJSON(t)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", t.ID)
	fmt.Fprintf(w, "Name:\t%s\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", t.Description)
	}
	fmt.Fprintf(w, "Type:\t%s\n", t.Type)
	fmt.Fprintf(w, "State:\t%s\n", ui.RenderStatus(string(t.State)))
	fmt.Fprintf(w, "Value:\t%s\n", t.Value)
	if t.CustomerID != "" {
		fmt.Fprintf(w, "Customer:\t%s\n", t.CustomerID)
	}
	if t.MerchantName != "" {
		fmt.Fprintf(w, "Merchant:\t%s (%s)\n", t.MerchantName, t.MerchantLocation)
	}
	for _, d := range []struct {
		label string
		date  model.Date
	}{
		{"Claimed", t.ClaimDate},
		{"Used", t.UseDate},
		{"Shared", t.ShareDate},
		{"Expires", t.ExpirationDate},
	} {
		if !d.date.IsZero() {
			fmt.Fprintf(w, "%s:\t%s\n", d.label, d.date)
		}
	}
	if t.Disputed {
		fmt.Fprintf(w, "Disputed:\t%s\n", t.DisputeReason)
	}
	w.Flush()
	if len(t.SupportActions) > 0 {
		fmt.Println("\nSupport actions:")
		for _, a := range t.SupportActions {
			fmt.Printf("  %s  %s  %s\n", a.At.Format("2006-01-02 15:04"), a.Type, a.Note)
		}
	}
	return nil
}
