package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kigopro/kigo/internal/client"
	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

// addListFlags registers the list query flags on cmd.
func addListFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("query", "q", "", "free-text search")
	f.String("filter", "", `filter expression, e.g. 'state = "Active" AND value = "$5.00"'`)
	f.StringP("preset", "p", "", "named preset (see 'kigo presets')")
	f.StringSliceP("status", "s", nil, "status filter (repeatable)")
	f.StringSliceP("type", "t", nil, "type filter (repeatable)")
	f.String("from", "", "earliest date (YYYY-MM-DD)")
	f.String("to", "", "latest date (YYYY-MM-DD)")
	f.String("merchant", "", "substring match on the merchant or partner")
	f.String("min-value", "", "minimum value, e.g. $5")
	f.String("sort", "", "sort field; prefix with - for descending")
	f.Int("page", 1, "page number")
	f.Int("page-size", model.DefaultPageSize, "items per page")
}

// listRequestFromFlags builds a list request from the flags addListFlags
// registered.
func listRequestFromFlags(f *pflag.FlagSet) (client.ListRequest, error) {
	var req client.ListRequest
	req.Query, _ = f.GetString("query")
	req.Filter, _ = f.GetString("filter")
	req.Preset, _ = f.GetString("preset")
	req.Filters.Status, _ = f.GetStringSlice("status")
	req.Filters.Types, _ = f.GetStringSlice("type")
	req.Filters.FieldText, _ = f.GetString("merchant")

	for _, d := range []struct {
		flag string
		dst  *model.Date
	}{
		{"from", &req.Filters.DateRange.Start},
		{"to", &req.Filters.DateRange.End},
	} {
		v, _ := f.GetString(d.flag)
		if v == "" {
			continue
		}
		*d.dst = model.ParseDate(v)
		if !d.dst.Valid() {
			return req, fmt.Errorf("--%s: %q is not a YYYY-MM-DD date", d.flag, v)
		}
	}

	if v, _ := f.GetString("min-value"); v != "" {
		m, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(v), "$"))
		if err != nil {
			return req, fmt.Errorf("--min-value: %q is not an amount", v)
		}
		req.Filters.MinValue = &m
	}

	sortFlag, _ := f.GetString("sort")
	spec, err := listing.ParseSort(sortFlag)
	if err != nil {
		return req, fmt.Errorf("--sort: %w", err)
	}
	req.Sort = spec

	req.Pagination.CurrentPage, _ = f.GetInt("page")
	req.Pagination.PageSize, _ = f.GetInt("page-size")
	return req, nil
}
