package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
	"github.com/kigopro/kigo/internal/ui"
	"github.com/kigopro/kigo/internal/viewstate"
)

const browseHelp = `commands:
  n, p              next / previous page
  g <page>          go to page
  / <text>          search (empty clears)
  s <field>         sort by field; repeat to flip the direction
  status <value>    toggle a status filter
  type <value>      toggle a type filter
  from|to <date>    date range bound (YYYY-MM-DD, empty clears)
  merchant <text>   merchant filter
  min <amount>      minimum value (empty clears)
  preset <name>     apply a preset
  size <n>          page size
  c                 clear everything
  q                 quit`

// browser is a line-driven pager over a viewstate store.
type browser[T any] struct {
	store   *viewstate.Store[T]
	cols    []column[T]
	presets *listing.Presets
	now     func() time.Time
}

func newBrowser[T any](src viewstate.Source[T], cols []column[T], presets *listing.Presets, pageSize int) *browser[T] {
	env := viewstate.Env{Presets: presets, PageSize: pageSize}
	return &browser[T]{
		store:   viewstate.NewStore(src, env),
		cols:    cols,
		presets: presets,
		now:     time.Now,
	}
}

// Run renders the first page, then reads one command per line from in
// until "q" or EOF. Failed fetches are reported and leave the view as it was.
func (b *browser[T]) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	cancel := b.store.Subscribe(func(s viewstate.State, p listing.Page[T]) {
		b.render(out, s, p)
	})
	defer cancel()

	if _, err := b.store.Dispatch(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, ui.RenderMuted("type ? for help"))

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "q" || line == "quit" {
			return nil
		}
		if line == "" {
			continue
		}
		if line == "?" || line == "help" {
			fmt.Fprintln(out, browseHelp)
			continue
		}
		action, err := b.parse(line)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		if _, err := b.store.Dispatch(ctx, action); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

// parse maps one command line to an action.
func (b *browser[T]) parse(line string) (viewstate.Action, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(cmd, "/") {
		return viewstate.SetQuery{Query: strings.TrimSpace(strings.TrimPrefix(line, "/"))}, nil
	}
	switch cmd {
	case "n", "next":
		return viewstate.NextPage{}, nil
	case "p", "prev":
		return viewstate.PrevPage{}, nil
	case "g", "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("page must be a number")
		}
		return viewstate.SetPage{Page: n}, nil
	case "s", "sort":
		if arg == "" {
			return nil, fmt.Errorf("sort needs a field")
		}
		return viewstate.SetSort{Field: arg}, nil
	case "status":
		return viewstate.ToggleStatus{Value: arg}, nil
	case "type":
		return viewstate.ToggleType{Value: arg}, nil
	case "from", "to":
		d := model.ParseDate(arg)
		if arg != "" && !d.Valid() {
			return nil, fmt.Errorf("%q is not a YYYY-MM-DD date", arg)
		}
		if cmd == "from" {
			return viewstate.SetDateStart{Date: d}, nil
		}
		return viewstate.SetDateEnd{Date: d}, nil
	case "merchant":
		return viewstate.SetFieldText{Text: arg}, nil
	case "min":
		if arg == "" {
			return viewstate.SetMinValue{}, nil
		}
		v, err := decimal.NewFromString(strings.TrimPrefix(arg, "$"))
		if err != nil {
			return nil, fmt.Errorf("%q is not an amount", arg)
		}
		return viewstate.SetMinValue{Value: &v}, nil
	case "preset":
		if b.presets == nil || !hasPreset(b.presets, arg) {
			return nil, fmt.Errorf("unknown preset %q", arg)
		}
		return viewstate.ApplyPreset{Name: arg, Now: b.now()}, nil
	case "size":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("size must be a positive number")
		}
		return viewstate.SetPageSize{Size: n}, nil
	case "c", "clear":
		return viewstate.ClearAll{}, nil
	}
	return nil, fmt.Errorf("unknown command %q (type ? for help)", cmd)
}

func (b *browser[T]) render(out io.Writer, s viewstate.State, p listing.Page[T]) {
	resp := listing.NewResponse(p)
	fmt.Fprintln(out)
	if summary := describeState(s); summary != "" {
		fmt.Fprintln(out, ui.RenderMuted(summary))
	}
	printTable(out, b.cols, resp.Items, resp.Pagination, resp.PageNumbers)
}

// describeState summarizes the active query, filters and sort.
func describeState(s viewstate.State) string {
	var parts []string
	if s.Preset != "" {
		parts = append(parts, "preset="+s.Preset)
	}
	if s.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", s.Query))
	}
	f := s.Filters
	if len(f.Status) > 0 {
		parts = append(parts, "status="+strings.Join(f.Status, ","))
	}
	if len(f.Types) > 0 {
		parts = append(parts, "type="+strings.Join(f.Types, ","))
	}
	if !f.DateRange.Start.IsZero() {
		parts = append(parts, "from="+f.DateRange.Start.String())
	}
	if !f.DateRange.End.IsZero() {
		parts = append(parts, "to="+f.DateRange.End.String())
	}
	if f.FieldText != "" {
		parts = append(parts, "merchant="+f.FieldText)
	}
	if f.MinValue != nil {
		parts = append(parts, "min=$"+f.MinValue.String())
	}
	if sort := s.Sort.String(); sort != "" {
		parts = append(parts, "sort="+sort)
	}
	return strings.Join(parts, "  ")
}

func hasPreset(ps *listing.Presets, name string) bool {
	_, ok := ps.Lookup(name)
	return ok
}
