package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
)

// table describes how one record type maps onto SQL for listing. Column
// fields hold SQL expressions over the table's columns; empty means the
// dimension does not apply and an active filter on it matches nothing.
type table struct {
	name    string
	columns string // select list, in scan order

	// from renders the FROM source. nil means the bare table name.
	from func(q *listQuery) string

	search     []string // text columns
	searchList []string // text[] columns where any element may match
	status     string
	typ        string
	rangeStart string
	rangeEnd   string
	fieldText  string
	value      string // numeric; NULL means no comparable value

	// sorts maps sort fields to their ORDER BY keys.
	sorts       map[string][]string
	defaultSort model.SortSpec

	// idents maps filter-expression identifiers to SQL expressions of the
	// same type as the declared identifier.
	idents map[string]string
	kinds  map[string]listing.IdentKind
}

// listQuery accumulates WHERE clauses and their positional arguments.
type listQuery struct {
	t      *table
	where  []string
	args   []any
	argIdx int
	today  model.Date
}

func newListQuery(t *table, today model.Date) *listQuery {
	return &listQuery{t: t, today: today}
}

// arg appends v to the argument list and returns its placeholder.
func (q *listQuery) arg(v any) string {
	q.argIdx++
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", q.argIdx)
}

func (q *listQuery) and(clause string) {
	q.where = append(q.where, clause)
}

// in renders col IN (...) over values.
func (q *listQuery) in(col string, values []string) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = q.arg(v)
	}
	return col + " IN (" + strings.Join(placeholders, ", ") + ")"
}

// likePattern escapes LIKE wildcards in s and wraps it for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// applyFilters adds the structured filter dimensions. Every active
// dimension is one AND-ed clause; set values are OR-ed through IN.
func (q *listQuery) applyFilters(f model.FilterState) {
	if len(f.Status) > 0 {
		q.and(q.dimension(q.t.status, func(col string) string { return q.in(col, f.Status) }))
	}
	if len(f.Types) > 0 {
		q.and(q.dimension(q.t.typ, func(col string) string { return q.in(col, f.Types) }))
	}
	if start := f.DateRange.Start; !start.IsZero() {
		q.and(q.dimension(q.t.rangeStart, func(col string) string {
			if !start.Valid() {
				return "FALSE"
			}
			return col + " >= " + q.arg(start)
		}))
	}
	if end := f.DateRange.End; !end.IsZero() {
		q.and(q.dimension(q.t.rangeEnd, func(col string) string {
			if !end.Valid() {
				return "FALSE"
			}
			return col + " <= " + q.arg(end)
		}))
	}
	if f.FieldText != "" {
		q.and(q.dimension(q.t.fieldText, func(col string) string {
			return col + " ILIKE " + q.arg(likePattern(listing.NormalizeQuery(f.FieldText)))
		}))
	}
	if f.MinValue != nil {
		q.and(q.dimension(q.t.value, func(col string) string {
			return col + " >= " + q.arg(*f.MinValue)
		}))
	}
}

// dimension renders a filter clause, or FALSE when the table has no
// column for the dimension. NULL columns never compare true, which keeps
// records with unset dates or values out of range filters.
func (q *listQuery) dimension(col string, render func(col string) string) string {
	if col == "" {
		return "FALSE"
	}
	return render(col)
}

// applySearch adds the free-text query as an OR over the search columns.
func (q *listQuery) applySearch(query string) {
	query = listing.NormalizeQuery(query)
	if query == "" {
		return
	}
	p := q.arg(likePattern(query))
	var ors []string
	for _, col := range q.t.search {
		ors = append(ors, "COALESCE("+col+", '') ILIKE "+p)
	}
	for _, col := range q.t.searchList {
		ors = append(ors, "EXISTS (SELECT 1 FROM unnest("+col+") AS v WHERE v ILIKE "+p+")")
	}
	if len(ors) == 0 {
		q.and("FALSE")
		return
	}
	q.and("(" + strings.Join(ors, " OR ") + ")")
}

// applyExpr translates a filter expression into a WHERE clause.
func (q *listQuery) applyExpr(filter string) error {
	e, err := listing.ParseExpr(filter, q.t.kinds)
	if err != nil {
		return err
	}
	if e == nil {
		return nil
	}
	clause, err := q.translate(e)
	if err != nil {
		return fmt.Errorf("%w: %w", listing.ErrInvalidFilter, err)
	}
	q.and(clause)
	return nil
}

func (q *listQuery) translate(e *expr.Expr) (string, error) {
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		if b, ok := listing.BoolLiteral(kind.IdentExpr.Name); ok {
			if b {
				return "TRUE", nil
			}
			return "FALSE", nil
		}
		col, ok := q.t.idents[kind.IdentExpr.Name]
		if !ok || q.t.kinds[kind.IdentExpr.Name] != listing.IdentBool {
			return "", fmt.Errorf("field %s is not boolean", kind.IdentExpr.Name)
		}
		return col, nil
	case *expr.Expr_CallExpr:
		return q.translateCall(kind.CallExpr)
	default:
		return "", fmt.Errorf("unsupported expression type: %T", kind)
	}
}

var sqlOperators = map[string]string{
	filtering.FunctionEquals:        "=",
	filtering.FunctionNotEquals:     "<>",
	filtering.FunctionLessThan:      "<",
	filtering.FunctionLessEquals:    "<=",
	filtering.FunctionGreaterThan:   ">",
	filtering.FunctionGreaterEquals: ">=",
}

func (q *listQuery) translateCall(call *expr.Expr_Call) (string, error) {
	switch call.Function {
	case filtering.FunctionAnd, filtering.FunctionFuzzyAnd, filtering.FunctionOr:
		op := " AND "
		if call.Function == filtering.FunctionOr {
			op = " OR "
		}
		parts := make([]string, len(call.Args))
		for i, a := range call.Args {
			s, err := q.translate(a)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "(" + strings.Join(parts, op) + ")", nil
	case filtering.FunctionNot:
		if len(call.Args) != 1 {
			return "", fmt.Errorf("NOT requires 1 argument")
		}
		s, err := q.translate(call.Args[0])
		if err != nil {
			return "", err
		}
		return "NOT " + s, nil
	case filtering.FunctionHas:
		col, v, err := q.operands(call.Args)
		if err != nil {
			return "", err
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("has operator requires strings")
		}
		return col + " ILIKE " + q.arg(likePattern(listing.NormalizeQuery(s))), nil
	}
	op, ok := sqlOperators[call.Function]
	if !ok {
		return "", fmt.Errorf("unsupported function: %s", call.Function)
	}
	col, v, err := q.operands(call.Args)
	if err != nil {
		return "", err
	}
	return col + " " + op + " " + q.arg(v), nil
}

func (q *listQuery) operands(args []*expr.Expr) (string, any, error) {
	if len(args) != 2 {
		return "", nil, fmt.Errorf("comparison requires 2 arguments")
	}
	name, err := listing.IdentName(args[0])
	if err != nil {
		return "", nil, err
	}
	col, ok := q.t.idents[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown field: %s", name)
	}
	v, err := listing.ConstValue(args[1])
	if err != nil {
		return "", nil, err
	}
	return col, v, nil
}

// orderBy renders an allow-listed ORDER BY. Unset values sort first when
// ascending, and id breaks ties in both directions so pages are stable.
func (q *listQuery) orderBy(spec model.SortSpec) string {
	spec = resolveSort(q.t, spec)
	dir := " ASC NULLS FIRST"
	if spec.Direction == model.Desc {
		dir = " DESC NULLS LAST"
	}
	keys := q.t.sorts[spec.Field]
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k+dir)
	}
	return strings.Join(append(parts, "id ASC"), ", ")
}

func resolveSort(t *table, spec model.SortSpec) model.SortSpec {
	if _, ok := t.sorts[spec.Field]; !ok {
		return t.defaultSort
	}
	if spec.Direction != model.Desc {
		spec.Direction = model.Asc
	}
	return spec
}

// source applies the request's filters and returns the FROM and WHERE
// part of the statement.
func (q *listQuery) source(req model.ListRequest) (string, error) {
	if err := q.applyExpr(req.Filter); err != nil {
		return "", err
	}
	q.applyFilters(req.Filters)
	q.applySearch(req.Query)

	from := q.t.name
	if q.t.from != nil {
		from = q.t.from(q)
	}
	out := " FROM " + from
	if len(q.where) > 0 {
		out += " WHERE " + strings.Join(q.where, " AND ")
	}
	return out, nil
}

// build returns the SQL for one page. COUNT(*) OVER() carries the total
// on every row.
func (q *listQuery) build(req model.ListRequest) (string, error) {
	src, err := q.source(req)
	if err != nil {
		return "", err
	}
	size := pageSize(req.Pagination)
	offset := (max(req.Pagination.CurrentPage, 1) - 1) * size
	return "SELECT COUNT(*) OVER() AS total_count, " + q.t.columns + src +
		" ORDER BY " + q.orderBy(req.Sort) +
		" LIMIT " + q.arg(size) + " OFFSET " + q.arg(offset), nil
}

func pageSize(p model.Pagination) int {
	if p.PageSize < 1 {
		return model.DefaultPageSize
	}
	return p.PageSize
}

// list runs a list query and wraps the rows in a page. A page past the end
// returns no rows and so no total; list then counts and re-reads the last
// page, matching the clamping of the in-memory pipeline.
func list[T any](ctx context.Context, db executor, t *table, today model.Date, req model.ListRequest, scope func(q *listQuery), scan func(scannable) (T, error)) (listing.Page[T], error) {
	items, total, err := listOnce(ctx, db, t, today, req, scope, scan)
	if err != nil {
		return listing.Page[T]{}, err
	}
	if len(items) == 0 && req.Pagination.CurrentPage > 1 {
		total, err = countRows(ctx, db, t, today, req, scope)
		if err != nil {
			return listing.Page[T]{}, err
		}
		last := listing.ClampPage(req.Pagination.CurrentPage, listing.TotalPages(total, pageSize(req.Pagination)))
		if total > 0 {
			req.Pagination.CurrentPage = last
			if items, _, err = listOnce(ctx, db, t, today, req, scope, scan); err != nil {
				return listing.Page[T]{}, err
			}
		}
	}
	return listing.PageOf(items, total, req.Pagination), nil
}

func listOnce[T any](ctx context.Context, db executor, t *table, today model.Date, req model.ListRequest, scope func(q *listQuery), scan func(scannable) (T, error)) ([]T, int, error) {
	q := newListQuery(t, today)
	if scope != nil {
		scope(q)
	}
	query, err := q.build(req)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := queryPage(ctx, db, query, q.args, scan)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", t.name, err)
	}
	return items, total, nil
}

// countRows counts the matching rows without paging.
func countRows(ctx context.Context, db executor, t *table, today model.Date, req model.ListRequest, scope func(q *listQuery)) (int, error) {
	q := newListQuery(t, today)
	if scope != nil {
		scope(q)
	}
	src, err := q.source(req)
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*)"+src, q.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

func queryPage[T any](ctx context.Context, db executor, query string, args []any, scan func(scannable) (T, error)) ([]T, int, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		items []T
		total int
	)
	for rows.Next() {
		item, err := scan(withTotal{rows, &total})
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// withTotal peels the leading total_count column off a list row so the
// per-type scanners see only their own columns.
type withTotal struct {
	rows  *sql.Rows
	total *int
}

func (w withTotal) Scan(dest ...any) error {
	return w.rows.Scan(append([]any{w.total}, dest...)...)
}
