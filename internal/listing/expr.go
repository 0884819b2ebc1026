package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
	"google.golang.org/protobuf/encoding/prototext"

	"github.com/kigopro/kigo/internal/model"
)

// ErrInvalidFilter wraps every parse, type or evaluation error caused by a
// malformed filter expression.
var ErrInvalidFilter = errors.New("invalid filter")

// IdentKind is the declared type of a filter-expression identifier.
type IdentKind int

const (
	IdentString IdentKind = iota
	IdentInt
	IdentDouble
	IdentBool
)

func (k IdentKind) declType() *expr.Type {
	switch k {
	case IdentInt:
		return filtering.TypeInt
	case IdentDouble:
		return filtering.TypeFloat
	case IdentBool:
		return filtering.TypeBool
	}
	return filtering.TypeString
}

// Ident exposes a record value to filter expressions.
type Ident[T any] struct {
	Kind IdentKind
	Get  func(T) any
}

// StringIdent declares a string identifier.
func StringIdent[T any](get func(T) string) Ident[T] {
	return Ident[T]{Kind: IdentString, Get: func(r T) any { return get(r) }}
}

// DateIdent declares a date identifier compared as a YYYY-MM-DD string.
// Malformed dates read as "" so they never satisfy a range comparison.
func DateIdent[T any](get func(T) model.Date) Ident[T] {
	return Ident[T]{Kind: IdentString, Get: func(r T) any {
		d := get(r)
		if !d.Valid() {
			return ""
		}
		return d.String()
	}}
}

// IntIdent declares an integer identifier.
func IntIdent[T any](get func(T) int64) Ident[T] {
	return Ident[T]{Kind: IdentInt, Get: func(r T) any { return get(r) }}
}

// DoubleIdent declares a floating point identifier.
func DoubleIdent[T any](get func(T) float64) Ident[T] {
	return Ident[T]{Kind: IdentDouble, Get: func(r T) any { return get(r) }}
}

// BoolIdent declares a boolean identifier.
func BoolIdent[T any](get func(T) bool) Ident[T] {
	return Ident[T]{Kind: IdentBool, Get: func(r T) any { return get(r) }}
}

// IdentKinds returns the declared kind of every identifier, for callers
// that translate expressions elsewhere.
func (s *Schema[T]) IdentKinds() map[string]IdentKind {
	out := make(map[string]IdentKind, len(s.Idents))
	for name, id := range s.Idents {
		out[name] = id.Kind
	}
	return out
}

// ParseFilter parses and type-checks an AIP-160 filter expression against
// the schema's identifiers. A blank filter returns nil.
func (s *Schema[T]) ParseFilter(filter string) (*expr.Expr, error) {
	return ParseExpr(filter, s.IdentKinds())
}

// ParseExpr parses and type-checks an AIP-160 filter over the given
// identifiers. A blank filter returns nil.
func ParseExpr(filter string, idents map[string]IdentKind) (*expr.Expr, error) {
	if strings.TrimSpace(filter) == "" {
		return nil, nil
	}
	decls := []filtering.DeclarationOption{
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("true", filtering.TypeBool),
		filtering.DeclareIdent("false", filtering.TypeBool),
	}
	for name, kind := range idents {
		decls = append(decls, filtering.DeclareIdent(name, kind.declType()))
	}
	declarations, err := filtering.NewDeclarations(decls...)
	if err != nil {
		return nil, fmt.Errorf("filter declarations: %w", err)
	}
	f, err := filtering.ParseFilterString(filter, declarations)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	e := f.CheckedExpr.GetExpr()
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("parsed filter", "filter", filter, "expr", prototext.Format(e))
	}
	return e, nil
}

// EvaluateExpr evaluates a parsed filter against r. A nil expression
// matches everything.
func EvaluateExpr[T any](e *expr.Expr, r T, s *Schema[T]) (bool, error) {
	return evaluate(e, func(name string) (any, bool) {
		id, ok := s.Idents[name]
		if !ok {
			return nil, false
		}
		return id.Get(r), true
	})
}

type resolver func(name string) (any, bool)

func evaluate(e *expr.Expr, resolve resolver) (bool, error) {
	if e == nil {
		return true, nil
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return evalCall(kind.CallExpr, resolve)
	case *expr.Expr_IdentExpr:
		// A bare boolean identifier, e.g. "disputed".
		if b, ok := BoolLiteral(kind.IdentExpr.Name); ok {
			return b, nil
		}
		v, ok := resolve(kind.IdentExpr.Name)
		if !ok {
			return false, fmt.Errorf("unknown field: %s", kind.IdentExpr.Name)
		}
		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("field %s is not boolean", kind.IdentExpr.Name)
		}
		return b, nil
	default:
		return false, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func evalCall(call *expr.Expr_Call, resolve resolver) (bool, error) {
	switch call.Function {
	case filtering.FunctionAnd, filtering.FunctionFuzzyAnd:
		return evalAnd(call.Args, resolve)
	case filtering.FunctionOr:
		return evalOr(call.Args, resolve)
	case filtering.FunctionNot:
		if len(call.Args) != 1 {
			return false, fmt.Errorf("NOT requires 1 argument")
		}
		v, err := evaluate(call.Args[0], resolve)
		return !v, err
	case filtering.FunctionHas:
		return evalHas(call.Args, resolve)
	case filtering.FunctionEquals, filtering.FunctionNotEquals,
		filtering.FunctionLessThan, filtering.FunctionLessEquals,
		filtering.FunctionGreaterThan, filtering.FunctionGreaterEquals:
		return evalCompare(call.Args, resolve, call.Function)
	default:
		return false, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func evalAnd(args []*expr.Expr, resolve resolver) (bool, error) {
	for _, a := range args {
		v, err := evaluate(a, resolve)
		if err != nil || !v {
			return false, err
		}
	}
	return true, nil
}

func evalOr(args []*expr.Expr, resolve resolver) (bool, error) {
	for _, a := range args {
		v, err := evaluate(a, resolve)
		if err != nil {
			return false, err
		}
		if v {
			return true, nil
		}
	}
	return false, nil
}

// evalHas implements "field:value" as a case-insensitive substring test.
func evalHas(args []*expr.Expr, resolve resolver) (bool, error) {
	left, right, err := operands(args, resolve)
	if err != nil {
		return false, err
	}
	l, lok := left.(string)
	r, rok := right.(string)
	if !lok || !rok {
		return false, fmt.Errorf("has operator requires strings")
	}
	return containsFold(l, NormalizeQuery(r)), nil
}

func evalCompare(args []*expr.Expr, resolve resolver, op string) (bool, error) {
	left, right, err := operands(args, resolve)
	if err != nil {
		return false, err
	}
	c, err := compareValues(left, right)
	if err != nil {
		return false, err
	}
	switch op {
	case filtering.FunctionEquals:
		return c == 0, nil
	case filtering.FunctionNotEquals:
		return c != 0, nil
	case filtering.FunctionLessThan:
		return c < 0, nil
	case filtering.FunctionLessEquals:
		return c <= 0, nil
	case filtering.FunctionGreaterThan:
		return c > 0, nil
	case filtering.FunctionGreaterEquals:
		return c >= 0, nil
	}
	return false, fmt.Errorf("unsupported operator: %s", op)
}

func operands(args []*expr.Expr, resolve resolver) (any, any, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("comparison requires 2 arguments")
	}
	field, err := IdentName(args[0])
	if err != nil {
		return nil, nil, err
	}
	left, ok := resolve(field)
	if !ok {
		return nil, nil, fmt.Errorf("unknown field: %s", field)
	}
	right, err := ConstValue(args[1])
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// IdentName returns the identifier name of e.
func IdentName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

// BoolLiteral reports whether name is the true or false literal.
// AIP-160 has no boolean constants, so both parse as identifiers.
func BoolLiteral(name string) (value, ok bool) {
	switch name {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// ConstValue returns the Go value of a constant expression. The true and
// false identifiers count as constants.
func ConstValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	if id, ok := e.ExprKind.(*expr.Expr_IdentExpr); ok {
		if b, ok := BoolLiteral(id.IdentExpr.Name); ok {
			return b, nil
		}
	}
	c, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expected constant, got %T", e.ExprKind)
	}
	switch kind := c.ConstExpr.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

func compareValues(left, right any) (int, error) {
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch: string vs %T", right)
		}
		return strings.Compare(l, r), nil
	case bool:
		r, ok := right.(bool)
		if !ok {
			return 0, fmt.Errorf("type mismatch: bool vs %T", right)
		}
		switch {
		case l == r:
			return 0, nil
		case !l:
			return -1, nil
		}
		return 1, nil
	}
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return 0, fmt.Errorf("type mismatch: %T vs %T", left, right)
	}
	switch {
	case lf < rf:
		return -1, nil
	case lf > rf:
		return 1, nil
	}
	return 0, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
