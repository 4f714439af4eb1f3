package probe

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ParseArgs evaluates each source string as an HCL expression, for example
// `{ room = "lobby" }` or `"hello"`, and returns the plain Go values to emit.
func ParseArgs(sources []string) ([]any, error) {
	out := make([]any, 0, len(sources))
	for i, src := range sources {
		val, err := parseExpression(src, fmt.Sprintf("<arg %d>", i))
		if err != nil {
			return nil, err
		}
		v, err := toPlain(val)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseExpect evaluates src as an HCL expression describing the expected
// first reply argument.
func ParseExpect(src string) (cty.Value, error) {
	return parseExpression(src, "<expect>")
}

// Matches reports whether the first reply argument equals want.
func (r *Result) Matches(want cty.Value) (bool, error) {
	var first any
	if len(r.Args) > 0 {
		first = r.Args[0]
	}
	got, err := fromPlain(first)
	if err != nil {
		return false, err
	}
	if got.IsNull() || want.IsNull() {
		return got.IsNull() && want.IsNull(), nil
	}
	eq := got.Equals(want)
	return eq.IsKnown() && !eq.IsNull() && eq.True(), nil
}

func parseExpression(src, filename string) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to evaluate %s: %w", filename, diags)
	}
	return val, nil
}

// toPlain turns an evaluated expression into the values a JSON decoder would
// produce: float64 numbers, map[string]any objects and []any tuples.
func toPlain(val cty.Value) (any, error) {
	b, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// fromPlain is the inverse of toPlain for a decoded reply argument. The cty
// type is implied by the JSON shape, so objects become object values and
// arrays become tuples, matching what HCL literals evaluate to.
func fromPlain(data any) (cty.Value, error) {
	if data == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return cty.NilVal, fmt.Errorf("reply is not JSON-encodable: %w", err)
	}
	ty, err := ctyjson.ImpliedType(b)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(b, ty)
}
