package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/exodus-project/pciids/model"
)

// Engine compiles CEL expressions over the vendor and device variables.
// Engines are stateless after construction and safe for concurrent use.
type Engine struct {
	env *cel.Env
}

// NewEngine creates an Engine with the vendor/device declarations.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("vendor", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("device", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create filter environment: %w", err)
	}
	return &Engine{env: env}, nil
}

// Compile turns a CEL expression into a reusable Predicate. The expression
// must evaluate to a boolean.
func (e *Engine) Compile(expr string) (*Predicate, error) {
	ast, iss := e.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, iss.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter program %q: %w", expr, err)
	}

	return &Predicate{expr: expr, prg: prg}, nil
}

// Predicate is a compiled filter expression.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Expr returns the source expression of the predicate.
func (p *Predicate) Expr() string {
	return p.expr
}

// Match evaluates the predicate against one (vendor, device) pair.
func (p *Predicate) Match(vendor *model.Vendor, device *model.Device) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{
		"vendor": vendorActivation(vendor),
		"device": deviceActivation(device),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", p.expr, err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q produced %T, want bool", p.expr, out.Value())
	}
	return matched, nil
}

func vendorActivation(v *model.Vendor) map[string]any {
	return map[string]any{
		"id":      v.ID(),
		"name":    v.Name(),
		"comment": v.Comment(),
	}
}

func deviceActivation(d *model.Device) map[string]any {
	return map[string]any{
		"id":         d.ID(),
		"name":       d.Name(),
		"comment":    d.Comment(),
		"subsystems": len(d.Subsystems()),
	}
}
