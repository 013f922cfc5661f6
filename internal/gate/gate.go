package gate

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/scan-io-git/complyscan/internal/analyzer"
)

// Gate decides whether a set of violations may pass a CI check.
type Gate struct {
	expression string
	program    cel.Program
}

// Result lists the violations that tripped the gate.
type Result struct {
	Expression string               `json:"expression"`
	Passed     bool                 `json:"passed"`
	Failed     []analyzer.Violation `json:"failed,omitempty"`
}

// New compiles expression. It is evaluated once per violation with the variables
// severity, severity_rank, code, regulation, category, confidence, file_path and line,
// and must yield a bool.
func New(expression string) (*Gate, error) {
	env, err := cel.NewEnv(
		cel.Variable("severity", cel.StringType),
		cel.Variable("severity_rank", cel.IntType),
		cel.Variable("code", cel.StringType),
		cel.Variable("regulation", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("confidence", cel.DoubleType),
		cel.Variable("file_path", cel.StringType),
		cel.Variable("line", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create gate environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("type-check error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("gate expression must return bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program construction error: %w", err)
	}
	return &Gate{expression: expression, program: prg}, nil
}

// Expression returns the source of the gate.
func (g *Gate) Expression() string {
	return g.expression
}

// Matches reports whether the expression holds for v.
func (g *Gate) Matches(v analyzer.Violation) (bool, error) {
	out, _, err := g.program.Eval(map[string]interface{}{
		"severity":      string(v.Severity),
		"severity_rank": int64(v.Severity.Rank()),
		"code":          v.Code,
		"regulation":    v.RegulationName(),
		"category":      v.CategoryName(),
		"confidence":    v.Confidence,
		"file_path":     v.FilePath,
		"line":          int64(v.LineStart),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate gate for %s: %w", v.Code, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("gate returned %T instead of bool", out.Value())
	}
	return matched, nil
}

// Evaluate fails the gate when the expression holds for any violation.
func (g *Gate) Evaluate(violations []analyzer.Violation) (Result, error) {
	result := Result{Expression: g.expression, Passed: true}
	for _, v := range violations {
		matched, err := g.Matches(v)
		if err != nil {
			return result, err
		}
		if matched {
			result.Passed = false
			result.Failed = append(result.Failed, v)
		}
	}
	return result, nil
}
