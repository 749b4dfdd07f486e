// Package eval evaluates normalized arithmetic expressions recognized from
// handwriting.
package eval

import (
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/pkg/errors"

	"github.com/ddvk/inkcalc/latex"
	"github.com/ddvk/inkcalc/log"
)

const (
	// MaxExpressionLen bounds what is handed to the evaluator.
	MaxExpressionLen = 120
	// TooLong is returned as the value for oversized expressions.
	TooLong = "Too long"
)

// Result is the outcome of evaluating recognized latex. An empty Value
// means nothing usable was produced; an empty Expression means the latex
// could not be normalized.
type Result struct {
	Expression string
	Value      string
}

// Evaluator computes the value of a normalized expression.
type Evaluator interface {
	Eval(expression string) (float64, error)
}

// Adapter normalizes latex, bounds its size and isolates evaluator failures.
type Adapter struct {
	Evaluator Evaluator
	MaxLen    int
}

// NewAdapter returns an adapter over the default expression evaluator.
func NewAdapter() *Adapter {
	return &Adapter{Evaluator: NewExprEvaluator(), MaxLen: MaxExpressionLen}
}

// Evaluate never returns an error: failures surface as an empty Value.
func (a *Adapter) Evaluate(src string) Result {
	expression, ok := latex.Normalize(src)
	if !ok {
		return Result{}
	}

	maxLen := a.MaxLen
	if maxLen <= 0 {
		maxLen = MaxExpressionLen
	}
	if len(expression) > maxLen {
		return Result{Expression: expression, Value: TooLong}
	}

	v, err := a.Evaluator.Eval(expression)
	if err != nil {
		log.Trace.Printf("eval: %q: %v", expression, err)
		return Result{Expression: expression}
	}

	value, ok := Format(v)
	if !ok {
		return Result{Expression: expression}
	}
	return Result{Expression: expression, Value: value}
}

// Format renders v with 14 significant digits.
func Format(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "", false
	case math.IsInf(v, 1):
		return "Infinity", true
	case math.IsInf(v, -1):
		return "-Infinity", true
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10), true
	}
	return strconv.FormatFloat(v, 'g', 14, 64), true
}

// ExprEvaluator evaluates expressions with github.com/expr-lang/expr.
type ExprEvaluator struct {
	env     map[string]interface{}
	options []expr.Option
}

func NewExprEvaluator() *ExprEvaluator {
	env := map[string]interface{}{
		"pi": math.Pi,
		"e":  math.E,
	}
	return &ExprEvaluator{
		env: env,
		options: []expr.Option{
			expr.Env(env),
			expr.Function("sqrt", unary(math.Sqrt)),
			expr.Function("abs", unary(math.Abs)),
			expr.Function("ln", unary(math.Log)),
			expr.Function("log", unary(math.Log10)),
			expr.Function("sin", unary(math.Sin)),
			expr.Function("cos", unary(math.Cos)),
			expr.Function("tan", unary(math.Tan)),
			expr.Function("root", nthRoot),
		},
	}
}

func (e *ExprEvaluator) Eval(expression string) (float64, error) {
	code := FloatLiterals(ImplicitMultiplication(expression))

	program, err := expr.Compile(code, e.options...)
	if err != nil {
		return 0, errors.Wrap(err, "compile")
	}
	out, err := expr.Run(program, e.env)
	if err != nil {
		return 0, errors.Wrap(err, "run")
	}
	return toFloat(out)
}

// ImplicitMultiplication makes juxtaposed factors explicit: "2x" becomes
// "2*x", "2(" becomes "2*(" and ")(" becomes ")*(". A letter followed by
// "(" is a function call and is left alone.
func ImplicitMultiplication(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i > 0 {
			prev := s[i-1]
			if (isDigit(prev) || prev == ')') && (isLetter(c) || c == '(') ||
				prev == ')' && isDigit(c) {
				b.WriteByte('*')
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// FloatLiterals rewrites integer literals as floats so arithmetic never
// runs in int and wraps around: "2*x" becomes "2.0*x". Digits that are part
// of an identifier are left alone.
func FloatLiterals(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/2)
	for i := 0; i < len(s); {
		c := s[i]
		if isLetter(c) {
			j := i
			for j < len(s) && (isLetter(s[j]) || isDigit(s[j]) && s[j] != '.') {
				j++
			}
			b.WriteString(s[i:j])
			i = j
			continue
		}
		if !isDigit(c) {
			b.WriteByte(c)
			i++
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		lit := s[i:j]
		b.WriteString(lit)
		if !strings.Contains(lit, ".") {
			b.WriteString(".0")
		}
		i = j
	}
	return b.String()
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' || c == '.' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func unary(fn func(float64) float64) func(params ...interface{}) (interface{}, error) {
	return func(params ...interface{}) (interface{}, error) {
		if len(params) != 1 {
			return nil, errors.Errorf("expected 1 argument, got %d", len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

func nthRoot(params ...interface{}) (interface{}, error) {
	if len(params) != 2 {
		return nil, errors.Errorf("root expects 2 arguments, got %d", len(params))
	}
	n, err := toFloat(params[0])
	if err != nil {
		return nil, err
	}
	x, err := toFloat(params[1])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("root of degree 0")
	}
	// odd roots of negatives are real
	if x < 0 && math.Mod(n, 2) == 1 {
		return -math.Pow(-x, 1/n), nil
	}
	return math.Pow(x, 1/n), nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	}
	return 0, errors.Errorf("non-numeric result %T", v)
}
