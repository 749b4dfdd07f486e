package eval

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type countingEvaluator struct {
	calls int
	value float64
	err   error
}

func (c *countingEvaluator) Eval(string) (float64, error) {
	c.calls++
	return c.value, c.err
}

func TestEvaluate(t *testing.T) {
	a := NewAdapter()

	tests := []struct {
		name           string
		latex          string
		wantExpression string
		wantValue      string
	}{
		{name: "sum", latex: "36+15", wantExpression: "36+15", wantValue: "51"},
		{name: "fraction", latex: `\frac{1}{4}`, wantExpression: "(1)/(4)", wantValue: "0.25"},
		{name: "power", latex: "2^{10}", wantExpression: "2^(10)", wantValue: "1024"},
		{name: "sqrt", latex: `\sqrt{16}+1`, wantExpression: "sqrt(16)+1", wantValue: "5"},
		{name: "cube root", latex: `\sqrt[3]{27}`, wantExpression: "root(3,27)", wantValue: "3"},
		{name: "implicit product", latex: "2(3+4)", wantExpression: "2(3+4)", wantValue: "14"},
		{name: "repeating decimal", latex: `\frac{1}{3}`, wantExpression: "(1)/(3)", wantValue: "0.33333333333333"},
		{name: "large product", latex: `99999999999\times99999999999`, wantExpression: "99999999999*99999999999", wantValue: "9.9999999998e+21"},
		{name: "unknown variable", latex: "2x+5=15", wantExpression: "2x+5", wantValue: ""},
		{name: "not normalizable", latex: `\int x`, wantExpression: "", wantValue: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Evaluate(tt.latex)
			assert.Equal(t, tt.wantExpression, got.Expression)
			assert.Equal(t, tt.wantValue, got.Value)
		})
	}
}

func TestEvaluateTooLong(t *testing.T) {
	ev := &countingEvaluator{value: 1}
	a := &Adapter{Evaluator: ev, MaxLen: MaxExpressionLen}

	long := strings.Repeat("1+", 70) + "1"
	got := a.Evaluate(long)

	assert.Equal(t, TooLong, got.Value)
	assert.Equal(t, long, got.Expression)
	assert.Zero(t, ev.calls)
}

func TestEvaluateIsolatesFailures(t *testing.T) {
	ev := &countingEvaluator{err: errors.New("boom")}
	a := &Adapter{Evaluator: ev}

	got := a.Evaluate("1+1")
	assert.Equal(t, Result{Expression: "1+1"}, got)
	assert.Equal(t, 1, ev.calls)
}

func TestImplicitMultiplication(t *testing.T) {
	assert.Equal(t, "2*x", ImplicitMultiplication("2x"))
	assert.Equal(t, "2*(1)", ImplicitMultiplication("2(1)"))
	assert.Equal(t, "(1)*(2)", ImplicitMultiplication("(1)(2)"))
	assert.Equal(t, "(1)*2", ImplicitMultiplication("(1)2"))
	assert.Equal(t, "sqrt(4)", ImplicitMultiplication("sqrt(4)"))
	assert.Equal(t, "2*sqrt(4)", ImplicitMultiplication("2sqrt(4)"))
}

func TestFloatLiterals(t *testing.T) {
	assert.Equal(t, "2.0*x", FloatLiterals("2*x"))
	assert.Equal(t, "1.5+2.0", FloatLiterals("1.5+2"))
	assert.Equal(t, "root(3.0,27.0)", FloatLiterals("root(3,27)"))
	assert.Equal(t, "x2+1.0", FloatLiterals("x2+1"))
	assert.Equal(t, "(1.0)/(4.0)", FloatLiterals("(1)/(4)"))
}

func TestEvalDoesNotWrap(t *testing.T) {
	v, err := NewExprEvaluator().Eval("3037000500*3037000500")
	assert.NoError(t, err)
	assert.InEpsilon(t, 9.22337203700025e18, v, 1e-12)
}
