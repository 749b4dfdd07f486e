package latex

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOk bool
	}{
		{name: "plain sum", input: "36+15", want: "36+15", wantOk: true},
		{name: "spacing stripped", input: `3 \, + \quad 4`, want: "3+4", wantOk: true},
		{name: "fraction", input: `\frac{1}{2}`, want: "(1)/(2)", wantOk: true},
		{name: "nested fraction", input: `\frac{\frac{1}{2}}{3}`, want: "((1)/(2))/(3)", wantOk: true},
		{name: "dfrac", input: `\dfrac{6}{3}`, want: "(6)/(3)", wantOk: true},
		{name: "cdot", input: `2\cdot3`, want: "2*3", wantOk: true},
		{name: "times", input: `2\times3`, want: "2*3", wantOk: true},
		{name: "middle dot", input: "2·3", want: "2*3", wantOk: true},
		{name: "division glyph", input: "8÷2", want: "8/2", wantOk: true},
		{name: "exponent", input: "2^{10}", want: "2^(10)", wantOk: true},
		{name: "square root", input: `\sqrt{16}`, want: "sqrt(16)", wantOk: true},
		{name: "nth root", input: `\sqrt[3]{27}`, want: "root(3,27)", wantOk: true},
		{name: "sized delimiters", input: `\left(1+2\right)`, want: "(1+2)", wantOk: true},
		{name: "remaining braces", input: "{1+2}", want: "(1+2)", wantOk: true},
		{name: "equals keeps lhs", input: "2x+5=15", want: "2x+5", wantOk: true},
		{name: "pi", input: `2\pi`, want: "2pi", wantOk: true},
		{name: "unknown command", input: `\alpha+1`, wantOk: false},
		{name: "disallowed char", input: "3<4", wantOk: false},
		{name: "unbalanced frac", input: `\frac{1}{2`, wantOk: false},
		{name: "frac without braces", input: `\frac12`, wantOk: false},
		{name: "empty", input: "   ", wantOk: false},
		{name: "only rhs", input: "=5", wantOk: false},
		{name: "root of fraction", input: `\sqrt{\frac{9}{4}}`, want: "sqrt((9)/(4))", wantOk: true},
		{name: "fraction index", input: `\sqrt[\frac{6}{2}]{8}`, want: "root((6)/(2),8)", wantOk: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestNormalizeEqualsTruncation(t *testing.T) {
	lhs, ok := Normalize("2x+5")
	assert.True(t, ok)

	full, ok := Normalize("2x+5=15")
	assert.True(t, ok)
	assert.Equal(t, lhs, full)
}

func TestNormalizeOutputCharset(t *testing.T) {
	charset := regexp.MustCompile(`^[0-9+\-*/^().,a-zA-Z]*$`)
	inputs := []string{
		`\frac{3}{4}\cdot2^{2}`,
		`\sqrt{\frac{9}{4}}+1`,
		`1-\frac{\sqrt{2}}{2}`,
		`2^{\frac{1}{2}}`,
		`\frac{}{}`,
		`}{`,
		`\sqrt[]{}`,
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			out, ok := Normalize(in)
			if ok {
				assert.Regexp(t, charset, out, in)
			}
		})
	}
}

func TestNormalizeRejectsOversizedInput(t *testing.T) {
	fits := strings.Repeat(`\frac{1}{1}+`, 300) + "1"
	out, ok := Normalize(fits)
	assert.True(t, ok)
	assert.Equal(t, strings.Repeat("(1)/(1)+", 300)+"1", out)

	_, ok = Normalize(strings.Repeat("1+", MaxInputLen/2) + "1")
	assert.False(t, ok)
}

func TestRewriteCommandsScalesLinearly(t *testing.T) {
	long := strings.Repeat(`\frac{1}{1}+`, 80000) + "1"

	start := time.Now()
	out, ok := rewriteCommands(long)
	elapsed := time.Since(start)

	assert.True(t, ok)
	assert.Len(t, out, 80000*len("(1)/(1)+")+1)
	assert.Less(t, elapsed, 2*time.Second)
}
