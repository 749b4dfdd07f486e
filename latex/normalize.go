// Package latex rewrites the subset of LaTeX produced by handwriting
// recognizers into a plain arithmetic expression.
package latex

import (
	"regexp"
	"strings"
)

// MaxInputLen bounds the raw latex accepted for normalization.
const MaxInputLen = 4096

var allowed = regexp.MustCompile(`^[0-9+\-*/^().,a-zA-Z]*$`)

// spacing and sizing commands that carry no arithmetic meaning
var decorative = []string{
	`\qquad`, `\quad`, `\left`, `\right`,
	`\,`, `\;`, `\:`, `\!`, `\ `,
}

var glyphs = strings.NewReplacer(
	`\cdot`, "*",
	`\times`, "*",
	"·", "*",
	"×", "*",
	`\div`, "/",
	"÷", "/",
	`\pi`, "pi",
)

// Normalize converts latex into an evaluable expression. It reports false
// when the input contains anything outside the arithmetic character set.
//
// Only the left-hand side of an equation is kept, so "2x+5=15" normalizes
// to "2x+5". The right-hand side is dropped, not solved.
func Normalize(s string) (string, bool) {
	if len(s) > MaxInputLen {
		return "", false
	}
	for _, d := range decorative {
		s = strings.ReplaceAll(s, d, "")
	}
	s = strings.Join(strings.Fields(s), "")

	if i := strings.IndexByte(s, '='); i >= 0 {
		s = s[:i]
	}

	var ok bool
	if s, ok = rewriteCommands(s); !ok {
		return "", false
	}

	s = glyphs.Replace(s)
	s = strings.ReplaceAll(s, "^{", "^(")
	s = strings.NewReplacer("{", "(", "}", ")").Replace(s)

	if s == "" || !allowed.MatchString(s) {
		return "", false
	}
	return s, true
}

// braceGroup returns the content of the {...} group starting at s[i] and the
// index just past its closing brace.
func braceGroup(s string, i int) (string, int, bool) {
	if i >= len(s) || s[i] != '{' {
		return "", 0, false
	}
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[i+1 : j], j + 1, true
			}
		}
	}
	return "", 0, false
}

var fractions = []string{`\dfrac`, `\tfrac`, `\frac`}

const sqrtCmd = `\sqrt`

// rewriteCommands expands fractions and roots in one forward pass. Groups
// are rewritten recursively, so nested commands are handled without
// rescanning the output.
func rewriteCommands(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s) + len(s)/2)
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		rest := s[i:]
		if n := fractionPrefix(rest); n > 0 {
			num, next, ok := braceGroup(s, i+n)
			if !ok {
				return "", false
			}
			den, end, ok := braceGroup(s, next)
			if !ok {
				return "", false
			}
			if num, ok = rewriteCommands(num); !ok {
				return "", false
			}
			if den, ok = rewriteCommands(den); !ok {
				return "", false
			}
			b.WriteString("(" + num + ")/(" + den + ")")
			i = end
			continue
		}
		if strings.HasPrefix(rest, sqrtCmd) {
			repl, end, ok := rewriteRoot(s, i+len(sqrtCmd))
			if !ok {
				return "", false
			}
			b.WriteString(repl)
			i = end
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String(), true
}

func fractionPrefix(s string) int {
	for _, cmd := range fractions {
		if strings.HasPrefix(s, cmd) {
			return len(cmd)
		}
	}
	return 0
}

// rewriteRoot expands the root whose optional [index] or {radicand} starts
// at s[pos].
func rewriteRoot(s string, pos int) (string, int, bool) {
	index := ""
	if pos < len(s) && s[pos] == '[' {
		end := strings.IndexByte(s[pos:], ']')
		if end < 0 {
			return "", 0, false
		}
		index = s[pos+1 : pos+end]
		pos += end + 1
	}

	radicand, end, ok := braceGroup(s, pos)
	if !ok {
		return "", 0, false
	}
	if radicand, ok = rewriteCommands(radicand); !ok {
		return "", 0, false
	}
	if index == "" {
		return "sqrt(" + radicand + ")", end, true
	}
	if index, ok = rewriteCommands(index); !ok {
		return "", 0, false
	}
	return "root(" + index + "," + radicand + ")", end, true
}
