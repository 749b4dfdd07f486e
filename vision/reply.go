package vision

import (
	"regexp"
	"strings"
	"unicode"
)

const readPrompt = `You are reading handwritten math from a whiteboard image.
Reply with exactly one line and nothing else:
- NOT_MATH if the image does not contain math
- INCOMPLETE if the expression is still being written
- UNCLEAR if you cannot read it
- otherwise: EXPRESSION: <expression as written>, ANSWER: <evaluated answer>`

const solvePrompt = `Solve the following math expression. Return only the final simplified result.
Do not show steps, explanations, units or markdown.

%s`

type Status int

const (
	StatusOK Status = iota
	StatusNotMath
	StatusIncomplete
	StatusUnclear
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotMath:
		return "not math"
	case StatusIncomplete:
		return "incomplete"
	case StatusUnclear:
		return "unclear"
	default:
		return "invalid"
	}
}

// Reading is a parsed model reply. Expression and Answer are only set
// for StatusOK.
type Reading struct {
	Status     Status
	Expression string
	Answer     string
	Raw        string
}

var (
	expressionRe = regexp.MustCompile(`(?i)EXPRESSION:\s*(.+?)\s*,\s*ANSWER:`)
	answerRe     = regexp.MustCompile(`(?i)ANSWER:\s*(.+)`)
	markdown     = strings.NewReplacer("**", "", "`", "")
)

// ParseReply extracts EXPRESSION and ANSWER from a reply. Empty or "?"
// answers are invalid.
func ParseReply(reply string) Reading {
	raw := reply
	reply = strings.TrimSpace(markdown.Replace(reply))
	upper := strings.ToUpper(reply)

	switch {
	case strings.HasPrefix(upper, "NOT_MATH"):
		return Reading{Status: StatusNotMath, Raw: raw}
	case strings.HasPrefix(upper, "INCOMPLETE"):
		return Reading{Status: StatusIncomplete, Raw: raw}
	case strings.HasPrefix(upper, "UNCLEAR"):
		return Reading{Status: StatusUnclear, Raw: raw}
	}

	am := answerRe.FindStringSubmatch(reply)
	if am == nil {
		return Reading{Status: StatusInvalid, Raw: raw}
	}
	answer := cleanAnswer(firstLine(am[1]))
	if answer == "" || answer == "?" {
		return Reading{Status: StatusInvalid, Raw: raw}
	}

	var expression string
	if em := expressionRe.FindStringSubmatch(reply); em != nil {
		expression = strings.TrimSpace(em[1])
	}
	if expression == "" {
		return Reading{Status: StatusInvalid, Raw: raw}
	}

	return Reading{Status: StatusOK, Expression: expression, Answer: answer, Raw: raw}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func cleanAnswer(s string) string {
	s = strings.TrimSpace(markdown.Replace(s))
	s = strings.TrimPrefix(s, "=")
	return strings.TrimSpace(strings.TrimSuffix(s, "."))
}

const mathOperators = "+-*/=×÷^·−√"

// LooksLikeMath rejects OCR output that is probably prose: it needs a
// digit, an operator or equals glyph, and at most two words of three or
// more letters.
func LooksLikeMath(s string) bool {
	if !strings.ContainsAny(s, "0123456789") {
		return false
	}
	if !strings.ContainsAny(s, mathOperators) {
		return false
	}

	words := strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	long := 0
	for _, w := range words {
		if len([]rune(w)) >= 3 {
			long++
		}
	}
	return long <= 2
}
