package assistant

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

// FormatForTerminal converts markdown and LaTeX formatting to terminal-friendly text
func FormatForTerminal(content string) string {
	// First, preprocess LaTeX to Unicode (glamour doesn't handle LaTeX)
	result := preprocessLaTeX(content)

	// Render markdown with glamour
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return result
	}

	rendered, err := renderer.Render(result)
	if err != nil {
		return result
	}

	return strings.TrimSpace(rendered)
}

// preprocessLaTeX converts LaTeX notation to Unicode before markdown rendering
func preprocessLaTeX(content string) string {
	result := content

	// LaTeX display math blocks \[ ... \] → content
	displayMathRegex := regexp.MustCompile(`\\\[\s*([\s\S]*?)\s*\\\]`)
	result = displayMathRegex.ReplaceAllStringFunc(result, func(match string) string {
		inner := displayMathRegex.FindStringSubmatch(match)
		if len(inner) > 1 {
			return "\n" + cleanLaTeX(inner[1]) + "\n"
		}
		return match
	})

	// LaTeX inline math \( ... \) → content
	inlineMathRegex := regexp.MustCompile(`\\\(\s*(.*?)\s*\\\)`)
	result = inlineMathRegex.ReplaceAllStringFunc(result, func(match string) string {
		inner := inlineMathRegex.FindStringSubmatch(match)
		if len(inner) > 1 {
			return cleanLaTeX(inner[1])
		}
		return match
	})

	// \boxed{...} → [content]
	boxedRegex := regexp.MustCompile(`\\boxed\{([^}]+)\}`)
	result = boxedRegex.ReplaceAllString(result, "**[$1]**")

	return result
}

// cleanLaTeX converts LaTeX commands to Unicode symbols
func cleanLaTeX(content string) string {
	result := content

	replacements := []struct {
		pattern string
		replace string
	}{
		{`\\frac\{([^}]+)\}\{([^}]+)\}`, "($1)/($2)"},
		{`\\sqrt\{([^}]+)\}`, "√($1)"},
		{`\\sqrt`, "√"},
		{`\\pm`, "±"},
		{`\\cdot`, "·"},
		{`\\times`, "×"},
		{`\\div`, "÷"},
		{`\\leq`, "≤"},
		{`\\geq`, "≥"},
		{`\\neq`, "≠"},
		{`\\approx`, "≈"},
		{`\\infty`, "∞"},
		{`\\sum`, "Σ"},
		{`\\prod`, "Π"},
		{`\\int`, "∫"},
		{`\\alpha`, "α"},
		{`\\beta`, "β"},
		{`\\gamma`, "γ"},
		{`\\delta`, "δ"},
		{`\\pi`, "π"},
		{`\\theta`, "θ"},
		{`\\lambda`, "λ"},
		{`\\sigma`, "σ"},
		{`\\omega`, "ω"},
		{`\\text\{([^}]+)\}`, "$1"},
		{`\\quad`, "  "},
		{`\\,`, " "},
		{`\\;`, " "},
		{`\\ `, " "},
	}

	for _, r := range replacements {
		re := regexp.MustCompile(r.pattern)
		result = re.ReplaceAllString(result, r.replace)
	}

	// Superscripts: x^2 → x², x^{10} → x¹⁰
	superscriptRegex := regexp.MustCompile(`\^(\{[^}]+\}|[0-9])`)
	result = superscriptRegex.ReplaceAllStringFunc(result, func(match string) string {
		inner := strings.TrimPrefix(match, "^")
		inner = strings.Trim(inner, "{}")
		return toSuperscript(inner)
	})

	// Remove remaining LaTeX commands
	result = regexp.MustCompile(`\\([a-zA-Z]+)`).ReplaceAllString(result, "$1")

	return result
}

func toSuperscript(s string) string {
	sup := map[rune]rune{
		'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
		'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
		'+': '⁺', '-': '⁻', 'n': 'ⁿ',
	}
	var out strings.Builder
	for _, r := range s {
		if v, ok := sup[r]; ok {
			out.WriteRune(v)
		} else {
			out.WriteString("^" + string(r))
		}
	}
	return out.String()
}
