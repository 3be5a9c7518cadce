// Package mathexpr evaluates spoken arithmetic such as
// "what is five plus three" or "the product of 4 and 7".
package mathexpr

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Verbal operators, longest phrase first so "multiplied by" wins over "by".
var replacements = []struct {
	re     *regexp.Regexp
	symbol string
}{
	{regexp.MustCompile(`\bmultiplied by\b`), "*"},
	{regexp.MustCompile(`\bdivided by\b`), "/"},
	{regexp.MustCompile(`\bminus\b`), "-"},
	{regexp.MustCompile(`\btimes\b`), "*"},
	{regexp.MustCompile(`\bplus\b`), "+"},
	{regexp.MustCompile(`\bover\b`), "/"},
	{regexp.MustCompile(`\bx\b`), "*"},
}

var (
	timeWordRe    = regexp.MustCompile(`\b(time|date|day|month|year)\b`)
	mathKeywordRe = regexp.MustCompile(`\b(multiplied by|divided by|sum of|product of|difference of|quotient of|what's|what is|calculate|compute|solve|find|equals|equal|plus|minus|times|over|x)\b`)
	triggerRe     = regexp.MustCompile(`\b(what's|what is|calculate|compute|solve|find|equals|equal)\b`)
	phraseRe      = regexp.MustCompile(`(sum|product|difference|quotient) of ([\w\s]+?) and ([\w\s]+)`)
	nonWordRe     = regexp.MustCompile(`[^\w-]`)
	invalidRe     = regexp.MustCompile(`[^\d\+\-\*/\.\s]`)
)

var phraseOps = map[string]string{
	"sum":        "+",
	"product":    "*",
	"difference": "-",
	"quotient":   "/",
}

var wordNumbers = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50, "sixty": 60,
	"seventy": 70, "eighty": 80, "ninety": 90,
	"hundred": 100, "thousand": 1000,
}

// IsMathExpression reports whether the text looks like an arithmetic
// question. Time and date questions share words with math triggers
// ("what is the time"), so those are excluded first.
func IsMathExpression(text string) bool {
	low := strings.ToLower(text)
	if timeWordRe.MatchString(low) {
		return false
	}
	return mathKeywordRe.MatchString(low)
}

// Evaluate converts spoken math into an expression and computes it,
// rounding the result to two decimal places.
func Evaluate(text string) (float64, error) {
	expr := strings.ToLower(text)
	expr = triggerRe.ReplaceAllString(expr, "")

	// "sum of five and ten" → "five + ten"
	expr = phraseRe.ReplaceAllStringFunc(expr, func(match string) string {
		parts := phraseRe.FindStringSubmatch(match)
		return parts[2] + " " + phraseOps[parts[1]] + " " + parts[3]
	})

	for _, r := range replacements {
		expr = r.re.ReplaceAllString(expr, " "+r.symbol+" ")
	}

	var converted []string
	for _, w := range strings.Fields(expr) {
		if w == "+" || w == "-" || w == "*" || w == "/" {
			converted = append(converted, w)
			continue
		}
		clean := nonWordRe.ReplaceAllString(w, "")
		if clean == "" {
			continue
		}
		if n, ok := spokenNumber(clean); ok {
			converted = append(converted, strconv.Itoa(n))
		} else {
			converted = append(converted, clean)
		}
	}

	expr = strings.Join(converted, " ")
	expr = strings.ReplaceAll(expr, "and", "")
	expr = strings.ReplaceAll(expr, "of", "")
	expr = strings.TrimSpace(invalidRe.ReplaceAllString(expr, ""))
	if expr == "" {
		return 0, errors.New("empty or invalid math expression")
	}

	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}

	p := &parser{tokens: tokens}
	result, err := p.parseExpr(0)
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.tokens) {
		return 0, fmt.Errorf("unexpected %q in expression", p.tokens[p.pos])
	}

	return math.Round(result*100) / 100, nil
}

// spokenNumber resolves single and hyphenated number words
// ("five", "twenty-five").
func spokenNumber(word string) (int, bool) {
	if n, ok := wordNumbers[word]; ok {
		return n, true
	}
	tens, units, ok := strings.Cut(word, "-")
	if !ok {
		return 0, false
	}
	tn, tok := wordNumbers[tens]
	un, uok := wordNumbers[units]
	if !tok || !uok || tn < 20 || tn%10 != 0 || un >= 10 {
		return 0, false
	}
	return tn + un, true
}

func tokenize(expr string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, string(c))
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(expr) && (expr[j] >= '0' && expr[j] <= '9' || expr[j] == '.') {
				j++
			}
			tokens = append(tokens, expr[i:j])
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q in expression", c)
		}
	}
	if len(tokens) == 0 {
		return nil, errors.New("empty or invalid math expression")
	}
	return tokens, nil
}

// parser is a precedence climber over the token stream; * and / bind
// tighter than + and -, all operators associate left.
type parser struct {
	tokens []string
	pos    int
}

func (p *parser) parseExpr(minPrec int) (float64, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	for p.pos < len(p.tokens) {
		op := p.tokens[p.pos]
		prec, ok := precedence(op)
		if !ok {
			return 0, fmt.Errorf("expected operator, got %q", op)
		}
		if prec < minPrec {
			break
		}
		p.pos++

		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return 0, err
		}

		switch op {
		case "+":
			left += right
		case "-":
			left -= right
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, errors.New("division by zero")
			}
			left /= right
		}
	}

	return left, nil
}

func (p *parser) parsePrimary() (float64, error) {
	if p.pos >= len(p.tokens) {
		return 0, errors.New("expression ends with an operator")
	}

	switch p.tokens[p.pos] {
	case "-":
		p.pos++
		v, err := p.parsePrimary()
		return -v, err
	case "+":
		p.pos++
		return p.parsePrimary()
	}

	v, err := strconv.ParseFloat(p.tokens[p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.tokens[p.pos])
	}
	p.pos++
	return v, nil
}

func precedence(op string) (int, bool) {
	switch op {
	case "+", "-":
		return 1, true
	case "*", "/":
		return 2, true
	}
	return 0, false
}
