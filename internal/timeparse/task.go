package timeparse

import (
	"regexp"
	"strings"
)

var triggerPrefixRe = regexp.MustCompile(`(?i)^(?:remind\s+me(?:\s+to)?|set\s+(?:a\s+)?reminder(?:\s+to)?|remember\s+to|we\s+(?:need|have)\s+to)\s+`)

// morrowFixes repair "tomorrow" split across words by speech transcription.
var morrowFixes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)^morrow\b`), "tomorrow"},
	{regexp.MustCompile(`(?i)\bto\s+morrow\b`), "tomorrow"},
}

// StripTrigger removes the request phrasing ("remind me to", "set a reminder
// to") from the front of a command, leaving the task and time expression.
func StripTrigger(text string) string {
	text = triggerPrefixRe.ReplaceAllString(strings.TrimSpace(text), "")
	for _, f := range morrowFixes {
		text = f.re.ReplaceAllString(text, f.repl)
	}
	return strings.TrimSpace(text)
}

// taskTimePatterns are the time phrases removed from a command to leave just
// the task description.
var taskTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)in\s+\d+\s+(minute|minutes|min|mins|hour|hours|hr|hrs|day|days)\b`),
	regexp.MustCompile(`(?i)\btomorrow\s+at\s+`),
	regexp.MustCompile(`(?i)\btoday\s+at\s+`),
	regexp.MustCompile(`(?i)\bon\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s+at\s+`),
	regexp.MustCompile(`(?i)\bat\s+\d{1,2}[:.]?\d{0,2}\s*(am|pm|a\.m\.|p\.m\.)\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}[:.]?\d{0,2}\s*(am|pm|a\.m\.|p\.m\.)\b`),
	regexp.MustCompile(`(?i)\bon\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`(?i)\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`(?i)\b(morning|afternoon|evening|night|tonight)\b`),
	regexp.MustCompile(`(?i)\bnext\s+week\b`),
}

var (
	weekdayWordRe     = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	dayWordRe         = regexp.MustCompile(`(?i)\b(tomorrow|today)\b`)
	splitMorrowRe     = regexp.MustCompile(`(?i)\b(to\s+)?morrow\b`)
	punctuationRe     = regexp.MustCompile(`[.,!?]+`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
	leadingFillerRe   = regexp.MustCompile(`(?i)^(to|at|on|in)\s+`)
	trailingFillerRe  = regexp.MustCompile(`(?i)\s+(to|at|on|in)$`)
	residualTriggerRe = regexp.MustCompile(`(?i)\b(we\s+)?remind\s+me(\s+to)?\b`)
	leadingForToRe    = regexp.MustCompile(`(?i)^(for|to)\s+`)
	digitsOnlyRe      = regexp.MustCompile(`^\d+$`)
)

// ExtractTask pulls the task description out of a command by stripping its
// time phrases, falling back to the whole text when stripping leaves nothing
// usable.
func ExtractTask(text string) string {
	task := wordsToNumbers(text)
	for _, re := range taskTimePatterns {
		task = re.ReplaceAllString(task, "")
	}
	task = weekdayWordRe.ReplaceAllString(task, "")
	task = dayWordRe.ReplaceAllString(task, "")
	task = splitMorrowRe.ReplaceAllString(task, "")
	task = punctuationRe.ReplaceAllString(task, "")
	task = whitespaceRe.ReplaceAllString(task, " ")
	task = strings.TrimSpace(task)
	task = leadingFillerRe.ReplaceAllString(task, "")
	task = trailingFillerRe.ReplaceAllString(task, "")

	if len(task) < 3 || digitsOnlyRe.MatchString(task) {
		task = text
	}
	task = strings.TrimSpace(residualTriggerRe.ReplaceAllString(task, ""))
	return strings.TrimSpace(leadingForToRe.ReplaceAllString(task, ""))
}
