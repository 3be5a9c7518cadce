// Package timeparse resolves natural-language time expressions such as
// "in 30 minutes", "tomorrow at 5pm" or "friday evening" into concrete
// instants relative to a caller-supplied reference time.
package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Resolution failures. Callers tell them apart with errors.Is.
var (
	// ErrUnrecognized means no supported time expression was found in the text.
	ErrUnrecognized = errors.New("could not understand the time")
	// ErrPastTime means the expression resolved to an instant at or before
	// the reference time.
	ErrPastTime = errors.New("that time has already passed")
)

// clock is a wall-clock time of day extracted from text.
type clock struct {
	hour   int
	minute int
}

var (
	wordNumberRe = regexp.MustCompile(`(?i)\b(eleven|twelve|fifteen|twenty|thirty|forty|fifty|sixty|one|two|three|four|five|six|seven|eight|nine|ten)\b`)
	wordNumbers  = map[string]string{
		"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
		"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
		"eleven": "11", "twelve": "12", "fifteen": "15", "twenty": "20",
		"thirty": "30", "forty": "40", "fifty": "50", "sixty": "60",
	}

	tonightRe = regexp.MustCompile(`\btonight\b`)
	// explicitClockRe spots a day word already paired with a numeric clock,
	// in which case a bare daypart elsewhere in the text is left alone.
	explicitClockRe  = regexp.MustCompile(`\b(tomorrow|today|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s+(at\s+)?\d+\s*(am|pm)`)
	fullWeekdayRe    = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	relativeOffsetRe = regexp.MustCompile(`in (\d+) (minute|minutes|min|mins|hour|hours|hr|hrs|day|days)`)
	weekdayRe        = regexp.MustCompile(`\b(monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thur|thu|friday|fri|saturday|sat|sunday|sun)\b`)
)

// weekdayNums maps day names and their spoken abbreviations to a
// Monday-based index.
var weekdayNums = map[string]int{
	"monday": 0, "mon": 0,
	"tuesday": 1, "tue": 1, "tues": 1,
	"wednesday": 2, "wed": 2,
	"thursday": 3, "thu": 3, "thur": 3, "thurs": 3,
	"friday": 4, "fri": 4,
	"saturday": 5, "sat": 5,
	"sunday": 6, "sun": 6,
}

type daypartRule struct {
	clock   string
	withDay *regexp.Regexp
	bare    *regexp.Regexp
}

var daypartRules = makeDaypartRules()

func makeDaypartRules() []daypartRule {
	parts := []struct{ name, clock string }{
		{"morning", "9 am"},
		{"afternoon", "3 pm"},
		{"evening", "7 pm"},
		{"night", "9 pm"},
	}
	rules := make([]daypartRule, 0, len(parts))
	for _, p := range parts {
		rules = append(rules, daypartRule{
			clock:   p.clock,
			withDay: regexp.MustCompile(`\b(tomorrow|today|next\s+\w+|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s+` + p.name + `\b`),
			bare:    regexp.MustCompile(`\b` + p.name + `\b`),
		})
	}
	return rules
}

// Resolve parses a natural-language time expression and returns the instant
// it refers to, relative to ref. The result is always strictly after ref:
// a bare clock time that already passed today rolls over to tomorrow, and
// anything else landing at or before ref fails with ErrPastTime. Text with
// no recognizable expression fails with ErrUnrecognized. The same text and
// reference always produce the same instant.
func Resolve(text string, ref time.Time) (time.Time, error) {
	text = normalize(strings.ToLower(strings.TrimSpace(text)))

	// "next week" on its own, with no weekday or clock to refine it.
	if strings.Contains(text, "next week") && !fullWeekdayRe.MatchString(text) {
		if _, ok := extractClock(text); !ok {
			return ensureFuture(dayAt(ref.AddDate(0, 0, 7), clock{hour: 9}), ref)
		}
	}

	if m := relativeOffsetRe.FindStringSubmatch(text); m != nil {
		value, _ := strconv.Atoi(m[1])
		switch unit := m[2]; {
		case strings.HasPrefix(unit, "min"):
			return ensureFuture(ref.Add(time.Duration(value)*time.Minute), ref)
		case strings.HasPrefix(unit, "h"):
			return ensureFuture(ref.Add(time.Duration(value)*time.Hour), ref)
		default:
			return ensureFuture(ref.AddDate(0, 0, value), ref)
		}
	}

	if strings.Contains(text, "yesterday") {
		return time.Time{}, fmt.Errorf("%w: it was yesterday", ErrPastTime)
	}

	if strings.Contains(text, "tomorrow") {
		c, ok := extractClock(text)
		if !ok {
			c = clock{hour: 9}
		}
		return ensureFuture(dayAt(ref.AddDate(0, 0, 1), c), ref)
	}

	if strings.Contains(text, "today") {
		if c, ok := extractClock(text); ok {
			target := dayAt(ref, c)
			if !target.After(ref) {
				return time.Time{}, fmt.Errorf("%w today", ErrPastTime)
			}
			return target, nil
		}
		// "today" with no usable clock falls through to the remaining shapes.
	}

	if m := weekdayRe.FindStringSubmatch(text); m != nil {
		daysAhead := weekdayNums[m[1]] - mondayIndexed(ref.Weekday())
		if daysAhead < 0 {
			daysAhead += 7
		}
		// "next friday" skips ahead to the following week.
		if strings.Contains(text, "next") && daysAhead < 7 {
			daysAhead += 7
		}
		target := ref.AddDate(0, 0, daysAhead)
		c, ok := extractClock(text)
		if !ok {
			c = clock{hour: 9}
		}
		return ensureFuture(dayAt(target, c), ref)
	}

	// A bare clock time: today if still ahead, otherwise tomorrow.
	if c, ok := extractClock(text); ok {
		target := dayAt(ref, c)
		if !target.After(ref) {
			target = dayAt(ref.AddDate(0, 0, 1), c)
		}
		return target, nil
	}

	return time.Time{}, fmt.Errorf("%w: try formats like %q, %q, or %q",
		ErrUnrecognized, "in 2 hours", "tomorrow at 1pm", "monday at 1pm")
}

// normalize rewrites spelled-out numbers, "tonight" and daypart words so the
// expression shapes in Resolve see a uniform "<day> at <clock>" form.
func normalize(text string) string {
	text = wordsToNumbers(text)
	text = tonightRe.ReplaceAllString(text, "today night")
	for _, rule := range daypartRules {
		text = rule.withDay.ReplaceAllString(text, "${1} at "+rule.clock)
	}
	for _, rule := range daypartRules {
		if !explicitClockRe.MatchString(text) {
			text = rule.bare.ReplaceAllString(text, "today at "+rule.clock)
		}
	}
	return text
}

func wordsToNumbers(text string) string {
	return wordNumberRe.ReplaceAllStringFunc(text, func(w string) string {
		return wordNumbers[strings.ToLower(w)]
	})
}

func ensureFuture(t, ref time.Time) (time.Time, error) {
	if !t.After(ref) {
		return time.Time{}, ErrPastTime
	}
	return t, nil
}

// dayAt anchors a wall-clock time to the calendar date of day.
func dayAt(day time.Time, c clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, 0, 0, day.Location())
}

// mondayIndexed converts Go's Sunday-based weekday to a Monday-based index.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

var (
	colonMeridiemRe   = regexp.MustCompile(`(\d{1,2})[:.](\d{2})\s*(am|pm|a\.m\.|p\.m\.)`)
	hourMeridiemRe    = regexp.MustCompile(`(\d{1,2})\s*(am|pm|a\.m\.|p\.m\.)`)
	spacedMeridiemRe  = regexp.MustCompile(`(\d{1,2})\s+(\d{2})\s*(am|pm|a\.m\.|p\.m\.)`)
	compactMeridiemRe = regexp.MustCompile(`\b(\d{3,4})\s*(am|pm|a\.m\.|p\.m\.)\b`)
	colon24hRe        = regexp.MustCompile(`(\d{1,2})[:.](\d{2})`)
	meridiemAfterRe   = regexp.MustCompile(`^\s*[ap]\.?m\.?`)
)

// extractClock pulls a wall-clock time out of text, trying the most specific
// shapes first: "10:30am", "10am", "10 30 pm", "1030am", then 24-hour "16:45".
// A shape that parses but lands out of range falls through to the next one.
func extractClock(text string) (clock, bool) {
	if m := colonMeridiemRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour = applyMeridiem(hour, m[3]); hour < 24 && minute < 60 {
			return clock{hour, minute}, true
		}
	}
	if m := hourMeridiemRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour = applyMeridiem(hour, m[2]); hour < 24 {
			return clock{hour: hour}, true
		}
	}
	if m := spacedMeridiemRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour = applyMeridiem(hour, m[3]); hour < 24 && minute < 60 {
			return clock{hour, minute}, true
		}
	}
	if m := compactMeridiemRe.FindStringSubmatch(text); m != nil {
		raw, _ := strconv.Atoi(m[1])
		hour, minute := raw/100, raw%100
		if hour = applyMeridiem(hour, m[2]); hour < 24 && minute < 60 {
			return clock{hour, minute}, true
		}
	}
	// 24-hour times carry no meridiem marker; skip any match that has one.
	for _, idx := range colon24hRe.FindAllStringSubmatchIndex(text, -1) {
		if meridiemAfterRe.MatchString(text[idx[1]:]) {
			continue
		}
		hour, _ := strconv.Atoi(text[idx[2]:idx[3]])
		minute, _ := strconv.Atoi(text[idx[4]:idx[5]])
		if hour < 24 && minute < 60 {
			return clock{hour, minute}, true
		}
	}
	return clock{}, false
}

func applyMeridiem(hour int, meridiem string) int {
	if strings.HasPrefix(meridiem, "p") {
		if hour != 12 {
			hour += 12
		}
	} else if hour == 12 {
		hour = 0
	}
	return hour
}
