// Package intent routes offline voice commands: time and date questions,
// spoken arithmetic, and the reminder operations. Anything the router
// cannot serve gets the offline-capabilities apology.
package intent

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"talkassist/internal/mathexpr"
	"talkassist/internal/reminder"
	"talkassist/internal/timeparse"
)

var (
	exitRe = regexp.MustCompile(`\b(goodbye|exit|quit|stop talking|bye|see you|end conversation|terminate)\b`)

	// Guard for the math branch: "what is the time" shares triggers with
	// arithmetic questions.
	timeQuestionRe = regexp.MustCompile(`\b(time|date|day|today|tomorrow|when)\b`)

	timeQueryRe = regexp.MustCompile(`\btime\b`)
	dateQueryRe = regexp.MustCompile(`\bdate\b|\bwhat day is (it|today)\b|\bwhat is today\b`)

	remindMeRe   = regexp.MustCompile(`\bremind\s+me\b`)
	digitsRe     = regexp.MustCompile(`(\d+)`)
	numberWordRe = regexp.MustCompile(`(?:number|#)\s*([a-z]+)`)
	ordinalRe    = regexp.MustCompile(`\b(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)\b`)

	timeReferenceRe = regexp.MustCompile(`\b(tonight|tomorrow|today|monday|tuesday|wednesday|thursday|friday|saturday|sunday|morning|afternoon|evening|night|next week|pm|am)\b`)
	atClockRe       = regexp.MustCompile(`\bat\s+\d{1,2}`)
	inOffsetRe      = regexp.MustCompile(`\bin\s+\d+`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

var listPhrases = []string{"list reminders", "show reminders", "what are my reminders", "my reminders"}

var setPhrases = []string{"set a reminder", "reminder to", "need to", "have to"}

var deleteNumberPhrases = []string{"delete reminder", "remove reminder", "cancel reminder"}

var deleteContentPhrases = []string{"delete the", "remove the", "cancel the"}

var clearPhrases = []string{"clear all reminders", "delete all reminders", "remove all reminders", "cancel all reminders"}

// contentStripPhrases are removed from a delete-by-content command to
// leave just the search words. Order matters: longer phrases first.
var contentStripPhrases = []string{
	"delete the", "remove the", "cancel the",
	"delete", "cancel",
	"reminder about", "reminder to", "reminder",
}

var questionWords = []string{
	"what", "when", "where", "how", "why", "who",
	"is", "are", "do", "does", "can", "will", "should",
}

const fallbackReply = "I'm sorry, I can only tell the time, date, set reminders, and list reminders in offline mode."

// Response is the router's answer to one command.
type Response struct {
	Text string
	Exit bool
}

// Router dispatches offline commands against the reminder manager.
type Router struct {
	manager *reminder.Manager
}

func NewRouter(manager *reminder.Manager) *Router {
	return &Router{manager: manager}
}

// Handle routes one command and returns the spoken reply.
func (rt *Router) Handle(text string) Response {
	low := strings.ToLower(text)

	if exitRe.MatchString(low) {
		return Response{Text: "Goodbye! Have a great day!", Exit: true}
	}

	if mathexpr.IsMathExpression(low) && !timeQuestionRe.MatchString(low) {
		result, err := mathexpr.Evaluate(text)
		if err != nil {
			return Response{Text: "Sorry, I couldn't calculate that."}
		}
		return Response{Text: "The answer is " + strconv.FormatFloat(result, 'f', -1, 64)}
	}

	if timeQueryRe.MatchString(low) {
		return Response{Text: "The current time is " + rt.manager.Now().Format("03:04 PM")}
	}

	if dateQueryRe.MatchString(low) {
		return Response{Text: "Today is " + rt.manager.Now().Format("Monday, January 02, 2006")}
	}

	if containsAny(low, listPhrases) {
		return rt.listReminders()
	}

	if remindMeRe.MatchString(low) || containsAny(low, setPhrases) {
		return rt.setReminder(text)
	}

	if containsAny(low, deleteNumberPhrases) {
		return rt.deleteByNumber(low)
	}

	if containsAny(low, deleteContentPhrases) {
		return rt.deleteByContent(low)
	}

	if containsAny(low, clearPhrases) {
		return rt.clearAll()
	}

	// A time reference without a recognized command is treated as a
	// reminder request, unless it reads like a question.
	if timeReferenceRe.MatchString(low) || atClockRe.MatchString(low) || inOffsetRe.MatchString(low) {
		if !isQuestion(low) {
			set := rt.setReminder(text)
			return Response{Text: "Got it! I'll set that reminder for you.\n" + set.Text}
		}
	}

	return Response{Text: fallbackReply}
}

func (rt *Router) listReminders() Response {
	entries := rt.manager.List()
	if len(entries) == 0 {
		return Response{Text: "You have no active reminders."}
	}

	plural := ""
	if len(entries) > 1 {
		plural = "s"
	}

	now := rt.manager.Now()
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d active reminder%s", len(entries), plural)
	for _, e := range entries {
		due := e.DueAt.In(now.Location()).Format("03:04 PM on January 02")
		fmt.Fprintf(&b, "\nReminder %d at %s: %s", e.Number, due, e.Text)
	}
	return Response{Text: b.String()}
}

func (rt *Router) setReminder(text string) Response {
	if timeparse.StripTrigger(strings.TrimSpace(text)) == "" {
		return Response{Text: "What would you like me to remind you about?"}
	}

	confirmation, err := rt.manager.Set(text)
	switch {
	case err == nil:
		return Response{Text: confirmation}
	case errors.Is(err, reminder.ErrTimeInPast):
		return Response{Text: "That time has already passed. Please give me a future time."}
	case errors.Is(err, reminder.ErrCouldNotUnderstandTime):
		return Response{Text: "I could not understand the time. Try something like 'remind me to call mom in 30 minutes'."}
	default:
		return Response{Text: "Sorry, I couldn't save the reminder."}
	}
}

func (rt *Router) deleteByNumber(low string) Response {
	number, ok := extractNumber(low)
	if !ok {
		return Response{Text: "Please say the reminder number, for example 'delete reminder number 2'."}
	}

	count := len(rt.manager.List())
	if count == 0 {
		return Response{Text: "You have no active reminders to delete."}
	}

	deleted, err := rt.manager.Delete(number)
	switch {
	case errors.Is(err, reminder.ErrInvalidOrdinal):
		return Response{Text: fmt.Sprintf("Invalid reminder number. You have %d active reminders.", count)}
	case err != nil:
		return Response{Text: "Error deleting reminder."}
	}
	return Response{Text: fmt.Sprintf("Reminder number %d deleted: %s", number, deleted.Text)}
}

func (rt *Router) deleteByContent(low string) Response {
	query := low
	for _, phrase := range contentStripPhrases {
		query = strings.ReplaceAll(query, phrase, "")
	}
	query = strings.TrimSpace(query)
	if len(query) < 3 {
		return Response{Text: "Please tell me what the reminder is about. For example, say 'delete the reminder about calling mom'"}
	}

	if len(rt.manager.List()) == 0 {
		return Response{Text: "You have no active reminder to delete."}
	}

	deleted, matches, err := rt.manager.DeleteByContent(query)
	switch {
	case errors.Is(err, reminder.ErrNotFound):
		return Response{Text: fmt.Sprintf("I could not find any reminders matching '%s'. Please try again with different keywords.", query)}
	case err != nil:
		return Response{Text: "Failed to delete the reminder. Please try again"}
	}

	if deleted != nil {
		return Response{Text: "Deleted reminder: " + deleted.Text}
	}

	now := rt.manager.Now()
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d reminders matching your request:", len(matches))
	for _, e := range matches {
		due := e.DueAt.In(now.Location()).Format("03:04 PM on January 02")
		fmt.Fprintf(&b, "\nNumber %d: %s at %s", e.Number, e.Text, due)
	}
	b.WriteString("\nPlease say 'delete reminder number' followed by the number you want to delete")
	return Response{Text: b.String()}
}

func (rt *Router) clearAll() Response {
	if len(rt.manager.List()) == 0 {
		return Response{Text: "You have no reminders to clear."}
	}

	if _, err := rt.manager.ClearAll(); err != nil {
		return Response{Text: "Error clearing reminders."}
	}
	return Response{Text: "All reminders have been cleared."}
}

// extractNumber pulls a reminder number out of a delete command: digits
// first, then "number three" / "#3" style, then a bare ordinal word.
func extractNumber(low string) (int, bool) {
	if m := digitsRe.FindStringSubmatch(low); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}

	if m := numberWordRe.FindStringSubmatch(low); m != nil {
		if n, ok := numberWords[m[1]]; ok {
			return n, true
		}
	}

	if m := ordinalRe.FindStringSubmatch(low); m != nil {
		return numberWords[m[1]], true
	}

	return 0, false
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func isQuestion(low string) bool {
	for _, w := range questionWords {
		if strings.HasPrefix(low, w+" ") {
			return true
		}
	}
	return false
}
