package scheduling

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"task-scheduling-assistant/internal/model"
)

// Intent is what a short reply means in the current conversation step.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentAffirm
	IntentAlternatives
	IntentDecline
	IntentDone
	IntentNotDone
	IntentSnooze
	IntentChoice
)

func (i Intent) String() string {
	switch i {
	case IntentAffirm:
		return "affirm"
	case IntentAlternatives:
		return "alternatives"
	case IntentDecline:
		return "decline"
	case IntentDone:
		return "done"
	case IntentNotDone:
		return "not_done"
	case IntentSnooze:
		return "snooze"
	case IntentChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// Match is an interpreted reply. Number is the 1-based option for IntentChoice
// and the delay in minutes for IntentSnooze.
type Match struct {
	Intent Intent
	Number int
}

const (
	DefaultSnoozeMinutes = 30
	MaxSnoozeMinutes     = 240
)

type entry struct {
	intent  Intent
	minutes int
}

// vocabulary maps normalized tokens to intents, per conversation step.
// Keys are written already accent-folded and lowercased.
var vocabulary = map[model.StateTag]map[string]entry{
	model.StateAwaitingScheduleConfirmation: merge(
		words(IntentAffirm, "oui", "ok", "okay", "valide", "valider", "yes", "y", "d'accord", "go"),
		words(IntentAlternatives, "autre", "autres", "changer", "other", "others", "options", "autres options", "other options"),
		words(IntentDecline, "non", "no", "pas maintenant", "annuler", "cancel", "not now"),
	),
	model.StateAwaitingSlotChoice: merge(
		words(IntentDecline, "non", "no", "pas maintenant", "annuler", "cancel", "not now"),
	),
	model.StateAwaitingTaskCompletion: merge(
		words(IntentDone, "oui", "fait", "fini", "termine", "done", "yes", "ok"),
		words(IntentNotDone, "non", "pas fait", "pas fini", "no", "not done"),
		snooze(DefaultSnoozeMinutes, "report", "reporter", "plus tard", "later", "snooze", "+30", "30 min"),
		snooze(15, "+15", "15 min"),
		snooze(60, "+60", "60 min", "1h"),
	),
}

var (
	snoozePattern = regexp.MustCompile(`^\+\s*(\d{1,3})\s*(?:m|min|mins|minute|minutes)?$`)
	choicePattern = regexp.MustCompile(`^#?(\d{1,2})$`)
	spaces        = regexp.MustCompile(`\s+`)
	folder        = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

func words(intent Intent, tokens ...string) map[string]entry {
	m := make(map[string]entry, len(tokens))
	for _, t := range tokens {
		m[t] = entry{intent: intent}
	}
	return m
}

func snooze(minutes int, tokens ...string) map[string]entry {
	m := make(map[string]entry, len(tokens))
	for _, t := range tokens {
		m[t] = entry{intent: IntentSnooze, minutes: minutes}
	}
	return m
}

func merge(tables ...map[string]entry) map[string]entry {
	out := make(map[string]entry)
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// Normalize lowercases, accent-folds and trims surrounding punctuation and markdown.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if folded, _, err := transform.String(folder, s); err == nil {
		s = folded
	}
	s = strings.NewReplacer("’", "'", "‘", "'").Replace(s)
	s = strings.TrimFunc(s, func(r rune) bool {
		if r == '+' || r == '#' {
			return false
		}
		return unicode.IsSpace(r) || unicode.IsPunct(r) || r == '`' || r == '~'
	})
	return spaces.ReplaceAllString(s, " ")
}

// Interpret classifies text for the given conversation step. It never fails:
// anything outside the step's vocabulary is IntentUnknown.
func Interpret(state model.StateTag, text string) Match {
	s := Normalize(text)
	if s == "" {
		return Match{}
	}

	if e, ok := vocabulary[state][s]; ok {
		return Match{Intent: e.intent, Number: e.minutes}
	}

	switch state {
	case model.StateAwaitingSlotChoice:
		if m := choicePattern.FindStringSubmatch(s); m != nil {
			n, _ := strconv.Atoi(m[1])
			return Match{Intent: IntentChoice, Number: n}
		}
	case model.StateAwaitingTaskCompletion:
		if m := snoozePattern.FindStringSubmatch(s); m != nil {
			n, _ := strconv.Atoi(m[1])
			if n >= 1 && n <= MaxSnoozeMinutes {
				return Match{Intent: IntentSnooze, Number: n}
			}
		}
	}
	return Match{}
}
