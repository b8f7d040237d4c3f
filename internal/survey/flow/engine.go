package flow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Song-beanpp/film-survey-app-final/internal/survey"
)

// Notices shown to the respondent. The survey runs bilingually, so the texts
// carry both languages in one string.
const (
	MsgValidation      = "请完成所有必填项 | Please complete all required fields"
	MsgConsentDeclined = "感谢您的关注。Thank you for your interest."
)

// HighlightDuration is how long a failed-validation highlight stays on the
// offending inputs before reverting.
const HighlightDuration = 2 * time.Second

// Answer is one answered value: a single string for radio and text inputs, an
// ordered list for checkbox groups.
type Answer struct {
	Value  string
	Values []string
	Multi  bool
}

// Result reports the outcome of an Advance call.
type Result struct {
	Step int

	// Invalid is set when required fields of the active step are missing.
	// No transition happened; MissingKeys carries the offending keys and
	// HighlightFor how long to flag them.
	Invalid      bool
	MissingKeys  []string
	HighlightFor time.Duration

	// Terminated is set when consent was declined: the flow is over and the
	// session should be discarded after the notice is shown.
	Terminated bool

	// Disqualified is set when an eligibility rule jumped the flow to the
	// disqualification terminal.
	Disqualified bool

	// ReadyToSubmit is set when the last editable step validated cleanly.
	// The flow only reaches the completion terminal through Complete, after
	// the submission round-trip succeeds.
	ReadyToSubmit bool

	Notice string
}

// Engine is the wizard state machine. One engine holds one respondent's
// session: the active step, the incrementally built answer set, and the
// branching rules that decide where Advance lands.
type Engine struct {
	films      []survey.Film
	steps      map[int]Step
	lastFilm   int
	current    int
	answers    map[string]Answer
	terminated bool
}

func New() *Engine {
	return NewWithFilms(survey.Films)
}

func NewWithFilms(films []survey.Film) *Engine {
	last := 0
	for _, f := range films {
		if f.Section > last {
			last = f.Section
		}
	}
	return &Engine{
		films:    films,
		steps:    BuildSteps(films),
		lastFilm: last,
		current:  StepConsent,
		answers:  make(map[string]Answer),
	}
}

func (e *Engine) Current() int { return e.current }

func (e *Engine) Terminated() bool { return e.terminated }

// Set records an answer. Accepted values are string and []string (or []any of
// strings, as decoded from JSON). An empty value clears the key, keeping the
// answer set free of nulls. Setting a film's watched answer to anything other
// than the affirmative clears that film's rating and free-text answers, so the
// coupling holds on every change, not only the first.
func (e *Engine) Set(key string, value any) error {
	if e.terminated {
		return fmt.Errorf("flow already terminated")
	}

	ans, err := toAnswer(value)
	if err != nil {
		return fmt.Errorf("answer %q: %w", key, err)
	}

	if ans == nil {
		delete(e.answers, key)
	} else {
		e.answers[key] = *ans
	}

	if filmId, suffix, ok := survey.ParseFieldKey(key); ok && suffix == survey.FieldWatched {
		if ans == nil || ans.Value != survey.WatchedYes {
			e.clearFilmBlock(filmId)
		}
	}
	return nil
}

func toAnswer(value any) (*Answer, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return &Answer{Value: v}, nil
	case []string:
		if len(v) == 0 {
			return nil, nil
		}
		return &Answer{Values: v, Multi: true}, nil
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("unsupported list element %T", item)
			}
			list = append(list, s)
		}
		if len(list) == 0 {
			return nil, nil
		}
		return &Answer{Values: list, Multi: true}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

func (e *Engine) clearFilmBlock(filmId string) {
	for _, suffix := range survey.RatingFields {
		delete(e.answers, survey.FieldKey(filmId, suffix))
	}
	for _, suffix := range survey.TextFields {
		delete(e.answers, survey.FieldKey(filmId, suffix))
	}
}

// Answer returns the recorded answer for a key.
func (e *Engine) Answer(key string) (Answer, bool) {
	a, ok := e.answers[key]
	return a, ok
}

// RequiredKeys lists the keys currently required on the active step, with
// conditional requiredness already resolved against the answer set.
func (e *Engine) RequiredKeys() []string {
	step, ok := e.steps[e.current]
	if !ok || step.Terminal {
		return nil
	}
	var keys []string
	for _, q := range step.Questions {
		if e.questionRequired(q) {
			keys = append(keys, q.Key)
		}
	}
	return keys
}

func (e *Engine) questionRequired(q Question) bool {
	if q.GateKey != "" {
		return e.answers[q.GateKey].Value == q.GateValue
	}
	return q.Required
}

// Validate checks the active step and returns the keys of required questions
// that are unanswered (or, for text, blank after trimming).
func (e *Engine) Validate() []string {
	step, ok := e.steps[e.current]
	if !ok || step.Terminal {
		return nil
	}
	var missing []string
	for _, q := range step.Questions {
		if !e.questionRequired(q) {
			continue
		}
		if !e.answered(q) {
			missing = append(missing, q.Key)
		}
	}
	return missing
}

func (e *Engine) answered(q Question) bool {
	a, ok := e.answers[q.Key]
	if !ok {
		return false
	}
	switch q.Kind {
	case KindCheckbox:
		if a.Multi {
			return len(a.Values) > 0
		}
		return a.Value != ""
	case KindText:
		return strings.TrimSpace(a.Value) != ""
	default:
		return a.Value != ""
	}
}

// Advance validates the active step and applies the branch rules, in order:
// consent decline terminates the flow; eligibility failures jump to the
// disqualification terminal (native language, then education, then minimum
// films watched); an unwatched film skips its own block; otherwise the flow
// moves one step forward.
func (e *Engine) Advance() Result {
	if e.terminated {
		return Result{Step: e.current, Terminated: true, Notice: MsgConsentDeclined}
	}

	if missing := e.Validate(); len(missing) > 0 {
		return Result{
			Step:         e.current,
			Invalid:      true,
			MissingKeys:  missing,
			HighlightFor: HighlightDuration,
			Notice:       MsgValidation,
		}
	}

	switch {
	case e.current == StepConsent:
		if e.answers[KeyConsent].Value == ConsentNo {
			e.terminated = true
			return Result{Step: e.current, Terminated: true, Notice: MsgConsentDeclined}
		}

	case e.current == StepEligibility:
		if e.disqualified() {
			e.jumpTo(StepDisqualify)
			return Result{Step: e.current, Disqualified: true}
		}

	case e.filmSection(e.current):
		f, _ := survey.FilmBySection(e.current)
		if e.answers[survey.FieldKey(f.Id, survey.FieldWatched)].Value != survey.WatchedYes {
			if e.current == e.lastFilm {
				e.jumpTo(StepPerception)
			} else {
				e.jumpTo(e.current + 1)
			}
			return Result{Step: e.current}
		}

	case e.current == StepDemographic:
		return Result{Step: e.current, ReadyToSubmit: true}
	}

	if e.current < StepDemographic {
		e.current++
	}
	return Result{Step: e.current}
}

// disqualified applies the eligibility rules in their documented order of
// precedence: native language, then education, then films-watched count.
func (e *Engine) disqualified() bool {
	lang := e.answers[KeyNativeLanguage].Value
	if lang == LanguageEnglish || lang == LanguageOther {
		return true
	}
	if e.answers[KeyEducation].Value == EducationNonChinese {
		return true
	}
	if raw := e.answers[KeyFilmsWatchedCount].Value; raw != "" {
		if count, err := strconv.Atoi(raw); err == nil && count < MinimumFilmsRequired {
			return true
		}
	}
	return false
}

// Retreat moves one step back without validating. No-op on the first step.
func (e *Engine) Retreat() int {
	if e.current > StepConsent {
		e.current--
	}
	return e.current
}

func (e *Engine) filmSection(step int) bool {
	_, ok := survey.FilmBySection(step)
	return ok
}

func (e *Engine) jumpTo(step int) {
	e.current = step
}

// Complete moves the flow to the completion terminal. Called only after a
// successful submission round-trip.
func (e *Engine) Complete() {
	e.jumpTo(StepComplete)
}

// Reset returns the engine to a fresh session.
func (e *Engine) Reset() {
	e.current = StepConsent
	e.answers = make(map[string]Answer)
	e.terminated = false
}

// Progress is the completion percentage shown above the form:
// (step-1)/(total-2)*100, clamped to [0,100]. The denominator excludes the
// disqualification terminal and the step-1 offset.
func (e *Engine) Progress() float64 {
	p := float64(e.current-1) / float64(TotalSteps-2) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// IsTerminal reports whether the flow sits on one of the terminal steps.
func (e *Engine) IsTerminal() bool {
	return e.current == StepComplete || e.current == StepDisqualify
}

// Flatten serializes the answer set into the flat submission payload. Only
// answered keys appear: cleared or never-set fields of a skipped film block
// are absent, not null.
func (e *Engine) Flatten() map[string]any {
	out := make(map[string]any, len(e.answers))
	for k, a := range e.answers {
		if a.Multi {
			out[k] = append([]string(nil), a.Values...)
		} else {
			out[k] = a.Value
		}
	}
	return out
}
