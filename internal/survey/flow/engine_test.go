package flow

import (
	"testing"

	"github.com/Song-beanpp/film-survey-app-final/internal/survey"
)

func mustSet(t *testing.T, e *Engine, key string, value any) {
	t.Helper()
	if err := e.Set(key, value); err != nil {
		t.Fatalf("Set(%q, %v): %v", key, value, err)
	}
}

func passConsent(t *testing.T, e *Engine) {
	t.Helper()
	mustSet(t, e, KeyConsent, "yes")
	if r := e.Advance(); r.Step != StepEligibility {
		t.Fatalf("after consent, step = %d, want %d", r.Step, StepEligibility)
	}
}

func passEligibility(t *testing.T, e *Engine) {
	t.Helper()
	mustSet(t, e, KeyNativeLanguage, "chinese")
	mustSet(t, e, KeyEducation, "chinese-speaking")
	mustSet(t, e, KeyFilmsWatchedCount, "4")
	if r := e.Advance(); r.Step != 3 {
		t.Fatalf("after eligibility, step = %d, want 3", r.Step)
	}
}

func answerFilmWatched(t *testing.T, e *Engine, filmId string) {
	t.Helper()
	mustSet(t, e, survey.FieldKey(filmId, survey.FieldWatched), survey.WatchedYes)
	for _, suffix := range survey.RatingFields {
		mustSet(t, e, survey.FieldKey(filmId, suffix), "4")
	}
}

func TestAdvanceBlockedUntilRequiredAnswered(t *testing.T) {
	e := New()

	r := e.Advance()
	if !r.Invalid {
		t.Fatal("Advance with no consent answer should be invalid")
	}
	if r.Step != StepConsent {
		t.Errorf("step changed on invalid advance: %d", r.Step)
	}
	if len(r.MissingKeys) != 1 || r.MissingKeys[0] != KeyConsent {
		t.Errorf("MissingKeys = %v, want [consent]", r.MissingKeys)
	}
	if r.HighlightFor != HighlightDuration {
		t.Errorf("HighlightFor = %v, want %v", r.HighlightFor, HighlightDuration)
	}
	if r.Notice != MsgValidation {
		t.Errorf("Notice = %q", r.Notice)
	}

	mustSet(t, e, KeyConsent, "yes")
	if r := e.Advance(); r.Step != StepEligibility {
		t.Errorf("valid advance: step = %d, want %d", r.Step, StepEligibility)
	}
}

func TestConsentDeclineTerminates(t *testing.T) {
	e := New()
	mustSet(t, e, KeyConsent, ConsentNo)

	r := e.Advance()
	if !r.Terminated {
		t.Fatal("declining consent must terminate the flow")
	}
	if r.Step != StepConsent {
		t.Errorf("terminated flow moved to step %d", r.Step)
	}
	if r.Notice != MsgConsentDeclined {
		t.Errorf("Notice = %q", r.Notice)
	}
	if !e.Terminated() {
		t.Error("engine should report terminated")
	}
	if err := e.Set(KeyConsent, "yes"); err == nil {
		t.Error("Set should fail after termination")
	}
}

func TestEligibilityDisqualification(t *testing.T) {
	tests := []struct {
		name       string
		language   string
		education  string
		count      string
		disqualify bool
	}{
		{"english native", LanguageEnglish, "chinese-speaking", "5", true},
		{"other native", LanguageOther, "chinese-speaking", "5", true},
		{"non-chinese education", "chinese", EducationNonChinese, "5", true},
		{"too few films", "chinese", "chinese-speaking", "2", true},
		{"zero films", "chinese", "chinese-speaking", "0", true},
		{"exactly minimum films", "chinese", "chinese-speaking", "3", false},
		{"fully eligible", "chinese", "chinese-speaking", "5", false},
		{"language wins even with count failing too", LanguageEnglish, EducationNonChinese, "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			passConsent(t, e)
			mustSet(t, e, KeyNativeLanguage, tt.language)
			mustSet(t, e, KeyEducation, tt.education)
			mustSet(t, e, KeyFilmsWatchedCount, tt.count)

			r := e.Advance()
			if tt.disqualify {
				if !r.Disqualified || r.Step != StepDisqualify {
					t.Errorf("got step %d disqualified=%v, want disqualification terminal", r.Step, r.Disqualified)
				}
			} else {
				if r.Disqualified || r.Step != 3 {
					t.Errorf("got step %d disqualified=%v, want step 3", r.Step, r.Disqualified)
				}
			}
		})
	}
}

func TestDisqualificationIgnoresPrefilledLaterSteps(t *testing.T) {
	e := New()
	passConsent(t, e)

	// Later-step fields already filled must not matter.
	answerFilmWatched(t, e, "zootopia")
	mustSet(t, e, KeyAgeGroup, "18-25")

	mustSet(t, e, KeyNativeLanguage, LanguageEnglish)
	mustSet(t, e, KeyEducation, "chinese-speaking")
	mustSet(t, e, KeyFilmsWatchedCount, "5")

	r := e.Advance()
	if r.Step != StepDisqualify {
		t.Errorf("step = %d, want %d", r.Step, StepDisqualify)
	}
}

func TestFilmNotWatchedSkipsDetailBlock(t *testing.T) {
	e := New()
	passConsent(t, e)
	passEligibility(t, e)

	// Only the watched answer is required while it says no.
	mustSet(t, e, "zootopia_watched", "no")
	r := e.Advance()
	if r.Invalid {
		t.Fatalf("unwatched film should validate without ratings: missing %v", r.MissingKeys)
	}
	if r.Step != 4 {
		t.Errorf("step = %d, want 4", r.Step)
	}
}

func TestLastFilmNotWatchedSkipsToPerception(t *testing.T) {
	e := New()
	passConsent(t, e)
	passEligibility(t, e)

	for _, f := range survey.Films[:len(survey.Films)-1] {
		answerFilmWatched(t, e, f.Id)
		if r := e.Advance(); r.Invalid {
			t.Fatalf("film %s advance invalid: %v", f.Id, r.MissingKeys)
		}
	}

	last := survey.Films[len(survey.Films)-1]
	mustSet(t, e, survey.FieldKey(last.Id, survey.FieldWatched), "no")
	r := e.Advance()
	if r.Step != StepPerception {
		t.Errorf("step = %d, want %d", r.Step, StepPerception)
	}
}

func TestWatchedFilmRequiresRatings(t *testing.T) {
	e := New()
	passConsent(t, e)
	passEligibility(t, e)

	mustSet(t, e, "zootopia_watched", survey.WatchedYes)
	r := e.Advance()
	if !r.Invalid {
		t.Fatal("watched film without ratings should not advance")
	}
	if len(r.MissingKeys) != len(survey.RatingFields) {
		t.Errorf("MissingKeys = %v, want the %d rating fields", r.MissingKeys, len(survey.RatingFields))
	}

	for _, suffix := range survey.RatingFields {
		mustSet(t, e, survey.FieldKey("zootopia", suffix), "5")
	}
	if r := e.Advance(); r.Step != 4 {
		t.Errorf("step = %d, want 4", r.Step)
	}
}

func TestWatchedChangeClearsDetailBlock(t *testing.T) {
	e := New()
	answerFilmWatched(t, e, "zootopia")
	mustSet(t, e, "zootopia_explanation", "liked the rhythm of the title")

	mustSet(t, e, "zootopia_watched", "no")

	for _, suffix := range append(append([]string{}, survey.RatingFields...), survey.TextFields...) {
		if _, ok := e.Answer(survey.FieldKey("zootopia", suffix)); ok {
			t.Errorf("%s should have been cleared", suffix)
		}
	}

	flat := e.Flatten()
	if _, present := flat["zootopia_easy"]; present {
		t.Error("cleared field must be absent from the flattened payload, not null")
	}
	if flat["zootopia_watched"] != "no" {
		t.Errorf("watched answer lost: %v", flat["zootopia_watched"])
	}

	// Re-affirming starts the block empty again.
	mustSet(t, e, "zootopia_watched", survey.WatchedYes)
	if _, ok := e.Answer("zootopia_easy"); ok {
		t.Error("re-affirming watched must not resurrect cleared ratings")
	}
}

func TestTextValidationTrimsWhitespace(t *testing.T) {
	e := NewWithFilms(nil)
	e.current = StepDemographic
	mustSet(t, e, KeyAgeGroup, "26-35")
	mustSet(t, e, KeyGender, "female")

	// Occupation is optional; blank answers to optional text never block.
	mustSet(t, e, KeyOccupation, "   ")
	r := e.Advance()
	if r.Invalid {
		t.Errorf("optional blank text blocked advance: %v", r.MissingKeys)
	}
	if !r.ReadyToSubmit {
		t.Error("final step should report ready-to-submit")
	}
}

func TestPerceptionCheckboxRequired(t *testing.T) {
	e := NewWithFilms(nil)
	e.current = StepPerception
	mustSet(t, e, KeyTranslationImportance, "5")

	r := e.Advance()
	if !r.Invalid {
		t.Fatal("missing checkbox group should block advance")
	}

	mustSet(t, e, KeyTranslationAspects, []string{"meaning", "sound"})
	if r := e.Advance(); r.Invalid || r.Step != StepDemographic {
		t.Errorf("advance = %+v, want step %d", r, StepDemographic)
	}
}

func TestProgress(t *testing.T) {
	e := New()
	if p := e.Progress(); p != 0 {
		t.Errorf("progress at step 1 = %f, want 0", p)
	}

	passConsent(t, e)
	passEligibility(t, e)

	prev := 0.0
	for !e.IsTerminal() && e.Current() != StepDemographic {
		p := e.Progress()
		if p < prev {
			t.Errorf("progress decreased: %f after %f at step %d", p, prev, e.Current())
		}
		if p > 100 {
			t.Errorf("progress exceeded 100: %f", p)
		}
		prev = p

		if f, ok := survey.FilmBySection(e.Current()); ok {
			mustSet(t, e, survey.FieldKey(f.Id, survey.FieldWatched), "no")
		}
		if e.Advance().Invalid {
			break
		}
	}

	e.Complete()
	if p := e.Progress(); p != 100 {
		t.Errorf("progress at completion = %f, want 100", p)
	}

	disq := New()
	disq.jumpTo(StepDisqualify)
	if p := disq.Progress(); p != 100 {
		t.Errorf("progress at disqualification clamp = %f, want 100", p)
	}
}

func TestRetreat(t *testing.T) {
	e := New()
	if got := e.Retreat(); got != StepConsent {
		t.Errorf("retreat at step 1 moved to %d", got)
	}

	passConsent(t, e)
	if got := e.Retreat(); got != StepConsent {
		t.Errorf("retreat from step 2 = %d, want 1", got)
	}
}

func TestFlattenSkippedBlocksAbsent(t *testing.T) {
	e := New()
	passConsent(t, e)
	passEligibility(t, e)

	mustSet(t, e, "zootopia_watched", "no")
	e.Advance()

	flat := e.Flatten()
	for _, suffix := range survey.RatingFields {
		if _, present := flat[survey.FieldKey("zootopia", suffix)]; present {
			t.Errorf("skipped block field %s present in payload", suffix)
		}
	}
	if flat[KeyConsent] != "yes" {
		t.Errorf("consent = %v", flat[KeyConsent])
	}

	list, ok := flat["translationAspects"]
	if ok {
		t.Fatalf("unanswered checkbox present: %v", list)
	}
}
