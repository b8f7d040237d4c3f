package flow

import "github.com/Song-beanpp/film-survey-app-final/internal/survey"

// QuestionKind determines how an answer is validated.
type QuestionKind int

const (
	KindRadio QuestionKind = iota
	KindCheckbox
	KindText
)

// Question is one input of a wizard step.
type Question struct {
	Key      string
	Kind     QuestionKind
	Required bool

	// RequiredWhen gates conditional requiredness: the question is required
	// only while the answer under GateKey equals GateValue. Zero value means
	// the Required flag stands on its own.
	GateKey   string
	GateValue string
}

// Step is one wizard section. Terminal steps own no questions.
type Step struct {
	Number    int
	Questions []Question
	Terminal  bool
}

// Fixed step numbers. Films occupy the sections recorded in the catalog
// (3 through the last film); the two terminals sit at the end.
const (
	StepConsent     = 1
	StepEligibility = 2
	StepPerception  = 8
	StepDemographic = 9
	StepComplete    = 10
	StepDisqualify  = 11

	TotalSteps = 11
)

// Top-level question keys outside the film blocks. These names are part of
// the stored-data contract shared with the stats aggregation.
const (
	KeyConsent           = "consent"
	KeyNativeLanguage    = "nativeLanguage"
	KeyEducation         = "education"
	KeyFilmsWatchedCount = "filmsWatchedCount"

	KeyTranslationImportance = "translationImportance"
	KeyTranslationAspects    = "translationAspects"
	KeyOverallComments       = "overallComments"

	KeyAgeGroup   = "ageGroup"
	KeyGender     = "gender"
	KeyOccupation = "occupation"
)

// Eligibility answer values that drive the disqualification branch.
const (
	ConsentNo            = "no"
	LanguageEnglish      = "english"
	LanguageOther        = "other"
	EducationNonChinese  = "non-chinese"
	MinimumFilmsRequired = 3
)

// BuildSteps derives the full step/question structure from the film catalog.
// Every film contributes one section whose rating block is gated on the
// watched answer; nothing per-film is hand-written elsewhere.
func BuildSteps(films []survey.Film) map[int]Step {
	steps := map[int]Step{
		StepConsent: {
			Number: StepConsent,
			Questions: []Question{
				{Key: KeyConsent, Kind: KindRadio, Required: true},
			},
		},
		StepEligibility: {
			Number: StepEligibility,
			Questions: []Question{
				{Key: KeyNativeLanguage, Kind: KindRadio, Required: true},
				{Key: KeyEducation, Kind: KindRadio, Required: true},
				{Key: KeyFilmsWatchedCount, Kind: KindRadio, Required: true},
			},
		},
		StepPerception: {
			Number: StepPerception,
			Questions: []Question{
				{Key: KeyTranslationImportance, Kind: KindRadio, Required: true},
				{Key: KeyTranslationAspects, Kind: KindCheckbox, Required: true},
				{Key: KeyOverallComments, Kind: KindText},
			},
		},
		StepDemographic: {
			Number: StepDemographic,
			Questions: []Question{
				{Key: KeyAgeGroup, Kind: KindRadio, Required: true},
				{Key: KeyGender, Kind: KindRadio, Required: true},
				{Key: KeyOccupation, Kind: KindText},
			},
		},
		StepComplete:   {Number: StepComplete, Terminal: true},
		StepDisqualify: {Number: StepDisqualify, Terminal: true},
	}

	for _, f := range films {
		watched := survey.FieldKey(f.Id, survey.FieldWatched)
		qs := []Question{
			{Key: watched, Kind: KindRadio, Required: true},
		}
		for _, suffix := range survey.RatingFields {
			qs = append(qs, Question{
				Key:       survey.FieldKey(f.Id, suffix),
				Kind:      KindRadio,
				GateKey:   watched,
				GateValue: survey.WatchedYes,
			})
		}
		for _, suffix := range survey.TextFields {
			qs = append(qs, Question{
				Key:  survey.FieldKey(f.Id, suffix),
				Kind: KindText,
			})
		}
		steps[f.Section] = Step{Number: f.Section, Questions: qs}
	}

	return steps
}
