package survey

import "strings"

// Film is one evaluated title in the questionnaire. The table is fixed for a
// survey run; the per-film wizard steps and the stats aggregation are both
// derived from it.
type Film struct {
	Id           string
	EnglishTitle string
	ChineseTitle string
	Year         string
	Section      int
}

// Films is the static catalog, in presentation order. Section numbers are the
// wizard steps that own each film's question block.
var Films = []Film{
	{Id: "zootopia", EnglishTitle: "Zootopia", ChineseTitle: "疯狂动物城", Year: "2016", Section: 3},
	{Id: "frozen2", EnglishTitle: "Frozen II", ChineseTitle: "冰雪奇缘2", Year: "2019", Section: 4},
	{Id: "mulan", EnglishTitle: "Mulan", ChineseTitle: "花木兰", Year: "2020", Section: 5},
	{Id: "greenbook", EnglishTitle: "Green Book", ChineseTitle: "绿皮书", Year: "2019", Section: 6},
	{Id: "kungfupanda3", EnglishTitle: "Kung Fu Panda 3", ChineseTitle: "功夫熊猫3", Year: "2016", Section: 7},
}

// Field suffixes of a film question block. Watched gates the rest: the rating
// fields become required only while watched is answered affirmatively.
const (
	FieldWatched        = "watched"
	FieldEasy           = "easy"
	FieldAttractive     = "attractive"
	FieldAccurate       = "accurate"
	FieldLike           = "like"
	FieldEnglishMeaning = "english_meaning"
	FieldChineseMeaning = "chinese_meaning"
	FieldExplanation    = "explanation"
)

// WatchedYes is the affirmative value of the watched field. The stats queries
// compare against it verbatim, so it is part of the stored-data contract.
const WatchedYes = "yes"

// RatingFields are the Likert fields required once a film is watched.
var RatingFields = []string{FieldEasy, FieldAttractive, FieldAccurate, FieldLike}

// TextFields are the optional free-text fields of a film block.
var TextFields = []string{FieldEnglishMeaning, FieldChineseMeaning, FieldExplanation}

// FieldKey builds the flat submission key for a film field, e.g.
// FieldKey("zootopia", FieldWatched) == "zootopia_watched".
func FieldKey(filmId, suffix string) string {
	return filmId + "_" + suffix
}

// ParseFieldKey splits a flat key back into film id and field suffix. Suffixes
// may contain underscores ("english_meaning"), so the split matches known film
// ids rather than cutting at a separator.
func ParseFieldKey(key string) (filmId, suffix string, ok bool) {
	for _, f := range Films {
		prefix := f.Id + "_"
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return f.Id, key[len(prefix):], true
		}
	}
	return "", "", false
}

// FilmById returns the catalog entry for an id.
func FilmById(id string) (Film, bool) {
	for _, f := range Films {
		if f.Id == id {
			return f, true
		}
	}
	return Film{}, false
}

// FilmBySection returns the film owning a wizard step, if any.
func FilmBySection(section int) (Film, bool) {
	for _, f := range Films {
		if f.Section == section {
			return f, true
		}
	}
	return Film{}, false
}
