package bites

import (
	"strings"
	"unicode/utf8"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
)

const preferenceKeyMaxRunes = 50

// PreferenceKey normalizes a question into a preference key.
func PreferenceKey(question string) string {
	key := strings.ReplaceAll(strings.ToLower(question), " ", "_")
	if utf8.RuneCountInString(key) <= preferenceKeyMaxRunes {
		return key
	}
	return string([]rune(key)[:preferenceKeyMaxRunes])
}

// ExtractPreferences folds answers into question-key -> label. Answers are
// applied in order so a later answer wins on a shared key.
func ExtractPreferences(answers []*types.StrokeBiteAnswer) map[string]string {
	prefs := map[string]string{}
	for _, a := range answers {
		if a == nil || a.QuestionText == nil || a.SelectedLabel == nil {
			continue
		}
		if *a.QuestionText == "" || *a.SelectedLabel == "" {
			continue
		}
		prefs[PreferenceKey(*a.QuestionText)] = *a.SelectedLabel
	}
	return prefs
}
