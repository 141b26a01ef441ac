package nlp

import (
	"regexp"
	"strings"
)

// DefaultLanguages is used when a candidate states no languages and none are found in the text.
var DefaultLanguages = []string{"Français (C1)", "Anglais (B2)"}

var languageLevel = regexp.MustCompile(`\s*\(.*?\)`)

// keys are accent-folded; values are the French names offers use.
var languageLexicon = map[string]string{
	"francais": "français", "french": "français",
	"anglais": "anglais", "english": "anglais",
	"arabe": "arabe", "arabic": "arabe",
	"espagnol": "espagnol", "spanish": "espagnol",
	"allemand": "allemand", "german": "allemand",
	"italien": "italien", "italian": "italien",
	"portugais": "portugais", "portuguese": "portugais",
	"neerlandais": "néerlandais", "dutch": "néerlandais",
	"russe": "russe", "russian": "russe",
	"chinois": "chinois", "chinese": "chinois",
	"japonais": "japonais", "japanese": "japonais",
	"turc": "turc", "turkish": "turc",
}

// StripLevel removes parenthesised proficiency levels: "Anglais (B2)" -> "Anglais".
func StripLevel(language string) string {
	return strings.TrimSpace(languageLevel.ReplaceAllString(language, ""))
}

// LanguageKey is the set key of a language entry: its first word, lower-cased.
func LanguageKey(language string) string {
	return FirstToken(StripLevel(language))
}

// NormalizeLanguages turns language entries into a sorted set of keys.
func NormalizeLanguages(languages []string) []string {
	return StringSet(languages, LanguageKey)
}

// DetectLanguages finds language names (English or French) in free text.
func DetectLanguages(text string) []string {
	var found []string
	for _, tok := range tokenize(FoldAccents(text)) {
		if name, ok := languageLexicon[tok]; ok {
			found = append(found, name)
		}
	}
	return StringSet(found, LanguageKey)
}

// CandidateLanguages picks the candidate language set: the stated languages, else those
// detected in the résumé, else DefaultLanguages.
func CandidateLanguages(stated []string, text string) []string {
	if langs := NormalizeLanguages(stated); len(langs) > 0 {
		return langs
	}
	if langs := DetectLanguages(text); len(langs) > 0 {
		return langs
	}
	return NormalizeLanguages(DefaultLanguages)
}
