package nlp

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText applies NFKC, lower-cases, and collapses whitespace runs to single spaces.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

// NormalizeSkill turns an annotated phrase into its set key: normalized text with
// repeated words dropped, first occurrence wins ("python python 3" -> "python 3").
func NormalizeSkill(s string) string {
	words := strings.Fields(NormalizeText(s))
	seen := make(map[string]struct{}, len(words))
	out := words[:0]
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// FoldAccents strips combining marks ("février" -> "fevrier") and lower-cases.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(result)
}

// FirstToken returns the lower-cased first whitespace-delimited token ("Français (C1)" -> "français").
func FirstToken(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// StringSet builds a sorted, deduplicated list after applying key to each value.
// Values whose key is empty are dropped.
func StringSet(values []string, key func(string) string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		k := key(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// tokenize splits normalized text into word tokens for phrase matching.
// Letters, digits and the characters + # . keep "c++", "c#" and "node.js" intact.
func tokenize(text string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if w != "" {
			tokens = append(tokens, w)
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// containsPhrase reports whether phrase occurs in text on token boundaries.
// Both arguments must already be normalized with the same function.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}
