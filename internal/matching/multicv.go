package matching

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"digitalcook/cv-matcher/internal/models"
	"digitalcook/cv-matcher/internal/nlp"
)

// Keyword weights of the multi-résumé matcher.
const (
	keywordSkillsWeight    = 0.8
	keywordTagsWeight      = 0.1
	keywordLanguagesWeight = 0.1
)

// CVText is one résumé's extracted text, identified by its file name.
type CVText struct {
	Name string
	Text string
}

// KeywordScore rates a résumé against an offer by the share of the offer's required
// skills, tags and languages that appear in the text as whole words, ignoring case.
// The result is rounded to 3 decimals.
func KeywordScore(text string, offer models.OfferSnapshot) float64 {
	skills := models.SplitKeywords(offer.SkillsText)
	languages := make([]string, 0, len(offer.LanguageEntries))
	for _, l := range offer.LanguageEntries {
		if s := nlp.StripLevel(l); s != "" {
			languages = append(languages, s)
		}
	}

	folded := nlp.FoldAccents(text)
	score := keywordSkillsWeight*shareFound(folded, skills) +
		keywordTagsWeight*shareFound(folded, offer.Tags) +
		keywordLanguagesWeight*shareFound(folded, languages)
	return math.Round(score*1000) / 1000
}

func shareFound(folded string, items []string) float64 {
	if len(items) == 0 {
		return 0
	}
	found := 0
	for _, item := range items {
		if containsWord(folded, nlp.FoldAccents(item)) {
			found++
		}
	}
	return float64(found) / float64(len(items))
}

// containsWord reports whether item occurs in text with a word boundary on both ends,
// where a boundary sits between a word character and a non-word character, as in regular
// expression \b.
func containsWord(text, item string) bool {
	if item == "" {
		return false
	}
	for start := 0; start <= len(text)-len(item); {
		i := strings.Index(text[start:], item)
		if i < 0 {
			return false
		}
		at := start + i
		end := at + len(item)
		if isBoundary(text, at) && isBoundary(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[at:])
		start = at + size
	}
	return false
}

func isBoundary(s string, at int) bool {
	before, after := false, false
	if at > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:at])
		before = isWordRune(r)
	}
	if at < len(s) {
		r, _ := utf8.DecodeRuneInString(s[at:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// MatchCVs finds, for every offer, the résumé with the highest keyword score. The first
// résumé wins ties. Offers where no résumé scores above 0 are dropped. The result is
// sorted by descending score and cut to limit when limit > 0.
func MatchCVs(offers []models.OfferSnapshot, cvs []CVText, limit int) []models.CVMatch {
	matches := make([]models.CVMatch, 0, len(offers))
	for _, offer := range offers {
		var (
			best   float64
			bestCV string
		)
		for _, cv := range cvs {
			if score := KeywordScore(cv.Text, offer); score > best {
				best, bestCV = score, cv.Name
			}
		}
		if best > 0 {
			matches = append(matches, models.CVMatch{Offer: offer.Summary(), MatchedCV: bestCV, Score: best})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
