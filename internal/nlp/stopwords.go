package nlp

import (
	_ "embed"
	"strings"
)

//go:embed data/stopwords_en.txt
var stopwordsEN string

//go:embed data/stopwords_fr.txt
var stopwordsFR string

var stopwords = buildStopwords(stopwordsEN, stopwordsFR)

func buildStopwords(lists ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, line := range strings.Split(list, "\n") {
			w := strings.TrimSpace(line)
			if w == "" || strings.HasPrefix(w, "#") {
				continue
			}
			set[strings.ToLower(w)] = struct{}{}
		}
	}
	return set
}

// IsStopword reports whether the token is an English or French stopword.
func IsStopword(token string) bool {
	_, ok := stopwords[strings.ToLower(token)]
	return ok
}
