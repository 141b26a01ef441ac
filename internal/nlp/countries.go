package nlp

import (
	"regexp"
	"sync"

	"github.com/biter777/countries"
)

type countryPattern struct {
	name string
	re   *regexp.Regexp
}

var (
	countryOnce     sync.Once
	countryPatterns []countryPattern
)

func loadCountryPatterns() {
	for _, code := range countries.All() {
		if !code.IsValid() {
			continue
		}
		name := code.String()
		if name == "" || name == countries.Unknown.String() {
			continue
		}
		countryPatterns = append(countryPatterns, countryPattern{
			name: name,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(FoldAccents(name)) + `\b`),
		})
	}
}

// DetectCountries returns the country names mentioned in text as whole words, ignoring
// case and accents.
func DetectCountries(text string) []string {
	countryOnce.Do(loadCountryPatterns)

	folded := FoldAccents(text)
	found := make([]string, 0)
	for _, p := range countryPatterns {
		if p.re.MatchString(folded) {
			found = append(found, p.name)
		}
	}
	return found
}
