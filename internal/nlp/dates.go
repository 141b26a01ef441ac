package nlp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/markusmobius/go-dateparser"
)

// DateSearcher finds date mentions in a cleaned line of text. now anchors relative and
// partial dates.
type DateSearcher interface {
	Search(text string, now time.Time) ([]time.Time, error)
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January, "janvier": time.January, "janv": time.January,
	"february": time.February, "feb": time.February, "fevrier": time.February, "fevr": time.February, "fev": time.February,
	"march": time.March, "mar": time.March, "mars": time.March,
	"april": time.April, "apr": time.April, "avril": time.April, "avr": time.April,
	"may": time.May, "mai": time.May,
	"june": time.June, "jun": time.June, "juin": time.June,
	"july": time.July, "jul": time.July, "juillet": time.July, "juil": time.July,
	"august": time.August, "aug": time.August, "aout": time.August,
	"september": time.September, "sep": time.September, "sept": time.September, "septembre": time.September,
	"october": time.October, "oct": time.October, "octobre": time.October,
	"november": time.November, "nov": time.November, "novembre": time.November,
	"december": time.December, "dec": time.December, "decembre": time.December,
}

const (
	minYear = 1950
	maxYear = 2100
)

// PatternSearcher recognizes the month/year shapes résumés use, in English and French:
// "jan 2020", "janvier 2020", "jan 15 2020", "15 janvier 2020", "01 2020" and a bare "2020".
// A bare year takes the month of now.
type PatternSearcher struct{}

func (PatternSearcher) Search(text string, now time.Time) ([]time.Time, error) {
	tokens := strings.FieldsFunc(FoldAccents(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var dates []time.Time
	for i := 0; i < len(tokens); {
		date, n := matchDate(tokens[i:], now)
		if n == 0 {
			i++
			continue
		}
		dates = append(dates, date)
		i += n
	}
	return dates, nil
}

// matchDate tries the supported shapes at the head of tokens and returns how many tokens
// the match consumed, 0 when nothing matched.
func matchDate(tokens []string, now time.Time) (time.Time, int) {
	at := func(i int) string {
		if i < len(tokens) {
			return tokens[i]
		}
		return ""
	}

	if month, ok := monthNames[at(0)]; ok {
		if day, ok := parseDay(at(1)); ok {
			if year, ok := parseYear(at(2)); ok {
				return clampDate(year, month, day), 3
			}
		}
		if year, ok := parseYear(at(1)); ok {
			return clampDate(year, month, 1), 2
		}
		return time.Time{}, 0
	}

	if day, ok := parseDay(at(0)); ok {
		if month, ok := monthNames[at(1)]; ok {
			if year, ok := parseYear(at(2)); ok {
				return clampDate(year, month, day), 3
			}
		}
		if day <= 12 {
			if year, ok := parseYear(at(1)); ok {
				return clampDate(year, time.Month(day), 1), 2
			}
		}
		return time.Time{}, 0
	}

	if year, ok := parseYear(at(0)); ok {
		return clampDate(year, now.Month(), 1), 1
	}

	return time.Time{}, 0
}

func parseDay(s string) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	d, err := strconv.Atoi(s)
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}

func parseYear(s string) (int, bool) {
	if len(s) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < minYear || y > maxYear {
		return 0, false
	}
	return y, true
}

func clampDate(year int, month time.Month, day int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateparserSearcher runs the go-dateparser free-text search restricted to French and English.
type DateparserSearcher struct {
	Languages []string
}

func (s DateparserSearcher) Search(text string, now time.Time) ([]time.Time, error) {
	langs := s.Languages
	if len(langs) == 0 {
		langs = []string{"fr", "en"}
	}

	cfg := &dateparser.Configuration{
		Languages:   langs,
		CurrentTime: now,
	}

	_, results, err := dateparser.Search(cfg, text)
	if err != nil {
		return nil, fmt.Errorf("failed to search dates: %w", err)
	}

	dates := make([]time.Time, 0, len(results))
	for _, r := range results {
		if r.Date.Time.IsZero() {
			continue
		}
		dates = append(dates, r.Date.Time)
	}
	return dates, nil
}

// ChainSearcher returns the first searcher's mentions when it finds at least two, and
// otherwise asks the next one. A failing searcher is skipped when a later one succeeds.
type ChainSearcher []DateSearcher

func (c ChainSearcher) Search(text string, now time.Time) ([]time.Time, error) {
	var (
		best    []time.Time
		lastErr error
		anyOK   bool
	)
	for _, s := range c {
		dates, err := s.Search(text, now)
		if err != nil {
			lastErr = err
			continue
		}
		anyOK = true
		if len(dates) >= 2 {
			return dates, nil
		}
		if len(dates) > len(best) {
			best = dates
		}
	}
	if !anyOK && lastErr != nil {
		return nil, lastErr
	}
	return best, nil
}

// DefaultDateSearcher scans known patterns first and falls back to go-dateparser.
func DefaultDateSearcher() DateSearcher {
	return ChainSearcher{PatternSearcher{}, DateparserSearcher{}}
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
