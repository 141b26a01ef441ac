package matching

import (
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// word tokens of two or more word characters
var termPattern = regexp.MustCompile(`[\p{L}\p{N}\p{Mn}_]{2,}`)

func terms(doc string) []string {
	return termPattern.FindAllString(strings.ToLower(doc), -1)
}

// TextSimilarity is the cosine similarity of the TF-IDF vectors of a and b, with the
// vocabulary and document frequencies fitted on exactly these two documents. IDF is
// smoothed, ln((1+n)/(1+df))+1, and vectors are L2 normalized. Result is in [0,1].
func TextSimilarity(a, b string) float64 {
	docs := [2][]string{terms(a), terms(b)}

	vocab := make(map[string]int)
	for _, doc := range docs {
		for _, t := range doc {
			if _, ok := vocab[t]; !ok {
				vocab[t] = len(vocab)
			}
		}
	}
	if len(vocab) == 0 {
		return 0
	}

	var counts [2][]float64
	df := make([]float64, len(vocab))
	for d, doc := range docs {
		counts[d] = make([]float64, len(vocab))
		for _, t := range doc {
			counts[d][vocab[t]]++
		}
		for i, c := range counts[d] {
			if c > 0 {
				df[i]++
			}
		}
	}

	n := float64(len(docs))
	for i := range df {
		idf := math.Log((1+n)/(1+df[i])) + 1
		counts[0][i] *= idf
		counts[1][i] *= idf
	}

	na, nb := floats.Norm(counts[0], 2), floats.Norm(counts[1], 2)
	if na == 0 || nb == 0 {
		return 0
	}

	sim := floats.Dot(counts[0], counts[1]) / (na * nb)
	return math.Max(0, math.Min(1, sim))
}
