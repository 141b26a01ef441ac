package classifier

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"digitalcook/cv-matcher/internal/nlp"
)

// wordTagger tags words ending in "ed" as past-tense verbs and everything else as nouns.
type wordTagger struct{}

func (wordTagger) Tag(text string) ([]nlp.TaggedToken, error) {
	fields := strings.Fields(text)
	out := make([]nlp.TaggedToken, 0, len(fields))
	for _, w := range fields {
		tag := "NN"
		if strings.HasSuffix(strings.ToLower(w), "ed") {
			tag = "VBD"
		}
		out = append(out, nlp.TaggedToken{Text: w, Tag: tag})
	}
	return out, nil
}

func testFeatures() *nlp.FeatureExtractor {
	return nlp.NewFeatureExtractor(wordTagger{}, nil)
}

var products = []string{"payment", "billing", "search", "mobile", "data", "cloud", "identity", "catalog", "pricing", "shipping", "booking", "reporting"}

func experienceSentence(i int) string {
	p := products[i%len(products)]
	if i%2 == 0 {
		return fmt.Sprintf("Developed %s services and managed the platform team at company %d for clients", p, i)
	}
	return fmt.Sprintf("Designed and delivered the %s backend used by customers at firm %d", p, i)
}

func otherSentence(i int) string {
	if i%2 == 0 {
		return fmt.Sprintf("Contact %d", i)
	}
	return fmt.Sprintf("Hobbies football %d", i)
}

// syntheticRows returns a header plus labeled rows without feature columns.
func syntheticRows() [][]string {
	rows := [][]string{{"experiences", "IsExperience"}}
	for i := range 24 {
		rows = append(rows, []string{experienceSentence(i), "YES"})
		rows = append(rows, []string{otherSentence(i), "NO"})
	}
	rows = append(rows,
		[]string{"Why did you leave?", "YES"},
		[]string{"Led", "YES"},
	)
	return rows
}

func writeCSV(t *testing.T, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dataset.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	return path
}

func trainSynthetic(t *testing.T, seed uint64) Artifacts {
	t.Helper()

	ds, err := ParseRows(context.Background(), syntheticRows(), testFeatures())
	require.NoError(t, err)

	art, err := Train(context.Background(), Denoise(ds), TrainOptions{Forest: ForestOptions{Trees: 25, Seed: seed}})
	require.NoError(t, err)
	return art
}

// countingStore wraps a FileStore and counts saves.
type countingStore struct {
	*FileStore
	mu    sync.Mutex
	saves int
}

func (s *countingStore) Save(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return s.FileStore.Save(ctx, name, data)
}
