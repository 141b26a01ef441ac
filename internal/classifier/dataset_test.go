package classifier

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"digitalcook/cv-matcher/internal/nlp"
)

func TestParseRowsUsesFeatureColumns(t *testing.T) {
	t.Parallel()

	header := append([]string{"experiences", "IsExperience"}, nlp.FeatureNames[:]...)
	rows := [][]string{
		header,
		{"Built APIs at Acme", "YES", "1", "0", "1", "4", "2", "0", "0", "0", "1"},
		{"Hobbies", "no", "0", "0", "0", "1", "1", "0", "0", "0", ""},
		{"unlabeled row", ""},
	}

	ds, err := ParseRows(context.Background(), rows, nil)
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.True(t, ds[0].Label)
	assert.Equal(t, nlp.Features{Verbs: 1, Stopwords: 1, Length: 4, Nouns: 2, Skills: 1}, ds[0].Features)
	assert.False(t, ds[1].Label)
	assert.Equal(t, 1, ds[1].Features.Length)
}

func TestParseRowsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows [][]string
	}{
		{name: "empty", rows: nil},
		{name: "no text column", rows: [][]string{{"IsExperience"}}},
		{name: "no label column", rows: [][]string{{"experiences"}}},
		{name: "no features and no extractor", rows: [][]string{{"experiences", "IsExperience"}, {"x", "YES"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRows(context.Background(), tt.rows, nil)
			assert.Error(t, err)
		})
	}

	header := append([]string{"experiences", "IsExperience"}, nlp.FeatureNames[:]...)
	bad := [][]string{header, {"x", "YES", "one", "0", "0", "0", "0", "0", "0", "0", "0"}}
	_, err := ParseRows(context.Background(), bad, nil)
	assert.ErrorContains(t, err, "Verbs number")
}

func TestLoadDatasetComputesMissingFeatures(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, [][]string{
		{"experiences", "IsExperience"},
		{"Managed the team", "YES"},
		{"Contact", "NO"},
	})

	ds, err := LoadDataset(context.Background(), path, testFeatures())
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, nlp.Features{Verbs: 1, Stopwords: 1, Length: 3, Nouns: 2}, ds[0].Features)
}

func TestLoadDatasetXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataset.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"experiences", "IsExperience"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Delivered the billing platform", "YES"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"Email", "NO"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := LoadDataset(context.Background(), path, testFeatures())
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "Delivered the billing platform", ds[0].Text)
	assert.Equal(t, 4, ds[0].Features.Length)
	assert.Equal(t, 1, ds.Positives())
}

func TestLoadDatasetRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := LoadDataset(context.Background(), "dataset.json", testFeatures())
	assert.ErrorContains(t, err, "unsupported dataset format")
}

func TestDenoise(t *testing.T) {
	t.Parallel()

	ds := Dataset{
		{Text: "ok", Label: true, Features: nlp.Features{Length: 10}},
		{Text: "too short", Label: true, Features: nlp.Features{Length: 2}},
		{Text: "too long", Label: true, Features: nlp.Features{Length: 29}},
		{Text: "a question?", Label: true, Features: nlp.Features{Length: 5}},
		{Text: "negatives are kept?", Label: false, Features: nlp.Features{Length: 1}},
		{Text: "bounds", Label: true, Features: nlp.Features{Length: 3}},
		{Text: "upper bound", Label: true, Features: nlp.Features{Length: 28}},
	}

	var kept []string
	for _, ex := range Denoise(ds) {
		kept = append(kept, ex.Text)
	}
	assert.Equal(t, []string{"ok", "negatives are kept?", "bounds", "upper bound"}, kept)
}
