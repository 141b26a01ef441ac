package classifier

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"digitalcook/cv-matcher/internal/nlp"
)

const (
	textColumn  = "experiences"
	labelColumn = "IsExperience"

	// missingText replaces empty sentences before one-hot encoding.
	missingText = "missing"

	minPositiveLength = 3
	maxPositiveLength = 28
)

// Example is one labeled sentence of the training set.
type Example struct {
	Text     string
	Label    bool
	Features nlp.Features
}

type Dataset []Example

// Positives counts the examples labeled as experience.
func (d Dataset) Positives() int {
	n := 0
	for _, ex := range d {
		if ex.Label {
			n++
		}
	}
	return n
}

// LoadDataset reads a labeled sentence sheet from an .xlsx or .csv file. The first row
// holds column names. Feature columns absent from the file are computed with fx.
func LoadDataset(ctx context.Context, path string, fx *nlp.FeatureExtractor) (Dataset, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return ParseRows(ctx, rows, fx)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("dataset workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset rows: %w", err)
	}
	return rows, nil
}

// ParseRows builds a dataset from a header row followed by data rows.
func ParseRows(ctx context.Context, rows [][]string, fx *nlp.FeatureExtractor) (Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}

	textIdx, ok := index[textColumn]
	if !ok {
		return nil, fmt.Errorf("dataset has no %q column", textColumn)
	}
	labelIdx, ok := index[labelColumn]
	if !ok {
		return nil, fmt.Errorf("dataset has no %q column", labelColumn)
	}

	featureIdx := make([]int, len(nlp.FeatureNames))
	complete := true
	for i, name := range nlp.FeatureNames {
		idx, ok := index[name]
		if !ok {
			idx = -1
			complete = false
		}
		featureIdx[i] = idx
	}
	if !complete && fx == nil {
		return nil, fmt.Errorf("dataset lacks feature columns and no feature extractor was given")
	}

	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	ds := make(Dataset, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		label := cell(row, labelIdx)
		if label == "" {
			continue
		}

		ex := Example{
			Text:  cell(row, textIdx),
			Label: strings.EqualFold(label, "YES"),
		}

		var computed nlp.Features
		if !complete {
			computed = fx.Extract(ctx, ex.Text)
		}
		values := computed.Values()
		for i, idx := range featureIdx {
			if idx < 0 {
				continue
			}
			raw := cell(row, idx)
			if raw == "" {
				values[i] = 0
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %q value %q: %w", n+2, nlp.FeatureNames[i], raw, err)
			}
			values[i] = v
		}

		features, err := nlp.FeaturesFromValues(values)
		if err != nil {
			return nil, err
		}
		ex.Features = features
		ds = append(ds, ex)
	}

	return ds, nil
}

// Denoise drops positive examples that are too short, too long, or phrased as questions.
// Such rows are mostly labeling mistakes.
func Denoise(ds Dataset) Dataset {
	out := make(Dataset, 0, len(ds))
	for _, ex := range ds {
		if ex.Label {
			if ex.Features.Length < minPositiveLength || ex.Features.Length > maxPositiveLength {
				continue
			}
			if strings.Contains(ex.Text, "?") {
				continue
			}
		}
		out = append(out, ex)
	}
	return out
}
