package classifier

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"digitalcook/cv-matcher/internal/nlp"
)

const pcaComponents = 2

// Scaler standardizes each column with its population mean and standard deviation.
type Scaler struct {
	Mean []float64
	Std  []float64
}

func fitScaler(x *mat.Dense) Scaler {
	_, d := x.Dims()
	s := Scaler{Mean: make([]float64, d), Std: make([]float64, d)}
	for j := range d {
		col := mat.Col(nil, j, x)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j], s.Std[j] = mean, std
	}
	return s
}

func (s Scaler) apply(v []float64) []float64 {
	out := make([]float64, len(v))
	for j := range v {
		out[j] = (v[j] - s.Mean[j]) / s.Std[j]
	}
	return out
}

// PCA projects centered rows onto the leading principal directions.
type PCA struct {
	Mean       []float64
	Components [][]float64
}

func fitPCA(x *mat.Dense, k int) (PCA, error) {
	n, d := x.Dims()
	p := PCA{Mean: make([]float64, d)}
	for j := range d {
		p.Mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return PCA{}, fmt.Errorf("principal component analysis did not converge on %dx%d data", n, d)
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	_, available := vecs.Dims()
	p.Components = make([][]float64, k)
	for c := range k {
		p.Components[c] = make([]float64, d)
		if c < available {
			mat.Col(p.Components[c], c, &vecs)
		}
	}
	return p, nil
}

func (p PCA) apply(v []float64) []float64 {
	out := make([]float64, len(p.Components))
	for c, comp := range p.Components {
		var sum float64
		for j := range v {
			sum += (v[j] - p.Mean[j]) * comp[j]
		}
		out[c] = sum
	}
	return out
}

// OneHot maps known sentence texts to a column index. Unknown texts encode to no column.
type OneHot struct {
	Categories []string
}

func fitOneHot(texts []string) OneHot {
	cats := nlp.StringSet(texts, imputeText)
	return OneHot{Categories: cats}
}

// index returns the column of text, or -1 when the text was not seen during fitting.
func (o OneHot) index(text string) int {
	key := imputeText(text)
	i := sort.SearchStrings(o.Categories, key)
	if i < len(o.Categories) && o.Categories[i] == key {
		return i
	}
	return -1
}

func imputeText(text string) string {
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return missingText
	}
	return text
}

// Row is one transformed sample: the dense principal components plus the one-hot column
// of its text, -1 when unknown.
type Row struct {
	Dense    []float64
	Category int
}

// Preprocessor is the fitted transform applied to every sentence before prediction.
type Preprocessor struct {
	Scaler Scaler
	PCA    PCA
	OneHot OneHot
}

// FitPreprocessor fits the scaler, the 2-component PCA, and the text encoder on ds.
func FitPreprocessor(ds Dataset) (*Preprocessor, error) {
	if len(ds) == 0 {
		return nil, fmt.Errorf("cannot fit preprocessor on an empty dataset")
	}

	x := mat.NewDense(len(ds), len(nlp.FeatureNames), nil)
	texts := make([]string, len(ds))
	for i, ex := range ds {
		x.SetRow(i, ex.Features.Values())
		texts[i] = ex.Text
	}

	scaler := fitScaler(x)
	scaled := mat.NewDense(len(ds), len(nlp.FeatureNames), nil)
	for i := range len(ds) {
		scaled.SetRow(i, scaler.apply(x.RawRowView(i)))
	}

	pca, err := fitPCA(scaled, pcaComponents)
	if err != nil {
		return nil, err
	}

	return &Preprocessor{Scaler: scaler, PCA: pca, OneHot: fitOneHot(texts)}, nil
}

func (p *Preprocessor) Transform(text string, f nlp.Features) Row {
	return Row{
		Dense:    p.PCA.apply(p.Scaler.apply(f.Values())),
		Category: p.OneHot.index(text),
	}
}

// Width is the number of encoded columns: principal components plus one-hot columns.
func (p *Preprocessor) Width() int {
	return len(p.PCA.Components) + len(p.OneHot.Categories)
}
