package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForestSeparatesDenseClusters(t *testing.T) {
	t.Parallel()

	var (
		rows   []Row
		labels []bool
	)
	for i := range 20 {
		rows = append(rows, Row{Dense: []float64{float64(i) * 0.01, 1}, Category: -1})
		labels = append(labels, false)
		rows = append(rows, Row{Dense: []float64{5 + float64(i)*0.01, 1}, Category: -1})
		labels = append(labels, true)
	}

	f, err := FitForest(context.Background(), rows, labels, 2, ForestOptions{Trees: 15, Seed: 1})
	require.NoError(t, err)
	require.Len(t, f.Trees, 15)

	assert.True(t, f.Predict(Row{Dense: []float64{6, 1}, Category: -1}))
	assert.False(t, f.Predict(Row{Dense: []float64{-1, 1}, Category: -1}))
	assert.InDelta(t, 1.0, f.Probability(Row{Dense: []float64{5.1, 1}, Category: -1}), 1e-9)
}

func TestForestSplitsOnCategories(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Dense: []float64{0, 0}, Category: 0},
		{Dense: []float64{0, 0}, Category: 1},
		{Dense: []float64{0, 0}, Category: 2},
		{Dense: []float64{0, 0}, Category: 3},
	}
	labels := []bool{true, false, false, false}

	f, err := FitForest(context.Background(), rows, labels, 6, ForestOptions{Trees: 30, Seed: 3})
	require.NoError(t, err)

	assert.Greater(t, f.Probability(rows[0]), f.Probability(rows[1]))
}

func TestFitForestValidatesInput(t *testing.T) {
	t.Parallel()

	_, err := FitForest(context.Background(), nil, nil, 2, ForestOptions{})
	assert.Error(t, err)

	_, err = FitForest(context.Background(), []Row{{Dense: []float64{1}}}, []bool{true, false}, 1, ForestOptions{})
	assert.Error(t, err)
}

func TestGini(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, gini(4, 2), 1e-9)
	assert.Zero(t, gini(3, 3))
	assert.Zero(t, gini(0, 0))
	assert.InDelta(t, 0.0, weightedGini(2, 2, 2, 0), 1e-9)
}
