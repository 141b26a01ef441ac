package classifier

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Node is one node of a flattened decision tree. Feature indexes the dense components
// first, then the one-hot columns. Dense splits send x <= Threshold left; one-hot splits
// send rows of that category left.
type Node struct {
	Leaf      bool
	Prob      float64
	Feature   int
	Threshold float64
	Left      int
	Right     int
}

type Tree struct {
	Nodes []Node
}

func (t Tree) predict(r Row) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Prob
		}
		if goesLeft(n, r) {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func goesLeft(n Node, r Row) bool {
	dense := len(r.Dense)
	if n.Feature < dense {
		return r.Dense[n.Feature] <= n.Threshold
	}
	return r.Category == n.Feature-dense
}

// Forest is a bagged ensemble of fully grown gini trees with averaged class probabilities.
type Forest struct {
	Trees []Tree
}

type ForestOptions struct {
	Trees   int
	Seed    uint64
	Workers int
}

func (o ForestOptions) withDefaults() ForestOptions {
	if o.Trees <= 0 {
		o.Trees = 100
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// FitForest grows the trees in parallel. Each tree draws from its own seeded source, so
// the forest only depends on the seed.
func FitForest(ctx context.Context, rows []Row, labels []bool, width int, opts ForestOptions) (*Forest, error) {
	if len(rows) == 0 || len(rows) != len(labels) {
		return nil, fmt.Errorf("invalid training set: %d rows, %d labels", len(rows), len(labels))
	}
	opts = opts.withDefaults()

	mtry := max(1, int(math.Sqrt(float64(width))))
	forest := &Forest{Trees: make([]Tree, opts.Trees)}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for t := range opts.Trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(t)))
			sample := make([]int, len(rows))
			for i := range sample {
				sample[i] = rng.IntN(len(rows))
			}
			b := &treeBuilder{rows: rows, labels: labels, mtry: mtry, rng: rng}
			b.grow(sample)
			forest.Trees[t] = Tree{Nodes: b.nodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to grow forest: %w", err)
	}

	return forest, nil
}

// Probability is the mean positive-class probability over all trees.
func (f *Forest) Probability(r Row) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(r)
	}
	return sum / float64(len(f.Trees))
}

// Predict reports the positive class when it has a strict majority of probability mass.
func (f *Forest) Predict(r Row) bool {
	return f.Probability(r) > 0.5
}

type treeBuilder struct {
	rows   []Row
	labels []bool
	mtry   int
	rng    *rand.Rand
	nodes  []Node
}

type split struct {
	feature   int
	threshold float64
	impurity  float64
}

func (b *treeBuilder) grow(idx []int) int {
	at := len(b.nodes)
	b.nodes = append(b.nodes, Node{})

	pos := b.positives(idx)
	if pos == 0 || pos == len(idx) || len(idx) < 2 {
		b.nodes[at] = Node{Leaf: true, Prob: float64(pos) / float64(len(idx))}
		return at
	}

	best, ok := b.bestSplit(idx)
	if !ok {
		b.nodes[at] = Node{Leaf: true, Prob: float64(pos) / float64(len(idx))}
		return at
	}

	var left, right []int
	probe := Node{Feature: best.feature, Threshold: best.threshold}
	for _, i := range idx {
		if goesLeft(probe, b.rows[i]) {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left)
	r := b.grow(right)
	b.nodes[at] = Node{Feature: best.feature, Threshold: best.threshold, Left: l, Right: r}
	return at
}

func (b *treeBuilder) positives(idx []int) int {
	n := 0
	for _, i := range idx {
		if b.labels[i] {
			n++
		}
	}
	return n
}

// candidates lists the features that are not constant within idx: dense components with
// at least two values, and one-hot columns present on some but not all rows.
func (b *treeBuilder) candidates(idx []int) []int {
	dense := len(b.rows[idx[0]].Dense)
	var out []int
	for f := range dense {
		first := b.rows[idx[0]].Dense[f]
		for _, i := range idx[1:] {
			if b.rows[i].Dense[f] != first {
				out = append(out, f)
				break
			}
		}
	}

	counts := make(map[int]int)
	for _, i := range idx {
		if c := b.rows[i].Category; c >= 0 {
			counts[c]++
		}
	}
	cats := make([]int, 0, len(counts))
	for c, n := range counts {
		if n < len(idx) {
			cats = append(cats, c)
		}
	}
	sort.Ints(cats)
	for _, c := range cats {
		out = append(out, dense+c)
	}
	return out
}

func (b *treeBuilder) bestSplit(idx []int) (split, bool) {
	cands := b.candidates(idx)
	if len(cands) == 0 {
		return split{}, false
	}
	b.rng.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })
	if len(cands) > b.mtry {
		cands = cands[:b.mtry]
	}

	dense := len(b.rows[idx[0]].Dense)
	best := split{impurity: math.Inf(1)}
	for _, f := range cands {
		var s split
		var ok bool
		if f < dense {
			s, ok = b.denseSplit(idx, f)
		} else {
			s, ok = b.categorySplit(idx, f, f-dense)
		}
		if ok && s.impurity < best.impurity {
			best = s
		}
	}
	return best, !math.IsInf(best.impurity, 1)
}

func (b *treeBuilder) denseSplit(idx []int, f int) (split, bool) {
	sorted := append([]int(nil), idx...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return b.rows[sorted[i]].Dense[f] < b.rows[sorted[j]].Dense[f]
	})

	total := len(sorted)
	totalPos := b.positives(sorted)
	best := split{feature: f, impurity: math.Inf(1)}

	leftPos := 0
	for i := 0; i < total-1; i++ {
		if b.labels[sorted[i]] {
			leftPos++
		}
		cur := b.rows[sorted[i]].Dense[f]
		next := b.rows[sorted[i+1]].Dense[f]
		if cur == next {
			continue
		}
		imp := weightedGini(i+1, leftPos, total-i-1, totalPos-leftPos)
		if imp < best.impurity {
			best.impurity = imp
			best.threshold = cur + (next-cur)/2
		}
	}
	return best, !math.IsInf(best.impurity, 1)
}

func (b *treeBuilder) categorySplit(idx []int, f, category int) (split, bool) {
	var in, inPos, out, outPos int
	for _, i := range idx {
		if b.rows[i].Category == category {
			in++
			if b.labels[i] {
				inPos++
			}
		} else {
			out++
			if b.labels[i] {
				outPos++
			}
		}
	}
	if in == 0 || out == 0 {
		return split{}, false
	}
	return split{feature: f, impurity: weightedGini(in, inPos, out, outPos)}, true
}

func weightedGini(leftN, leftPos, rightN, rightPos int) float64 {
	n := float64(leftN + rightN)
	return float64(leftN)/n*gini(leftN, leftPos) + float64(rightN)/n*gini(rightN, rightPos)
}

func gini(n, pos int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 1 - p*p - (1-p)*(1-p)
}
