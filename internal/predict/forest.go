// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package predict

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"

	"github.com/tomtom215/parkcast/internal/models"
)

// NumFeatures is the width of a feature vector: latitude, longitude, hour, weekday.
const NumFeatures = 4

// Feature indexes into a Sample.
const (
	FeatureLat = iota
	FeatureLng
	FeatureHour
	FeatureWeekday
)

// Sample is one feature vector.
type Sample [NumFeatures]float64

// NewSample builds the feature vector for a query.
func NewSample(lat, lng float64, hour, weekday int) Sample {
	return Sample{lat, lng, float64(hour), float64(weekday)}
}

// ForestConfig controls forest fitting.
type ForestConfig struct {
	// Trees is the number of trees in the ensemble.
	Trees int

	// Seed makes fitting deterministic. Each tree draws from its own
	// stream derived from (Seed, tree index).
	Seed uint64

	// MaxDepth limits tree depth. Zero means unlimited.
	MaxDepth int

	// MinSamplesLeaf is the minimum number of samples in each leaf.
	MinSamplesLeaf int

	// MinSamplesSplit is the minimum number of samples required to split a node.
	MinSamplesSplit int

	// Workers is the number of trees fitted concurrently. Zero uses GOMAXPROCS.
	Workers int
}

// DefaultForestConfig returns the production forest settings.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:           100,
		Seed:            42,
		MaxDepth:        0,
		MinSamplesLeaf:  1,
		MinSamplesSplit: 2,
		Workers:         0,
	}
}

func (c *ForestConfig) normalize() {
	if c.Trees <= 0 {
		c.Trees = 100
	}
	if c.MinSamplesLeaf < 1 {
		c.MinSamplesLeaf = 1
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = 2
	}
	if c.MaxDepth < 0 {
		c.MaxDepth = 0
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Workers > c.Trees {
		c.Workers = c.Trees
	}
}

// Node is one node of a regression tree stored in a flat array.
// Leaves have Left == -1; internal nodes send x[Feature] <= Threshold left.
type Node struct {
	Feature   int
	Threshold float64
	Left      int32
	Right     int32
	Value     float64
}

// Tree is a fitted CART regression tree.
type Tree struct {
	Nodes []Node
}

// Predict walks the tree from the root to a leaf.
func (t *Tree) Predict(x *Sample) float64 {
	i := int32(0)
	for {
		n := &t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the depth of the deepest leaf (a single leaf has depth 0).
func (t *Tree) Depth() int {
	var walk func(i int32) int
	walk = func(i int32) int {
		n := t.Nodes[i]
		if n.Left < 0 {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

// Forest is a bagged ensemble of regression trees.
type Forest struct {
	Trees []Tree
}

// MaxDepth returns the depth of the deepest tree in the ensemble.
func (f *Forest) MaxDepth() int {
	depth := 0
	for i := range f.Trees {
		depth = max(depth, f.Trees[i].Depth())
	}
	return depth
}

// Predict returns the mean of the tree outputs.
func (f *Forest) Predict(x Sample) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].Predict(&x)
	}
	return sum / float64(len(f.Trees))
}

// Size returns the total node count across all trees.
func (f *Forest) Size() int {
	n := 0
	for i := range f.Trees {
		n += len(f.Trees[i].Nodes)
	}
	return n
}

// FitObservations fits a forest on corpus rows, using
// (lat, lng, hour, day) as features and available_spots as the target.
//
//nolint:gocritic // hugeParam: cfg is copied once per fit
func FitObservations(ctx context.Context, rows []models.Observation, cfg ForestConfig) (*Forest, error) {
	x := make([]Sample, len(rows))
	y := make([]float64, len(rows))
	for i := range rows {
		r := &rows[i]
		x[i] = NewSample(r.Lat, r.Lng, r.Hour, r.Day)
		y[i] = float64(r.AvailableSpots)
	}
	return Fit(ctx, x, y, cfg)
}

// Fit trains a forest. Trees are fitted concurrently; the result only
// depends on the data and cfg.Seed, never on the worker count.
//
//nolint:gocritic // hugeParam: cfg is copied once per fit
func Fit(ctx context.Context, x []Sample, y []float64, cfg ForestConfig) (*Forest, error) {
	if len(x) == 0 {
		return nil, models.ErrEmptyCorpus
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("feature rows (%d) and targets (%d) differ", len(x), len(y))
	}
	cfg.normalize()

	trees := make([]Tree, cfg.Trees)
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := newTreeBuilder(x, y, &cfg)
			for i := range jobs {
				trees[i] = b.fit(uint64(i)) //nolint:gosec // tree index is non-negative
			}
		}()
	}

	var err error
feed:
	for i := 0; i < cfg.Trees; i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}
	return &Forest{Trees: trees}, nil
}

// treeBuilder holds per-worker scratch space. It is not safe for concurrent use.
type treeBuilder struct {
	x       []Sample
	y       []float64
	cfg     *ForestConfig
	nodes   []Node
	idx     []int32
	scratch []int32
}

func newTreeBuilder(x []Sample, y []float64, cfg *ForestConfig) *treeBuilder {
	return &treeBuilder{
		x:       x,
		y:       y,
		cfg:     cfg,
		idx:     make([]int32, len(x)),
		scratch: make([]int32, len(x)),
	}
}

// fit grows one tree on a bootstrap sample drawn from stream (Seed, treeIndex).
func (b *treeBuilder) fit(treeIndex uint64) Tree {
	rng := rand.New(rand.NewPCG(b.cfg.Seed, treeIndex)) //nolint:gosec // model fitting, not security
	n := len(b.x)
	for i := range b.idx {
		b.idx[i] = int32(rng.IntN(n)) //nolint:gosec // n fits in int32 for any realistic corpus
	}

	b.nodes = make([]Node, 0, 64)
	b.grow(b.idx, 0)
	return Tree{Nodes: b.nodes}
}

func (b *treeBuilder) grow(idx []int32, depth int) int32 {
	id := int32(len(b.nodes)) //nolint:gosec // node count bounded by sample count
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1})

	n := len(idx)
	sum := 0.0
	lo, hi := b.y[idx[0]], b.y[idx[0]]
	for _, i := range idx {
		v := b.y[i]
		sum += v
		lo = min(lo, v)
		hi = max(hi, v)
	}
	b.nodes[id].Value = sum / float64(n)

	if lo == hi || n < b.cfg.MinSamplesSplit || n < 2*b.cfg.MinSamplesLeaf {
		return id
	}
	if b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth {
		return id
	}

	feature, threshold, ok := b.bestSplit(idx, sum)
	if !ok {
		return id
	}

	// Partition in place: x[feature] <= threshold goes left.
	l, r := 0, n-1
	for l <= r {
		if b.x[idx[l]][feature] <= threshold {
			l++
		} else {
			idx[l], idx[r] = idx[r], idx[l]
			r--
		}
	}

	left := b.grow(idx[:l], depth+1)
	right := b.grow(idx[l:], depth+1)

	node := &b.nodes[id]
	node.Feature = feature
	node.Threshold = threshold
	node.Left = left
	node.Right = right
	return id
}

// bestSplit finds the split minimising the summed squared error of both
// children. Maximising sumL²/nL + sumR²/nR is equivalent and avoids a
// second pass over the targets.
func (b *treeBuilder) bestSplit(idx []int32, total float64) (feature int, threshold float64, ok bool) {
	n := len(idx)
	minLeaf := b.cfg.MinSamplesLeaf
	buf := b.scratch[:n]
	best := 0.0

	for f := 0; f < NumFeatures; f++ {
		copy(buf, idx)
		slices.SortFunc(buf, func(a, c int32) int {
			return cmp.Compare(b.x[a][f], b.x[c][f])
		})

		left := 0.0
		for i := 1; i < n; i++ {
			left += b.y[buf[i-1]]
			if i < minLeaf || n-i < minLeaf {
				continue
			}
			prev, cur := b.x[buf[i-1]][f], b.x[buf[i]][f]
			if prev == cur {
				continue
			}
			right := total - left
			score := left*left/float64(i) + right*right/float64(n-i)
			if !ok || score > best {
				best = score
				feature = f
				threshold = prev + (cur-prev)/2
				if threshold == cur {
					threshold = prev
				}
				ok = true
			}
		}
	}
	return feature, threshold, ok
}
