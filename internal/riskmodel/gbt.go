package riskmodel

import (
	"fmt"
	"math"
	"sort"
)

// BoosterParams configures gradient boosting
type BoosterParams struct {
	Estimators   int
	LearningRate float64
	MaxDepth     int
}

// DefaultBoosterParams mirrors the usual gradient-boosting defaults
var DefaultBoosterParams = BoosterParams{
	Estimators:   100,
	LearningRate: 0.1,
	MaxDepth:     3,
}

// Booster is an additive ensemble of regression trees on the log-odds scale
type Booster struct {
	InitScore    float64 `json:"init_score"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []Tree  `json:"trees"`
}

// Tree is a binary regression tree stored as a flat node array; node 0 is the root
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is a split (x[Feature] <= Threshold goes Left) or a leaf
type TreeNode struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"v,omitempty"`
	Feature   int     `json:"f,omitempty"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
}

func (t Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// validate checks that every path from the root reaches a leaf and reads
// only features below width. Children must follow their parent.
func (t Tree) validate(width int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= width {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return nil
}

// decision returns the raw log-odds score of x
func (b Booster) decision(x []float64) float64 {
	score := b.InitScore
	for _, t := range b.Trees {
		score += b.LearningRate * t.predict(x)
	}
	return score
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// fitBooster fits trees to the negative log-loss gradient with Newton leaf values.
// X is row-major; y holds 0/1 labels containing both classes.
func fitBooster(X [][]float64, y []int, params BoosterParams) Booster {
	n := len(X)
	var pos float64
	for _, v := range y {
		pos += float64(v)
	}
	prior := pos / float64(n)

	b := Booster{
		InitScore:    math.Log(prior / (1 - prior)),
		LearningRate: params.LearningRate,
	}

	nFeatures := len(X[0])
	order := make([][]int, nFeatures)
	for f := 0; f < nFeatures; f++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, c int) bool { return X[idx[a]][f] < X[idx[c]][f] })
		order[f] = idx
	}

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = b.InitScore
	}
	residual := make([]float64, n)
	hessian := make([]float64, n)

	for m := 0; m < params.Estimators; m++ {
		for i := range raw {
			p := sigmoid(raw[i])
			residual[i] = float64(y[i]) - p
			hessian[i] = p * (1 - p)
		}

		tb := treeBuilder{X: X, residual: residual, hessian: hessian, order: order, maxDepth: params.MaxDepth}
		tree := tb.build()
		for i := range raw {
			raw[i] += b.LearningRate * tree.predict(X[i])
		}
		b.Trees = append(b.Trees, tree)
	}
	return b
}

type treeBuilder struct {
	X        [][]float64
	residual []float64
	hessian  []float64
	order    [][]int
	maxDepth int
	nodes    []TreeNode
}

func (tb *treeBuilder) build() Tree {
	member := make([]bool, len(tb.X))
	for i := range member {
		member[i] = true
	}
	tb.nodes = nil
	tb.grow(member, 0)
	return Tree{Nodes: tb.nodes}
}

// grow appends the subtree for the samples in member and returns its index
func (tb *treeBuilder) grow(member []bool, depth int) int {
	idx := len(tb.nodes)
	tb.nodes = append(tb.nodes, TreeNode{})

	var count int
	var sumR, sumH float64
	for i, in := range member {
		if in {
			count++
			sumR += tb.residual[i]
			sumH += tb.hessian[i]
		}
	}

	leaf := TreeNode{Leaf: true}
	if sumH > 1e-12 {
		leaf.Value = sumR / sumH
	}

	if depth >= tb.maxDepth || count < 2 {
		tb.nodes[idx] = leaf
		return idx
	}

	feature, threshold, ok := tb.bestSplit(member, count, sumR)
	if !ok {
		tb.nodes[idx] = leaf
		return idx
	}

	left := make([]bool, len(member))
	right := make([]bool, len(member))
	for i, in := range member {
		if !in {
			continue
		}
		if tb.X[i][feature] <= threshold {
			left[i] = true
		} else {
			right[i] = true
		}
	}

	l := tb.grow(left, depth+1)
	r := tb.grow(right, depth+1)
	tb.nodes[idx] = TreeNode{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return idx
}

// bestSplit maximizes the squared-error reduction of the residuals
func (tb *treeBuilder) bestSplit(member []bool, count int, sumR float64) (int, float64, bool) {
	parent := sumR * sumR / float64(count)
	bestGain := 1e-12
	bestFeature, bestThreshold := -1, 0.0

	for f, order := range tb.order {
		var leftSum float64
		leftCount := 0
		prev := -1
		for _, i := range order {
			if !member[i] {
				continue
			}
			if prev >= 0 && tb.X[i][f] > tb.X[prev][f] {
				rightCount := count - leftCount
				rightSum := sumR - leftSum
				gain := leftSum*leftSum/float64(leftCount) + rightSum*rightSum/float64(rightCount) - parent
				if gain > bestGain {
					bestGain = gain
					bestFeature = f
					bestThreshold = (tb.X[prev][f] + tb.X[i][f]) / 2
				}
			}
			leftSum += tb.residual[i]
			leftCount++
			prev = i
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}
