package ml

import (
	"errors"
	"fmt"
	"math"
)

// DecisionTree is a fitted binary classification tree stored as a flat
// node array. Node 0 is the root and children always follow their parent.
type DecisionTree struct {
	nodes       []TreeNode
	importances []float64
}

// TreeNode is one split or leaf. Leaves have Left == Right == -1.
// Value holds the per-class sample weights reaching the node.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
	Impurity  float64   `json:"impurity"`
	Samples   float64   `json:"samples"`
}

func (n TreeNode) isLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

var _ Estimator = (*DecisionTree)(nil)
var _ FeatureImporter = (*DecisionTree)(nil)

// NewDecisionTree validates the node array and precomputes importances.
func NewDecisionTree(nodes []TreeNode) (*DecisionTree, error) {
	if err := validateNodes(nodes); err != nil {
		return nil, err
	}
	return &DecisionTree{
		nodes:       nodes,
		importances: treeImportances(nodes),
	}, nil
}

func (dt *DecisionTree) PredictClass(features []float64) (int, error) {
	proba, err := dt.PredictProbability(features)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

func (dt *DecisionTree) PredictProbability(features []float64) ([]float64, error) {
	if err := checkWidth(features); err != nil {
		return nil, err
	}
	leaf, err := dt.leaf(features)
	if err != nil {
		return nil, err
	}
	return leafProbability(leaf), nil
}

// FeatureImportances returns the normalized total impurity decrease per feature.
func (dt *DecisionTree) FeatureImportances() []float64 {
	out := make([]float64, len(dt.importances))
	copy(out, dt.importances)
	return out
}

func (dt *DecisionTree) leaf(features []float64) (TreeNode, error) {
	if len(dt.nodes) == 0 {
		return TreeNode{}, errors.New("model not trained")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.isLeaf() {
			return node, nil
		}
		if node.Feature < 0 || node.Feature >= len(features) {
			return TreeNode{}, errors.New("feature index out of range")
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return TreeNode{}, errors.New("invalid tree state")
		}
	}
}

func leafProbability(leaf TreeNode) []float64 {
	total := leaf.Value[0] + leaf.Value[1]
	return []float64{leaf.Value[0] / total, leaf.Value[1] / total}
}

func validateNodes(nodes []TreeNode) error {
	if len(nodes) == 0 {
		return fmt.Errorf("%w: tree has no nodes", ErrInvalidModel)
	}
	for i, node := range nodes {
		if node.isLeaf() {
			if len(node.Value) != 2 {
				return fmt.Errorf("%w: leaf %d has %d class values, want 2", ErrInvalidModel, i, len(node.Value))
			}
			if node.Value[0] < 0 || node.Value[1] < 0 || node.Value[0]+node.Value[1] <= 0 {
				return fmt.Errorf("%w: leaf %d has no positive class weight", ErrInvalidModel, i)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= FeatureCount {
			return fmt.Errorf("%w: node %d splits on feature %d", ErrInvalidModel, i, node.Feature)
		}
		if math.IsNaN(node.Threshold) {
			return fmt.Errorf("%w: node %d has NaN threshold", ErrInvalidModel, i)
		}
		// children after parent rules out cycles
		if node.Left <= i || node.Left >= len(nodes) || node.Right <= i || node.Right >= len(nodes) {
			return fmt.Errorf("%w: node %d has children %d/%d", ErrInvalidModel, i, node.Left, node.Right)
		}
	}
	return nil
}

func treeImportances(nodes []TreeNode) []float64 {
	importances := make([]float64, FeatureCount)
	for _, node := range nodes {
		if node.isLeaf() {
			continue
		}
		left, right := nodes[node.Left], nodes[node.Right]
		importances[node.Feature] += node.Samples*node.Impurity -
			left.Samples*left.Impurity -
			right.Samples*right.Impurity
	}
	normalize(importances)
	return importances
}

// normalize scales values to sum to one; an all-zero vector is left as is.
func normalize(values []float64) {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	if sum <= 0 {
		return
	}
	for i := range values {
		values[i] /= sum
	}
}
