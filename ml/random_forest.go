package ml

import "fmt"

// RandomForest averages the class probabilities of its trees.
type RandomForest struct {
	trees       []*DecisionTree
	importances []float64
}

var _ Estimator = (*RandomForest)(nil)
var _ FeatureImporter = (*RandomForest)(nil)

func NewRandomForest(trees [][]TreeNode) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidModel)
	}
	rf := &RandomForest{
		trees:       make([]*DecisionTree, 0, len(trees)),
		importances: make([]float64, FeatureCount),
	}
	for i, nodes := range trees {
		tree, err := NewDecisionTree(nodes)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		rf.trees = append(rf.trees, tree)
		for j, v := range tree.importances {
			rf.importances[j] += v
		}
	}
	for j := range rf.importances {
		rf.importances[j] /= float64(len(rf.trees))
	}
	normalize(rf.importances)
	return rf, nil
}

func (rf *RandomForest) PredictClass(features []float64) (int, error) {
	proba, err := rf.PredictProbability(features)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

func (rf *RandomForest) PredictProbability(features []float64) ([]float64, error) {
	if err := checkWidth(features); err != nil {
		return nil, err
	}
	sum := []float64{0, 0}
	for _, tree := range rf.trees {
		p, err := tree.PredictProbability(features)
		if err != nil {
			return nil, err
		}
		sum[0] += p[0]
		sum[1] += p[1]
	}
	n := float64(len(rf.trees))
	return []float64{sum[0] / n, sum[1] / n}, nil
}

func (rf *RandomForest) FeatureImportances() []float64 {
	out := make([]float64, len(rf.importances))
	copy(out, rf.importances)
	return out
}
