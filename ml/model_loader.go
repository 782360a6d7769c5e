package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	TypeDecisionTree       = "decision_tree"
	TypeRandomForest       = "random_forest"
	TypeLogisticRegression = "logistic_regression"
	TypePrior              = "prior"
)

// artifact is the on-disk model document. Which fields are populated
// depends on ModelType.
type artifact struct {
	ModelType    string      `json:"model_type"`
	FeatureNames []string    `json:"feature_names,omitempty"`
	Nodes        []TreeNode  `json:"nodes,omitempty"`
	Trees        []treeNodes `json:"trees,omitempty"`
	Coef         [][]float64 `json:"coef,omitempty"`
	Intercept    []float64   `json:"intercept,omitempty"`
	ClassPrior   []float64   `json:"class_prior,omitempty"`
}

type treeNodes struct {
	Nodes []TreeNode `json:"nodes"`
}

// LoadModel reads the artifact at path. A missing file yields an error
// matching fs.ErrNotExist; anything else that goes wrong is reported as is.
func LoadModel(path string) (Estimator, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	est, err := ParseModel(payload)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return est, nil
}

// ParseModel decodes an artifact document.
func ParseModel(payload []byte) (Estimator, error) {
	var doc artifact
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := checkFeatureNames(doc.FeatureNames); err != nil {
		return nil, err
	}

	var (
		est Estimator
		err error
	)
	switch doc.ModelType {
	case TypeDecisionTree:
		est, err = NewDecisionTree(doc.Nodes)
	case TypeRandomForest:
		trees := make([][]TreeNode, len(doc.Trees))
		for i, t := range doc.Trees {
			trees[i] = t.Nodes
		}
		est, err = NewRandomForest(trees)
	case TypeLogisticRegression:
		est, err = NewLogisticRegression(doc.Coef, doc.Intercept)
	case TypePrior:
		est, err = NewPriorClassifier(doc.ClassPrior)
	case "":
		return nil, fmt.Errorf("%w: model_type is missing", ErrInvalidModel)
	default:
		return nil, fmt.Errorf("%w: unsupported model type %q", ErrInvalidModel, doc.ModelType)
	}
	if err != nil {
		return nil, err
	}
	return est, nil
}

// TypeOf names the family of a loaded estimator.
func TypeOf(est Estimator) string {
	switch est.(type) {
	case *DecisionTree:
		return TypeDecisionTree
	case *RandomForest:
		return TypeRandomForest
	case *LogisticRegression:
		return TypeLogisticRegression
	case *PriorClassifier:
		return TypePrior
	default:
		return fmt.Sprintf("%T", est)
	}
}

func checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != FeatureCount {
		return fmt.Errorf("%w: artifact declares %d features, want %d", ErrInvalidModel, len(names), FeatureCount)
	}
	for i, name := range names {
		if name != FeatureNames[i] {
			return fmt.Errorf("%w: feature %d is %q, want %q", ErrInvalidModel, i, name, FeatureNames[i])
		}
	}
	return nil
}
