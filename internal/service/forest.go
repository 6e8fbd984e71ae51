package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/smartcity/aqi/internal/domain"
)

// ModelArtifact is the on-disk form of an exported random forest regressor
type ModelArtifact struct {
	ModelType    string     `json:"model_type"`
	NFeatures    int        `json:"n_features"`
	FeatureNames []string   `json:"feature_names,omitempty"`
	Trees        []TreeSpec `json:"trees"`
}

// TreeSpec is one regression tree. Node 0 is the root.
type TreeSpec struct {
	Nodes []NodeSpec `json:"nodes"`
}

// NodeSpec is a split (Feature >= 0) or a leaf (Feature == -1).
// Samples with x[Feature] <= Threshold go Left.
type NodeSpec struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

const forestModelType = "random_forest_regressor"

// ForestModel is an immutable random forest; the prediction is the mean leaf value
type ForestModel struct {
	name      string
	nFeatures int
	trees     []TreeSpec
}

// LoadForestModel reads and checks an artifact against the catalog's column order
func LoadForestModel(path string, catalog domain.FeatureCatalog) (*ForestModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forest: failed to read model artifact: %w", err)
	}

	var artifact ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("forest: failed to decode model artifact: %w: %v", domain.ErrModelArtifact, err)
	}

	return NewForestModel(path, artifact, catalog)
}

// NewForestModel validates an artifact and builds the model
func NewForestModel(name string, artifact ModelArtifact, catalog domain.FeatureCatalog) (*ForestModel, error) {
	if artifact.ModelType != forestModelType {
		return nil, fmt.Errorf("forest: %w: model type %q, want %q", domain.ErrModelArtifact, artifact.ModelType, forestModelType)
	}
	if artifact.NFeatures != catalog.VectorLen() {
		return nil, fmt.Errorf("forest: %w: trained on %d features, catalog %q has %d",
			domain.ErrModelArtifact, artifact.NFeatures, catalog.Variant, catalog.VectorLen())
	}
	if len(artifact.FeatureNames) > 0 && !slices.Equal(artifact.FeatureNames, catalog.ColumnNames()) {
		return nil, fmt.Errorf("forest: %w: feature order %v does not match catalog %v",
			domain.ErrModelArtifact, artifact.FeatureNames, catalog.ColumnNames())
	}
	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("forest: %w: no trees", domain.ErrModelArtifact)
	}
	for i, tree := range artifact.Trees {
		if err := validateTree(tree, artifact.NFeatures); err != nil {
			return nil, fmt.Errorf("forest: %w: tree %d: %v", domain.ErrModelArtifact, i, err)
		}
	}

	return &ForestModel{
		name:      name,
		nFeatures: artifact.NFeatures,
		trees:     artifact.Trees,
	}, nil
}

// validateTree requires children to come after their parent, which rules out cycles
func validateTree(tree TreeSpec, nFeatures int) error {
	if len(tree.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range tree.Nodes {
		if n.Feature < 0 {
			continue
		}
		if n.Feature >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, nFeatures)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(tree.Nodes) {
				return fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}

// Predict averages the leaf reached in each tree
func (m *ForestModel) Predict(ctx context.Context, vector []float64) (float64, error) {
	if len(vector) != m.nFeatures {
		return 0, fmt.Errorf("forest: %w: got %d features, want %d", domain.ErrInvalidInput, len(vector), m.nFeatures)
	}

	var sum float64
	for _, tree := range m.trees {
		i := 0
		for tree.Nodes[i].Feature >= 0 {
			n := tree.Nodes[i]
			if vector[n.Feature] <= n.Threshold {
				i = n.Left
			} else {
				i = n.Right
			}
		}
		sum += tree.Nodes[i].Value
	}
	return sum / float64(len(m.trees)), nil
}

// Name returns the artifact path the model was loaded from
func (m *ForestModel) Name() string {
	return m.name
}
