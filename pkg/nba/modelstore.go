package nba

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// modelFile is the on disk form of a trained classifier
type modelFile struct {
	Architecture string        `json:"architecture"`
	Columns      []string      `json:"columns"`
	Accuracy     float64       `json:"accuracy"`
	Layers       []*DenseLayer `json:"layers"`
}

// SaveModel writes the classifier to path, replacing any previous model atomically
func SaveModel(path string, c *Classifier) error {
	data, err := json.MarshalIndent(modelFile{
		Architecture: c.Net.Architecture(),
		Columns:      c.Columns,
		Accuracy:     c.Accuracy,
		Layers:       c.Net.Layers,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".model-*")
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace model file: %w", err)
	}
	return nil
}

// LoadModel reads a classifier from path. A missing file wraps os.ErrNotExist,
// a file produced by a differently shaped network is ErrModelMismatch
func LoadModel(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", path, err)
	}

	want := architecture(len(mf.Columns))
	if mf.Architecture != want {
		return nil, fmt.Errorf("%w: file has %q, expected %q", ErrModelMismatch, mf.Architecture, want)
	}
	if err := checkShape(mf.Layers, len(mf.Columns)); err != nil {
		return nil, err
	}

	c := newClassifier(mf.Columns, &Network{Layers: mf.Layers})
	c.Accuracy = mf.Accuracy
	return c, nil
}

// checkShape verifies the stored layers match the architecture for inputs features
func checkShape(layers []*DenseLayer, inputs int) error {
	sizes := append([]int{inputs}, hiddenSizes...)
	sizes = append(sizes, 1)
	if len(layers) != len(sizes)-1 {
		return fmt.Errorf("%w: %d layers stored, expected %d", ErrModelMismatch, len(layers), len(sizes)-1)
	}
	for i, l := range layers {
		if l == nil || l.In != sizes[i] || l.Out != sizes[i+1] ||
			len(l.Weights) != l.In*l.Out || len(l.Biases) != l.Out {
			return fmt.Errorf("%w: layer %d has the wrong shape", ErrModelMismatch, i)
		}
	}
	return nil
}
