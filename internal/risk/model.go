package risk

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// LogisticModel is a binary logistic regression exported from the training
// notebook. Features are standardized with Mean and Scale when present.
type LogisticModel struct {
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`
	Mean         []float64 `yaml:"mean,omitempty"`
	Scale        []float64 `yaml:"scale,omitempty"`
	Threshold    float64   `yaml:"threshold,omitempty"`
}

// LoadModel reads a LogisticModel from a YAML file.
func LoadModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	var m LogisticModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

func (m *LogisticModel) validate() error {
	if len(m.Coefficients) != FeatureCount {
		return fmt.Errorf("expected %d coefficients, got %d", FeatureCount, len(m.Coefficients))
	}
	if m.Mean != nil && len(m.Mean) != FeatureCount {
		return fmt.Errorf("expected %d means, got %d", FeatureCount, len(m.Mean))
	}
	if m.Scale != nil {
		if len(m.Scale) != FeatureCount {
			return fmt.Errorf("expected %d scales, got %d", FeatureCount, len(m.Scale))
		}
		for i, s := range m.Scale {
			if s == 0 {
				return fmt.Errorf("scale %d is zero", i)
			}
		}
	}
	if m.Threshold < 0 || m.Threshold >= 1 {
		return fmt.Errorf("threshold %v out of range [0,1)", m.Threshold)
	}
	return nil
}

func (m *LogisticModel) Predict(features []float64) (int, error) {
	p, err := m.positive(features)
	if err != nil {
		return 0, err
	}
	threshold := m.Threshold
	if threshold == 0 {
		threshold = 0.5
	}
	if p >= threshold {
		return 1, nil
	}
	return 0, nil
}

func (m *LogisticModel) PredictProba(features []float64) ([]float64, error) {
	p, err := m.positive(features)
	if err != nil {
		return nil, err
	}
	return []float64{1 - p, p}, nil
}

func (m *LogisticModel) positive(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.Coefficients), len(features))
	}
	z := m.Intercept
	for i, x := range features {
		if m.Mean != nil {
			x -= m.Mean[i]
		}
		if m.Scale != nil {
			x /= m.Scale[i]
		}
		z += m.Coefficients[i] * x
	}
	return 1 / (1 + math.Exp(-z)), nil
}
