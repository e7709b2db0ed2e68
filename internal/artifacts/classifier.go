package artifacts

import (
	"fmt"
	"math"
)

// Classifier is a logistic model exported by the training pipeline.
// Weights are positional: weight i applies to feature i of the ordered
// feature list shipped alongside the model.
type Classifier struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Classes   []int     `json:"classes"`
	Version   string    `json:"version,omitempty"`
}

// PredictProba returns the probability of the positive class for one
// feature vector. The vector must already be selected and ordered per
// the expected feature list. Deterministic: the same vector always
// yields the same probability.
func (c *Classifier) PredictProba(vector []float64) (float64, error) {
	if len(vector) != len(c.Weights) {
		return 0, fmt.Errorf("classifier: vector has %d features, model expects %d", len(vector), len(c.Weights))
	}

	z := c.Intercept
	for i, w := range c.Weights {
		z += w * vector[i]
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
