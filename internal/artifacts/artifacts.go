// Package artifacts loads the pretrained model bundle the dashboard
// scores with: classifier, segmentation model, scaler, label encoders,
// and the ordered feature list.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names, fixed by the training pipeline that exports
// them.
const (
	ClassifierFile       = "fraud_classifier.json"
	SegmentationFile     = "kmeans_segmentation.json"
	ScalerFile           = "scaler.json"
	FraudEncodersFile    = "fraud_encoders.json"
	CustomerEncodersFile = "customer_encoders.json"
	FeaturesFile         = "fraud_features.json"
)

// Bundle holds every artifact the service needs. All six files must
// load; a missing or malformed artifact aborts startup.
type Bundle struct {
	Classifier       *Classifier
	Segmentation     *KMeans
	Scaler           *Scaler
	FraudEncoders    EncoderSet
	CustomerEncoders EncoderSet

	// Features is the exact, ordered list of columns the classifier
	// was trained on.
	Features []string
}

// Scaler carries the standardization parameters exported with the
// model. It is validated at load and kept for parity with the training
// pipeline; the scoring path feeds the classifier raw features.
type Scaler struct {
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
	Features []string  `json:"features,omitempty"`
}

// KMeans carries the customer segmentation centroids. Segments arrive
// precomputed in the warehouse, so the model is validated but not
// invoked at inference.
type KMeans struct {
	Centroids [][]float64 `json:"centroids"`
	Features  []string    `json:"features,omitempty"`
}

// Load reads the six artifacts from dir and cross-validates them.
func Load(dir string) (*Bundle, error) {
	b := &Bundle{}

	if err := readJSON(dir, ClassifierFile, &b.Classifier); err != nil {
		return nil, err
	}
	if err := readJSON(dir, SegmentationFile, &b.Segmentation); err != nil {
		return nil, err
	}
	if err := readJSON(dir, ScalerFile, &b.Scaler); err != nil {
		return nil, err
	}
	if err := readJSON(dir, FraudEncodersFile, &b.FraudEncoders); err != nil {
		return nil, err
	}
	if err := readJSON(dir, CustomerEncodersFile, &b.CustomerEncoders); err != nil {
		return nil, err
	}
	if err := readJSON(dir, FeaturesFile, &b.Features); err != nil {
		return nil, err
	}

	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}
	return b, nil
}

func (b *Bundle) validate() error {
	// A file holding JSON null decodes without error but leaves its
	// model nil.
	if b.Classifier == nil {
		return fmt.Errorf("%s: no model in file", ClassifierFile)
	}
	if b.Segmentation == nil {
		return fmt.Errorf("%s: no model in file", SegmentationFile)
	}
	if b.Scaler == nil {
		return fmt.Errorf("%s: no scaler in file", ScalerFile)
	}
	if len(b.Features) == 0 {
		return fmt.Errorf("%s: expected feature list is empty", FeaturesFile)
	}
	if got, want := len(b.Classifier.Weights), len(b.Features); got != want {
		return fmt.Errorf("%s: %d weights for %d expected features", ClassifierFile, got, want)
	}
	if len(b.Classifier.Classes) != 2 {
		return fmt.Errorf("%s: classifier must be binary, got %d classes", ClassifierFile, len(b.Classifier.Classes))
	}
	if got, want := len(b.Scaler.Scale), len(b.Scaler.Mean); got != want {
		return fmt.Errorf("%s: mean length %d != scale length %d", ScalerFile, want, got)
	}
	for i, c := range b.Segmentation.Centroids {
		if len(c) != len(b.Segmentation.Centroids[0]) {
			return fmt.Errorf("%s: centroid %d has width %d, centroid 0 has %d",
				SegmentationFile, i, len(c), len(b.Segmentation.Centroids[0]))
		}
	}
	return nil
}

// ExpectedFeatures returns a copy of the ordered feature list.
func (b *Bundle) ExpectedFeatures() []string {
	out := make([]string, len(b.Features))
	copy(out, b.Features)
	return out
}

func readJSON(dir, name string, v interface{}) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("load artifact %s: %w", name, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("load artifact %s: %w", name, err)
	}
	return nil
}
