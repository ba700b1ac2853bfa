package risk

// Classifier is the pre-trained model consulted for an assessment. It
// returns the predicted class label for a feature vector.
type Classifier interface {
	Predict(features []float64) (int, error)
}

// ProbabilityClassifier is implemented by classifiers that also expose a
// distribution over classes, indexed by class label.
type ProbabilityClassifier interface {
	Classifier
	PredictProba(features []float64) ([]float64, error)
}
