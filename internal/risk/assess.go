// Package risk turns patient attributes into a cancer risk tier using an
// external classifier.
package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/Skufu/healthdesk/internal/apperr"
)

const (
	MinAge = 18
	MaxAge = 120
	MinBMI = 10
	MaxBMI = 60

	// FeatureCount is the width of the vector handed to the classifier.
	FeatureCount = 7
)

// Request holds the raw attributes submitted for an assessment.
type Request struct {
	Age              float64 `form:"age" json:"age"`
	HeightCm         float64 `form:"height" json:"height"`
	WeightKg         float64 `form:"weight" json:"weight"`
	Smoking          int     `form:"smoking" json:"smoking"`
	GeneticRisk      int     `form:"genetic_risk" json:"genetic_risk"`
	PhysicalActivity int     `form:"physical_activity" json:"physical_activity"`
	AlcoholIntake    int     `form:"alcohol_intake" json:"alcohol_intake"`
	CancerHistory    int     `form:"cancer_history" json:"cancer_history"`
}

// Assessment is the outcome returned to the caller.
type Assessment struct {
	RiskPercentage int
	BMI            float64
	Band
}

// BMI computes weight / height² with height given in centimetres.
func BMI(heightCm, weightKg float64) float64 {
	m := heightCm / 100
	return weightKg / (m * m)
}

// Features validates r and returns the classifier input in the fixed order
// age, bmi, smoking, genetic_risk, physical_activity, alcohol_intake,
// cancer_history.
func (r Request) Features() ([]float64, error) {
	// Written as negated ranges so NaN fails too.
	if !(r.Age >= MinAge && r.Age <= MaxAge) {
		return nil, apperr.Validation("age", "Yaş %d-%d arasında olmalıdır", MinAge, MaxAge)
	}
	if !(r.HeightCm > 0) {
		return nil, apperr.Validation("height", "Boy 0'dan büyük olmalıdır")
	}
	bmi := BMI(r.HeightCm, r.WeightKg)
	if !(bmi >= MinBMI && bmi <= MaxBMI) {
		return nil, apperr.Validation("bmi", "BMI değeri makul aralıkta değil (%d-%d)", MinBMI, MaxBMI)
	}

	return []float64{
		r.Age,
		bmi,
		float64(r.Smoking),
		float64(r.GeneticRisk),
		float64(r.PhysicalActivity),
		float64(r.AlcoholIntake),
		float64(r.CancerHistory),
	}, nil
}

// Assessor runs requests through a classifier. The classifier is fixed at
// construction and shared read-only by concurrent requests.
type Assessor struct {
	classifier Classifier
}

// NewAssessor returns an Assessor. A nil classifier yields an Assessor that
// reports the service as unavailable.
func NewAssessor(c Classifier) *Assessor {
	return &Assessor{classifier: c}
}

func (a *Assessor) Available() bool {
	return a != nil && a.classifier != nil
}

// Assess validates r, consults the classifier and bands the result.
func (a *Assessor) Assess(r Request) (Assessment, error) {
	if !a.Available() {
		return Assessment{}, apperr.Unavailable("Model yüklenemedi. Lütfen daha sonra tekrar deneyin.")
	}

	features, err := r.Features()
	if err != nil {
		return Assessment{}, err
	}

	pct, err := a.percentage(features)
	if err != nil {
		return Assessment{}, apperr.Internal("Analiz sırasında bir hata oluştu. Lütfen form bilgilerinizi kontrol edin.", err)
	}

	return Assessment{
		RiskPercentage: pct,
		BMI:            features[1],
		Band:           BandFor(pct),
	}, nil
}

// percentage derives the rounded probability of the positive class, or the
// label itself when the classifier has no distribution to offer.
func (a *Assessor) percentage(features []float64) (int, error) {
	label, err := a.classifier.Predict(features)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}

	p := float64(label)
	if pc, ok := a.classifier.(ProbabilityClassifier); ok {
		proba, err := pc.PredictProba(features)
		if err != nil {
			return 0, fmt.Errorf("predict proba: %w", err)
		}
		if len(proba) > 1 {
			p = proba[1]
		}
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, errors.New("classifier returned a non-finite probability")
	}

	pct := int(math.Round(p * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}
