package nlp

import (
	"math"
	"math/rand/v2"

	"GutAssistant/internal/entity"
)

const (
	ConfidenceFloor   = 0.7
	ConfidenceCeiling = 1.0
)

// ConfidenceEstimator reports a uniform draw in [ConfidenceFloor,
// ConfidenceCeiling). The value is not calibrated and says nothing about
// whether the intent is right; it ignores how many triggers matched.
type ConfidenceEstimator struct {
	draw func() float64
}

func NewConfidenceEstimator() *ConfidenceEstimator {
	return &ConfidenceEstimator{draw: rand.Float64}
}

// NewConfidenceEstimatorWithSource uses draw instead of the global source.
// draw must be safe for concurrent use and should return values in [0, 1).
func NewConfidenceEstimatorWithSource(draw func() float64) *ConfidenceEstimator {
	if draw == nil {
		draw = rand.Float64
	}
	return &ConfidenceEstimator{draw: draw}
}

func (e *ConfidenceEstimator) Estimate(_ entity.IntentLabel, _ bool) float64 {
	x := e.draw()
	if x < 0 || math.IsNaN(x) {
		x = 0
	}
	if x >= 1 {
		x = math.Nextafter(1, 0)
	}

	confidence := ConfidenceFloor + x*(ConfidenceCeiling-ConfidenceFloor)
	if confidence >= ConfidenceCeiling {
		confidence = math.Nextafter(ConfidenceCeiling, 0)
	}
	return confidence
}
