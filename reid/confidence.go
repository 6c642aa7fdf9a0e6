package reid

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// ScorerConfig holds the tunable weighting of the confidence score.
type ScorerConfig struct {
	// CountWeight scales the detection-count term
	CountWeight float64
	// RecencyWeight scales the last-seen recency term
	RecencyWeight float64
	// CohesionWeight scales the gallery cohesion term
	CohesionWeight float64
	// CountSaturation is the detection count at which the count term reaches 0.5
	CountSaturation float64
	// RecencyHalfLife is the age at which the recency term decays to 0.5
	RecencyHalfLife time.Duration
}

// DefaultScorerConfig returns the default confidence weighting.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		CountWeight:     0.4,
		RecencyWeight:   0.3,
		CohesionWeight:  0.3,
		CountSaturation: 10.0,
		RecencyHalfLife: 5 * time.Second,
	}
}

// ConfidenceScorer derives a [0,1] track confidence from identity
// statistics: more observations raise the baseline (saturating), an older
// last-seen lowers it, and a tighter embedding cluster raises it.
type ConfidenceScorer struct {
	cfg       ScorerConfig
	weightSum float64
}

// NewConfidenceScorer creates a scorer with the given weighting. Negative
// weights, a zero weight sum and non-positive saturation constants are
// rejected.
func NewConfidenceScorer(cfg ScorerConfig) (*ConfidenceScorer, error) {
	if cfg.CountWeight < 0 || cfg.RecencyWeight < 0 || cfg.CohesionWeight < 0 {
		return nil, errors.New("confidence weights must be non-negative")
	}
	weightSum := cfg.CountWeight + cfg.RecencyWeight + cfg.CohesionWeight
	if weightSum == 0 {
		return nil, errors.New("at least one confidence weight must be positive")
	}
	if cfg.CountSaturation <= 0 {
		return nil, errors.Errorf("count saturation must be positive, got %f", cfg.CountSaturation)
	}
	if cfg.RecencyHalfLife <= 0 {
		return nil, errors.Errorf("recency half-life must be positive, got %s", cfg.RecencyHalfLife)
	}
	return &ConfidenceScorer{
		cfg:       cfg,
		weightSum: weightSum,
	}, nil
}

// Score returns the confidence for the identity at the given moment.
// The result is always in [0,1] and responds monotonically to each input:
// non-decreasing in detection count and gallery cohesion, non-increasing in
// age since last seen.
func (scorer *ConfidenceScorer) Score(ident *Identity, now time.Time) float64 {
	countTerm := scorer.countTerm(ident.DetectionCount())
	recencyTerm := scorer.recencyTerm(now.Sub(ident.LastSeen()))
	cohesionTerm := scorer.cohesionTerm(ident.Gallery().Cohesion())

	weighted := scorer.cfg.CountWeight*countTerm +
		scorer.cfg.RecencyWeight*recencyTerm +
		scorer.cfg.CohesionWeight*cohesionTerm
	return weighted / scorer.weightSum
}

// countTerm saturates towards 1 as the detection count grows; it equals 0.5
// at CountSaturation detections.
func (scorer *ConfidenceScorer) countTerm(count int) float64 {
	if count <= 0 {
		return 0.0
	}
	c := float64(count)
	return c / (c + scorer.cfg.CountSaturation)
}

// recencyTerm decays exponentially with age, reaching 0.5 at the configured
// half-life. A non-positive age (just seen) scores 1.
func (scorer *ConfidenceScorer) recencyTerm(age time.Duration) float64 {
	if age <= 0 {
		return 1.0
	}
	return math.Exp2(-float64(age) / float64(scorer.cfg.RecencyHalfLife))
}

// cohesionTerm maps mean pairwise cosine similarity from [-1,1] into [0,1].
func (scorer *ConfidenceScorer) cohesionTerm(cohesion float64) float64 {
	t := (cohesion + 1.0) / 2.0
	if t < 0 {
		return 0.0
	}
	if t > 1 {
		return 1.0
	}
	return t
}
