package reid

import (
	"testing"
	"time"
)

func testIdentity(id int64, detections int, lastSeen time.Time, embeddings ...Embedding) *Identity {
	ident := newIdentity(id, DefaultGalleryCapacity)
	for _, e := range embeddings {
		ident.gallery.AddEmbedding(e)
	}
	ident.detections = detections
	ident.lastSeen = lastSeen
	return ident
}

func TestNewConfidenceScorerInvalid(t *testing.T) {
	cfg := DefaultScorerConfig()
	cfg.CountWeight = -1
	if _, err := NewConfidenceScorer(cfg); err == nil {
		t.Error("expected error for negative weight")
	}

	cfg = DefaultScorerConfig()
	cfg.CountWeight = 0
	cfg.RecencyWeight = 0
	cfg.CohesionWeight = 0
	if _, err := NewConfidenceScorer(cfg); err == nil {
		t.Error("expected error for all-zero weights")
	}

	cfg = DefaultScorerConfig()
	cfg.CountSaturation = 0
	if _, err := NewConfidenceScorer(cfg); err == nil {
		t.Error("expected error for zero count saturation")
	}

	cfg = DefaultScorerConfig()
	cfg.RecencyHalfLife = 0
	if _, err := NewConfidenceScorer(cfg); err == nil {
		t.Error("expected error for zero half-life")
	}
}

func TestScoreRange(t *testing.T) {
	scorer, err := NewConfidenceScorer(DefaultScorerConfig())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1000, 0)
	idents := []*Identity{
		testIdentity(1, 0, now),
		testIdentity(2, 1, now, basisEmbedding(0)),
		testIdentity(3, 500, now.Add(-time.Hour), basisEmbedding(0), basisEmbedding(1), basisEmbedding(2)),
	}
	for _, ident := range idents {
		score := scorer.Score(ident, now)
		if score < 0 || score > 1 {
			t.Errorf("score for identity %d out of range: %f", ident.ID(), score)
		}
	}
}

func TestScoreMonotonicInCount(t *testing.T) {
	scorer, err := NewConfidenceScorer(DefaultScorerConfig())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1000, 0)
	few := testIdentity(1, 2, now, basisEmbedding(0))
	many := testIdentity(2, 50, now, basisEmbedding(0))
	if scorer.Score(many, now) <= scorer.Score(few, now) {
		t.Error("more observations must not lower confidence")
	}
}

func TestScoreMonotonicInRecency(t *testing.T) {
	scorer, err := NewConfidenceScorer(DefaultScorerConfig())
	if err != nil {
		t.Fatal(err)
	}
	seen := time.Unix(1000, 0)
	ident := testIdentity(1, 5, seen, basisEmbedding(0))
	fresh := scorer.Score(ident, seen)
	stale := scorer.Score(ident, seen.Add(30*time.Second))
	if stale >= fresh {
		t.Errorf("an older last-seen must lower confidence: fresh %f, stale %f", fresh, stale)
	}
}

func TestScoreMonotonicInCohesion(t *testing.T) {
	scorer, err := NewConfidenceScorer(DefaultScorerConfig())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1000, 0)
	tight := testIdentity(1, 5, now, basisEmbedding(0), basisEmbedding(0), basisEmbedding(0))
	spread := testIdentity(2, 5, now, basisEmbedding(0), basisEmbedding(1), basisEmbedding(2))
	if scorer.Score(tight, now) <= scorer.Score(spread, now) {
		t.Error("a tighter embedding cluster must score higher")
	}
}
