package reid

import (
	"image"
	"math/rand"
)

// Extractor produces an appearance embedding for a single object crop.
// Implementations wrap an actual re-identification model (ONNX, OpenVINO and
// so on) living outside this package.
//
// Implementations must return the zero embedding, never an error, for an
// empty or otherwise unusable crop. The tracker relies on this degraded-input
// contract: a zero embedding participates in matching but has zero similarity
// to any real appearance.
type Extractor interface {
	Extract(crop image.Image) Embedding
}

// MockExtractor is an Extractor substitute producing random unit vectors from
// a seeded source. It is meant for pipelines where the re-identification
// model is unavailable and for deterministic tests: the same seed yields the
// same sequence of embeddings.
type MockExtractor struct {
	rng *rand.Rand
}

// NewMockExtractor creates a MockExtractor with the given seed.
func NewMockExtractor(seed int64) *MockExtractor {
	return &MockExtractor{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Extract returns the next random L2-normalized embedding from the seeded
// sequence. A nil or empty crop yields the zero embedding.
func (m *MockExtractor) Extract(crop image.Image) Embedding {
	if crop == nil || crop.Bounds().Empty() {
		return ZeroEmbedding()
	}
	e := make(Embedding, EmbeddingSize)
	for i := range e {
		e[i] = float32(m.rng.NormFloat64())
	}
	return e.Normalized()
}
