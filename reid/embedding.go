package reid

import (
	"math"

	"github.com/pkg/errors"
)

// EmbeddingSize is the dimensionality of appearance embeddings produced by
// the extractor.
const EmbeddingSize = 512

// normTolerance is the allowed deviation from unit length for an embedding
// to be considered L2-normalized.
const normTolerance = 1e-5

// Embedding is a fixed-length appearance feature vector. Embeddings are
// expected to be L2-normalized, so cosine similarity between two of them
// reduces to a plain dot product.
type Embedding []float32

// ZeroEmbedding returns an all-zero embedding. The zero embedding is the
// sentinel for degenerate crops and for empty galleries.
func ZeroEmbedding() Embedding {
	return make(Embedding, EmbeddingSize)
}

// NewEmbedding copies the given components into a new Embedding.
func NewEmbedding(values []float32) (Embedding, error) {
	if len(values) != EmbeddingSize {
		return nil, errors.Errorf("embedding must have %d components, got %d", EmbeddingSize, len(values))
	}
	e := make(Embedding, EmbeddingSize)
	copy(e, values)
	return e, nil
}

// Norm returns the L2 norm of the embedding.
func (e Embedding) Norm() float64 {
	sum := 0.0
	for _, v := range e {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// IsZero reports whether every component of the embedding is zero.
func (e Embedding) IsZero() bool {
	for _, v := range e {
		if v != 0 {
			return false
		}
	}
	return true
}

// IsNormalized reports whether the embedding has unit length within tolerance.
func (e Embedding) IsNormalized() bool {
	return math.Abs(e.Norm()-1.0) <= normTolerance
}

// Normalized returns an L2-normalized copy of the embedding.
// A zero embedding is returned as a zero copy since it has no direction.
func (e Embedding) Normalized() Embedding {
	out := make(Embedding, len(e))
	norm := e.Norm()
	if norm == 0 {
		return out
	}
	inv := 1.0 / norm
	for i, v := range e {
		out[i] = float32(float64(v) * inv)
	}
	return out
}

// Cosine returns the cosine similarity between two embeddings. Both operands
// are assumed to be L2-normalized, which makes this a dot product. A zero
// embedding yields zero similarity against anything.
func (e Embedding) Cosine(other Embedding) float64 {
	n := len(e)
	if len(other) < n {
		n = len(other)
	}
	dot := 0.0
	for i := 0; i < n; i++ {
		dot += float64(e[i]) * float64(other[i])
	}
	return dot
}

// MeanEmbedding returns the element-wise mean of the given embeddings.
// An empty input yields the zero embedding.
func MeanEmbedding(embeddings []Embedding) Embedding {
	mean := ZeroEmbedding()
	if len(embeddings) == 0 {
		return mean
	}
	acc := make([]float64, EmbeddingSize)
	for _, e := range embeddings {
		for i := 0; i < EmbeddingSize && i < len(e); i++ {
			acc[i] += float64(e[i])
		}
	}
	inv := 1.0 / float64(len(embeddings))
	for i := range acc {
		mean[i] = float32(acc[i] * inv)
	}
	return mean
}
