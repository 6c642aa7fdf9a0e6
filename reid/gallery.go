package reid

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// DefaultGalleryCapacity is the default size of the per-identity sliding
// window of recent embeddings.
const DefaultGalleryCapacity = 10

// Gallery is the bounded recent-embedding history owned by one identity.
// Insertion order is preserved; when the window is full the oldest embedding
// is evicted. A Gallery is owned exclusively by its identity and is never
// shared.
type Gallery struct {
	capacity   int
	embeddings []Embedding
}

// NewGallery creates an empty Gallery with the given window capacity.
func NewGallery(capacity int) (*Gallery, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("gallery capacity must be positive, got %d", capacity)
	}
	return &Gallery{
		capacity:   capacity,
		embeddings: make([]Embedding, 0, capacity),
	}, nil
}

// AddEmbedding appends an embedding to the window, evicting the oldest one
// when the window is at capacity.
func (g *Gallery) AddEmbedding(e Embedding) {
	g.embeddings = append(g.embeddings, e)
	if len(g.embeddings) > g.capacity {
		g.embeddings = g.embeddings[1:]
	}
}

// Len returns the number of embeddings currently held.
func (g *Gallery) Len() int {
	return len(g.embeddings)
}

// Capacity returns the window capacity.
func (g *Gallery) Capacity() int {
	return g.capacity
}

// AverageEmbedding returns the element-wise mean of the embeddings currently
// held. An empty gallery yields the zero embedding; callers use it as the
// "no data yet" sentinel.
func (g *Gallery) AverageEmbedding() Embedding {
	return MeanEmbedding(g.embeddings)
}

// Cohesion returns the mean pairwise cosine similarity over the window.
// Tight appearance clusters score close to 1. A gallery with fewer than two
// embeddings is trivially cohesive and scores 1; an empty gallery scores 0.
func (g *Gallery) Cohesion() float64 {
	n := len(g.embeddings)
	if n == 0 {
		return 0.0
	}
	if n == 1 {
		return 1.0
	}
	pairs := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, g.embeddings[i].Cosine(g.embeddings[j]))
		}
	}
	return stat.Mean(pairs, nil)
}
