package reid

import (
	"github.com/pkg/errors"
)

// SearchResult is a single k-nearest-neighbor hit.
type SearchResult struct {
	IdentityID int64
	Similarity float64
}

type indexEntry struct {
	id        int64
	embedding Embedding
}

// SimilarityIndex is an in-memory store of (identity, embedding) pairs
// supporting k-nearest-neighbor lookup by cosine similarity. An identity may
// own multiple entries; search reports the best entry per identity.
type SimilarityIndex struct {
	entries []indexEntry
}

// NewSimilarityIndex creates an empty SimilarityIndex.
func NewSimilarityIndex() *SimilarityIndex {
	return &SimilarityIndex{
		entries: make([]indexEntry, 0),
	}
}

// Insert adds an (identity, embedding) entry. The embedding is copied, so
// later mutation of the caller's slice does not affect the index.
func (idx *SimilarityIndex) Insert(id int64, e Embedding) error {
	if len(e) != EmbeddingSize {
		return errors.Errorf("can't insert embedding of size %d, expected %d", len(e), EmbeddingSize)
	}
	stored := make(Embedding, EmbeddingSize)
	copy(stored, e)
	idx.entries = append(idx.entries, indexEntry{id: id, embedding: stored})
	return nil
}

// Remove drops every entry owned by the given identity.
func (idx *SimilarityIndex) Remove(id int64) {
	kept := idx.entries[:0]
	for _, entry := range idx.entries {
		if entry.id != id {
			kept = append(kept, entry)
		}
	}
	idx.entries = kept
}

// Len returns the number of stored entries.
func (idx *SimilarityIndex) Len() int {
	return len(idx.entries)
}

// Search returns up to k identities whose best entry has cosine similarity
// greater than or equal to minSimilarity against the query, ordered by
// descending similarity with ties broken by smallest identity id. An empty
// index yields an empty result. The query embedding is never mutated.
func (idx *SimilarityIndex) Search(query Embedding, k int, minSimilarity float64) []SearchResult {
	results := make([]SearchResult, 0)
	if k <= 0 || len(idx.entries) == 0 {
		return results
	}

	// Best entry per identity
	best := make(map[int64]float64)
	for _, entry := range idx.entries {
		sim := query.Cosine(entry.embedding)
		if prev, ok := best[entry.id]; !ok || sim > prev {
			best[entry.id] = sim
		}
	}

	pq := make(similarityHeap, 0, len(best))
	for id, sim := range best {
		if sim < minSimilarity {
			continue
		}
		pq.Push(&scoredIdentity{id: id, similarity: sim})
	}

	for pq.Len() > 0 && len(results) < k {
		top := pq.Pop()
		results = append(results, SearchResult{
			IdentityID: top.id,
			Similarity: top.similarity,
		})
	}
	return results
}
