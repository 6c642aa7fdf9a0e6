package reid

import (
	"testing"
)

func TestEmptyIndexSearch(t *testing.T) {
	idx := NewSimilarityIndex()
	results := idx.Search(basisEmbedding(0), 5, 0.0)
	if len(results) != 0 {
		t.Errorf("empty index must return empty results, got %d", len(results))
	}
}

func TestSearchOrdering(t *testing.T) {
	idx := NewSimilarityIndex()
	if err := idx.Insert(1, basisEmbedding(0)); err != nil {
		t.Fatal(err)
	}
	if err := idx.Insert(2, basisEmbedding(1)); err != nil {
		t.Fatal(err)
	}
	// Query leaning towards basis 1
	query := make(Embedding, EmbeddingSize)
	query[0] = 0.6
	query[1] = 0.8
	results := idx.Search(query, 5, 0.0)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].IdentityID != 2 || results[1].IdentityID != 1 {
		t.Errorf("expected order [2 1], got [%d %d]", results[0].IdentityID, results[1].IdentityID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("results must be sorted by descending similarity")
	}
}

func TestSearchTieBreakSmallestID(t *testing.T) {
	idx := NewSimilarityIndex()
	e := basisEmbedding(0)
	if err := idx.Insert(7, e); err != nil {
		t.Fatal(err)
	}
	if err := idx.Insert(3, e); err != nil {
		t.Fatal(err)
	}
	results := idx.Search(e, 2, 0.0)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].IdentityID != 3 {
		t.Errorf("tie must be broken by smallest id, got %d first", results[0].IdentityID)
	}
}

func TestSearchMinSimilarityAndK(t *testing.T) {
	idx := NewSimilarityIndex()
	for i := 0; i < 4; i++ {
		if err := idx.Insert(int64(i+1), basisEmbedding(i)); err != nil {
			t.Fatal(err)
		}
	}
	// Only identity 1 is similar to basis 0
	results := idx.Search(basisEmbedding(0), 10, 0.5)
	if len(results) != 1 || results[0].IdentityID != 1 {
		t.Errorf("expected only identity 1 above 0.5, got %v", results)
	}
	// k limits output
	results = idx.Search(basisEmbedding(0), 2, -1.0)
	if len(results) != 2 {
		t.Errorf("expected k=2 results, got %d", len(results))
	}
	// k=0 yields nothing
	if len(idx.Search(basisEmbedding(0), 0, -1.0)) != 0 {
		t.Error("k=0 must return no results")
	}
}

func TestSearchBestEntryPerIdentity(t *testing.T) {
	idx := NewSimilarityIndex()
	if err := idx.Insert(1, basisEmbedding(0)); err != nil {
		t.Fatal(err)
	}
	if err := idx.Insert(1, basisEmbedding(1)); err != nil {
		t.Fatal(err)
	}
	results := idx.Search(basisEmbedding(0), 10, -1.0)
	if len(results) != 1 {
		t.Fatalf("identity must appear once in results, got %d entries", len(results))
	}
	if results[0].Similarity != 1.0 {
		t.Errorf("best entry must win, expected similarity 1.0, got %f", results[0].Similarity)
	}
}

func TestInsertWrongSize(t *testing.T) {
	idx := NewSimilarityIndex()
	if err := idx.Insert(1, make(Embedding, 16)); err == nil {
		t.Error("expected error for wrong embedding size")
	}
	if idx.Len() != 0 {
		t.Errorf("failed insert must not store an entry, got %d", idx.Len())
	}
}

func TestInsertCopiesEmbedding(t *testing.T) {
	idx := NewSimilarityIndex()
	e := basisEmbedding(0)
	if err := idx.Insert(1, e); err != nil {
		t.Fatal(err)
	}
	// Mutate the caller's slice after insertion
	e[0] = 0.0
	e[1] = 1.0
	results := idx.Search(basisEmbedding(0), 1, 0.5)
	if len(results) != 1 {
		t.Fatal("index must hold its own copy of the inserted embedding")
	}
}

func TestIndexRemove(t *testing.T) {
	idx := NewSimilarityIndex()
	if err := idx.Insert(1, basisEmbedding(0)); err != nil {
		t.Fatal(err)
	}
	if err := idx.Insert(1, basisEmbedding(1)); err != nil {
		t.Fatal(err)
	}
	if err := idx.Insert(2, basisEmbedding(2)); err != nil {
		t.Fatal(err)
	}
	idx.Remove(1)
	if idx.Len() != 1 {
		t.Errorf("expected 1 entry after removal, got %d", idx.Len())
	}
	results := idx.Search(basisEmbedding(0), 10, -1.0)
	for _, r := range results {
		if r.IdentityID == 1 {
			t.Error("removed identity must not appear in search results")
		}
	}
}
