package reid

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultSimilarityThreshold is the minimum cosine similarity for a regular
// (non-forced) match.
const DefaultSimilarityThreshold = 0.7

// ErrThresholdOutOfRange is returned when a similarity threshold outside
// [0,1] is supplied. The previous threshold stays in effect.
var ErrThresholdOutOfRange = errors.New("similarity threshold must be in [0,1]")

// Detection is one detector output for one frame: a bounding box in pixel
// units (not guaranteed to lie within frame bounds) and a confidence score
// in [0,1]. Detections are owned by the caller and not retained.
type Detection struct {
	BBox  Rectangle
	Score float64
}

// Assignment is the tracker's decision for one input detection.
type Assignment struct {
	// IdentityID is the identity the detection was assigned to
	IdentityID int64
	// Created is true when the identity was created for this detection
	Created bool
	// Forced is true when the assignment was made below the similarity
	// threshold because identity capacity was exhausted
	Forced bool
	// Similarity is the gallery-average similarity of the assignment.
	// Zero for created identities.
	Similarity float64
	// DetectionCount is the identity's detection count after this assignment
	DetectionCount int
}

// subImager is satisfied by the stdlib image types that support cropping.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// TrackerOption configures optional Tracker behavior.
type TrackerOption func(*Tracker)

// WithSimilarityThreshold overrides the default similarity threshold.
// Values outside [0,1] are rejected by NewTracker.
func WithSimilarityThreshold(threshold float64) TrackerOption {
	return func(t *Tracker) {
		t.threshold = threshold
	}
}

// WithGalleryCapacity overrides the per-identity embedding window size.
func WithGalleryCapacity(capacity int) TrackerOption {
	return func(t *Tracker) {
		t.galleryCapacity = capacity
	}
}

// WithMatchingAlgorithm selects the per-frame assignment algorithm.
func WithMatchingAlgorithm(algorithm MatchingAlgorithm) TrackerOption {
	return func(t *Tracker) {
		t.algorithm = algorithm
	}
}

// WithMotionModel attaches a Kalman bounding box motion model to every
// identity, using the given time step (e.g. 1/25.0 for 25 fps footage).
func WithMotionModel(dt float64) TrackerOption {
	return func(t *Tracker) {
		t.useMotion = true
		t.motionDT = dt
	}
}

// WithScorerConfig overrides the confidence scoring weights.
func WithScorerConfig(cfg ScorerConfig) TrackerOption {
	return func(t *Tracker) {
		t.scorerCfg = cfg
	}
}

// Tracker maintains a stable set of long-lived identities over a stream of
// per-frame detections, under a hard cap on the number of simultaneously
// tracked identities.
//
// A Tracker is logically single-threaded per stream: frame N must be fully
// processed before frame N+1, since assignment decisions depend on gallery
// state. One tracker per stream needs no external synchronization; callers
// sharing a tracker across goroutines are covered by the internal mutex
// around every mutating operation.
type Tracker struct {
	mu sync.Mutex
	// sessionID identifies the owning stream in emitted records
	sessionID uuid.UUID
	extractor Extractor
	index     *SimilarityIndex
	// identities keyed by id, with order holding ids in creation order
	// (ascending, ids are never reused)
	identities map[int64]*Identity
	order      []int64
	nextID     int64

	maxIdentities   int
	galleryCapacity int
	threshold       float64
	algorithm       MatchingAlgorithm
	useMotion       bool
	motionDT        float64

	scorerCfg ScorerConfig
	scorer    *ConfidenceScorer

	stats TrackerStats
}

// NewTracker creates a tracker with the given identity capacity and embedding
// extractor. Defaults: similarity threshold 0.7, gallery capacity 10, greedy
// matching, no motion model, default confidence weighting.
func NewTracker(maxIdentities int, extractor Extractor, opts ...TrackerOption) (*Tracker, error) {
	if maxIdentities <= 0 {
		return nil, errors.Errorf("identity capacity must be positive, got %d", maxIdentities)
	}
	if extractor == nil {
		return nil, errors.New("extractor must not be nil")
	}
	t := &Tracker{
		sessionID:       uuid.New(),
		extractor:       extractor,
		index:           NewSimilarityIndex(),
		identities:      make(map[int64]*Identity),
		order:           make([]int64, 0, maxIdentities),
		nextID:          1,
		maxIdentities:   maxIdentities,
		galleryCapacity: DefaultGalleryCapacity,
		threshold:       DefaultSimilarityThreshold,
		algorithm:       MatchingAlgorithmGreedy,
		scorerCfg:       DefaultScorerConfig(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.threshold < 0 || t.threshold > 1 {
		return nil, ErrThresholdOutOfRange
	}
	if t.galleryCapacity <= 0 {
		return nil, errors.Errorf("gallery capacity must be positive, got %d", t.galleryCapacity)
	}
	if t.useMotion && t.motionDT <= 0 {
		return nil, errors.Errorf("motion model time step must be positive, got %f", t.motionDT)
	}
	scorer, err := NewConfidenceScorer(t.scorerCfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create confidence scorer")
	}
	t.scorer = scorer
	return t, nil
}

// SessionID returns the identifier stamped into this tracker's records.
func (t *Tracker) SessionID() uuid.UUID {
	return t.sessionID
}

// SimilarityThreshold returns the current similarity threshold.
func (t *Tracker) SimilarityThreshold() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.threshold
}

// SetSimilarityThreshold replaces the similarity threshold. A value outside
// [0,1] is rejected with ErrThresholdOutOfRange and the previous threshold
// stays in effect.
func (t *Tracker) SetSimilarityThreshold(threshold float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if threshold < 0 || threshold > 1 {
		return ErrThresholdOutOfRange
	}
	t.threshold = threshold
	return nil
}

// IdentityCount returns the number of live identities.
func (t *Tracker) IdentityCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.identities)
}

// IdentityIDs returns the live identity ids in ascending order.
func (t *Tracker) IdentityIDs() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int64, len(t.order))
	copy(ids, t.order)
	return ids
}

// Stats returns a copy of the accumulated assignment statistics.
func (t *Tracker) Stats() TrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Update processes one frame's detections at the current wall clock.
// See UpdateAt.
func (t *Tracker) Update(detections []Detection, frame image.Image) ([]Assignment, error) {
	return t.UpdateAt(detections, frame, time.Now())
}

// UpdateAt processes one frame's detections, producing exactly one assignment
// per input detection in input order. Each detection either extends an
// existing identity or creates a new one; no detection is dropped. The number
// of live identities never exceeds the configured capacity.
func (t *Tracker) UpdateAt(detections []Detection, frame image.Image, now time.Time) ([]Assignment, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	embeddings := make([]Embedding, len(detections))
	for i := range detections {
		embeddings[i] = t.embed(detections[i], frame)
	}

	var assignments []Assignment
	switch t.algorithm {
	case MatchingAlgorithmHungarian:
		assignments = t.assignExclusive(detections, embeddings, now)
	default:
		assignments = make([]Assignment, len(detections))
		for i := range detections {
			assignments[i] = t.assignDetection(detections[i], embeddings[i], now)
		}
	}

	for i := range assignments {
		t.stats.TotalDetections++
		err := t.index.Insert(assignments[i].IdentityID, embeddings[i])
		if err != nil {
			return assignments, errors.Wrapf(err, "Can't index embedding for identity %d", assignments[i].IdentityID)
		}
	}
	return assignments, nil
}

// embed crops the detection out of the frame and extracts its appearance
// embedding. Degenerate crops (empty after clamping to frame bounds) yield
// the zero embedding rather than failing; such embeddings still participate
// in matching but have zero similarity to any real appearance.
func (t *Tracker) embed(det Detection, frame image.Image) Embedding {
	if frame == nil {
		return ZeroEmbedding()
	}
	clamped := det.BBox.ClampTo(frame.Bounds())
	if clamped.Empty() {
		return ZeroEmbedding()
	}
	cropper, ok := frame.(subImager)
	if !ok {
		return ZeroEmbedding()
	}
	e := t.extractor.Extract(cropper.SubImage(clamped.ToImageRect()))
	if len(e) != EmbeddingSize {
		return ZeroEmbedding()
	}
	if e.IsZero() || e.IsNormalized() {
		return e
	}
	return e.Normalized()
}

// bestMatch returns the live identity whose gallery average is most similar
// to the embedding. Ties are broken by lowest identity id. ok is false only
// when there are no live identities.
func (t *Tracker) bestMatch(e Embedding) (bestID int64, bestSimilarity float64, ok bool) {
	bestSimilarity = -2.0
	for _, id := range t.order {
		similarity := e.Cosine(t.identities[id].gallery.AverageEmbedding())
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			bestID = id
			ok = true
		}
	}
	if !ok {
		bestSimilarity = 0.0
	}
	return bestID, bestSimilarity, ok
}

// assignDetection applies the greedy per-detection policy: below capacity a
// detection matches when its best similarity clears the threshold and creates
// a new identity otherwise; at capacity it is always assigned to the best
// candidate, as a forced match when below the threshold.
func (t *Tracker) assignDetection(det Detection, e Embedding, now time.Time) Assignment {
	bestID, bestSimilarity, ok := t.bestMatch(e)
	if len(t.identities) < t.maxIdentities {
		if ok && bestSimilarity >= t.threshold {
			return t.assignTo(bestID, det, e, bestSimilarity, now)
		}
		return t.createIdentity(det, e, now)
	}
	if !ok {
		// Every identity receives an embedding at creation, so a full tracker
		// with no candidate cannot occur. Recurrence is a defect, not a code path.
		panic("no candidate identity at full capacity: should be impossible")
	}
	return t.assignTo(bestID, det, e, bestSimilarity, now)
}

// assignExclusive applies the Hungarian one-to-one policy for a whole frame:
// optimally paired detections clearing the threshold are matched, the rest
// go through the create-or-force policy in input order.
func (t *Tracker) assignExclusive(detections []Detection, embeddings []Embedding, now time.Time) []Assignment {
	assignments := make([]Assignment, len(detections))

	liveIDs := make([]int64, len(t.order))
	copy(liveIDs, t.order)
	var matrix [][]float64
	var matches map[int]int
	if len(liveIDs) > 0 && len(detections) > 0 {
		averages := make([]Embedding, len(liveIDs))
		for j, id := range liveIDs {
			averages[j] = t.identities[id].gallery.AverageEmbedding()
		}
		matrix = make([][]float64, len(detections))
		for i := range detections {
			row := make([]float64, len(liveIDs))
			for j := range liveIDs {
				row[j] = embeddings[i].Cosine(averages[j])
			}
			matrix[i] = row
		}
		matches = solveAssignment(matrix)
	}

	for i := range detections {
		if j, paired := matches[i]; paired && matrix[i][j] >= t.threshold {
			assignments[i] = t.assignTo(liveIDs[j], detections[i], embeddings[i], matrix[i][j], now)
			continue
		}
		if len(t.identities) < t.maxIdentities {
			assignments[i] = t.createIdentity(detections[i], embeddings[i], now)
			continue
		}
		bestID, bestSimilarity, ok := t.bestMatch(embeddings[i])
		if !ok {
			panic("no candidate identity at full capacity: should be impossible")
		}
		assignments[i] = t.assignTo(bestID, detections[i], embeddings[i], bestSimilarity, now)
	}
	return assignments
}

// assignTo extends an existing identity with the detection.
func (t *Tracker) assignTo(id int64, det Detection, e Embedding, similarity float64, now time.Time) Assignment {
	ident := t.identities[id]
	ident.gallery.AddEmbedding(e)
	ident.touch(det.BBox, now)
	ident.recordMatch(similarity)
	forced := similarity < t.threshold
	if forced {
		t.stats.ForcedMatches++
	} else {
		t.stats.Matches++
	}
	return Assignment{
		IdentityID:     id,
		Forced:         forced,
		Similarity:     similarity,
		DetectionCount: ident.detections,
	}
}

// createIdentity registers a new identity seeded with the detection.
func (t *Tracker) createIdentity(det Detection, e Embedding, now time.Time) Assignment {
	id := t.nextID
	t.nextID++
	ident := newIdentity(id, t.galleryCapacity)
	if t.useMotion {
		ident.motion = newMotionModel(det.BBox, t.motionDT)
	}
	ident.gallery.AddEmbedding(e)
	ident.touch(det.BBox, now)
	t.identities[id] = ident
	t.order = append(t.order, id)
	t.stats.Created++
	return Assignment{
		IdentityID:     id,
		Created:        true,
		DetectionCount: ident.detections,
	}
}

// Search performs a k-nearest-neighbor lookup over every embedding observed
// so far, across all identities.
func (t *Tracker) Search(query Embedding, k int, minSimilarity float64) []SearchResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index.Search(query, k, minSimilarity)
}

// PruneInactive removes identities not seen for longer than maxAge and
// returns their ids in ascending order. The core never prunes on its own;
// inactivity cleanup is the caller's policy.
func (t *Tracker) PruneInactive(now time.Time, maxAge time.Duration) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := make([]int64, 0)
	kept := t.order[:0]
	for _, id := range t.order {
		if now.Sub(t.identities[id].lastSeen) > maxAge {
			delete(t.identities, id)
			t.index.Remove(id)
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
	return removed
}

// Snapshot returns the persistence record for one identity at the current
// wall clock.
func (t *Tracker) Snapshot(id int64) (TrackRecord, error) {
	return t.SnapshotAt(id, time.Now())
}

// SnapshotAt returns the persistence record for one identity at the given
// moment.
func (t *Tracker) SnapshotAt(id int64, now time.Time) (TrackRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ident, ok := t.identities[id]
	if !ok {
		return TrackRecord{}, errors.Errorf("no identity with id %d", id)
	}
	return t.record(ident, now), nil
}

// Snapshots returns persistence records for every live identity in ascending
// id order, evaluated at the given moment.
func (t *Tracker) Snapshots(now time.Time) []TrackRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	records := make([]TrackRecord, 0, len(t.order))
	for _, id := range t.order {
		records = append(records, t.record(t.identities[id], now))
	}
	return records
}

// record builds a TrackRecord. Callers hold the tracker mutex.
func (t *Tracker) record(ident *Identity, now time.Time) TrackRecord {
	return TrackRecord{
		SessionID:        t.sessionID,
		TrackID:          ident.id,
		Color:            ColorHex(ident.id),
		AverageEmbedding: ident.gallery.AverageEmbedding(),
		DetectionCount:   ident.detections,
		Confidence:       t.scorer.Score(ident, now),
		LastBBox:         ident.lastBBox,
		PredictedBBox:    ident.PredictedBBox(),
		LastSeen:         ident.lastSeen,
	}
}
