package reid

import (
	"image/color"
	"time"

	"github.com/google/uuid"
)

// Identity is a persistent entity representing one physically distinct
// tracked subject across frames. Identity ids are unique, monotonically
// increasing and never reused within a session.
type Identity struct {
	id            int64
	gallery       *Gallery
	lastBBox      Rectangle
	lastSeen      time.Time
	detections    int
	matchedTimes  int
	similaritySum float64
	motion        *motionModel
}

// newIdentity creates an identity with an empty gallery. The caller has
// already validated galleryCapacity.
func newIdentity(id int64, galleryCapacity int) *Identity {
	return &Identity{
		id: id,
		gallery: &Gallery{
			capacity:   galleryCapacity,
			embeddings: make([]Embedding, 0, galleryCapacity),
		},
	}
}

// ID returns the identity's numeric id.
func (ident *Identity) ID() int64 {
	return ident.id
}

// Color returns the identity's display color, assigned deterministically
// from the id.
func (ident *Identity) Color() color.RGBA {
	return ColorFor(ident.id)
}

// Gallery returns the identity's embedding gallery. Be careful: this is not
// a copy but a reference to the identity's own window.
func (ident *Identity) Gallery() *Gallery {
	return ident.gallery
}

// LastBBox returns the last known bounding box.
func (ident *Identity) LastBBox() Rectangle {
	return ident.lastBBox
}

// LastSeen returns the timestamp of the last assigned detection.
func (ident *Identity) LastSeen() time.Time {
	return ident.lastSeen
}

// DetectionCount returns the cumulative number of detections assigned to
// this identity.
func (ident *Identity) DetectionCount() int {
	return ident.detections
}

// AverageSimilarity returns the mean similarity of all matched detections.
// Zero when the identity has only its creating detection.
func (ident *Identity) AverageSimilarity() float64 {
	if ident.matchedTimes == 0 {
		return 0.0
	}
	return ident.similaritySum / float64(ident.matchedTimes)
}

// PredictedBBox returns the motion model's predicted bounding box, or the
// last known box when no motion model is attached.
func (ident *Identity) PredictedBBox() Rectangle {
	if ident.motion == nil {
		return ident.lastBBox
	}
	return ident.motion.PredictedBBox()
}

// touch updates last-seen state and increments the detection count. With a
// motion model attached the stored box is the Kalman-smoothed one; a failed
// filter update falls back to the raw observation.
func (ident *Identity) touch(bbox Rectangle, timestamp time.Time) {
	stored := bbox
	if ident.motion != nil {
		ident.motion.Predict()
		if smoothed, err := ident.motion.Correct(bbox); err == nil {
			stored = smoothed
		}
	}
	ident.lastBBox = stored
	ident.lastSeen = timestamp
	ident.detections++
}

// recordMatch accumulates similarity statistics for a matched detection.
func (ident *Identity) recordMatch(similarity float64) {
	ident.matchedTimes++
	ident.similaritySum += similarity
}

// TrackRecord is the serializable per-identity snapshot handed off to an
// external persistence consumer. The core never stores it anywhere itself.
type TrackRecord struct {
	SessionID        uuid.UUID `json:"session_id"`
	TrackID          int64     `json:"track_id"`
	Color            string    `json:"color"`
	AverageEmbedding []float32 `json:"average_embedding"`
	DetectionCount   int       `json:"detection_count"`
	Confidence       float64   `json:"confidence"`
	LastBBox         Rectangle `json:"last_bbox"`
	PredictedBBox    Rectangle `json:"predicted_bbox"`
	LastSeen         time.Time `json:"last_seen"`
}
