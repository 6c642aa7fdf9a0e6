package reid

// TrackerStats accumulates assignment outcomes over the life of a tracker.
// The counters validate threshold and capacity tuning: a high force rate
// means capacity is too low or the threshold too high for the footage.
type TrackerStats struct {
	// TotalDetections is the number of detections processed
	TotalDetections int
	// Matches is the number of assignments at or above the similarity threshold
	Matches int
	// ForcedMatches is the number of below-threshold assignments made because
	// identity capacity was exhausted
	ForcedMatches int
	// Created is the number of identities created
	Created int
}

// MatchRate returns the fraction of detections matched at or above the
// threshold. Zero when nothing has been processed.
func (s TrackerStats) MatchRate() float64 {
	if s.TotalDetections == 0 {
		return 0.0
	}
	return float64(s.Matches) / float64(s.TotalDetections)
}

// ForceRate returns the fraction of detections assigned via forced match.
// Zero when nothing has been processed.
func (s TrackerStats) ForceRate() float64 {
	if s.TotalDetections == 0 {
		return 0.0
	}
	return float64(s.ForcedMatches) / float64(s.TotalDetections)
}
