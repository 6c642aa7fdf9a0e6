package reid

import (
	hungarian "github.com/arthurkushman/go-hungarian"
)

// MatchingAlgorithm selects how one frame's detections are assigned to
// identities.
type MatchingAlgorithm uint16

const (
	// MatchingAlgorithmGreedy processes detections sequentially in input
	// order. Gallery updates are visible immediately, so a later detection in
	// the same frame can match an identity created or updated earlier in that
	// frame. This is the default and the reference behavior.
	MatchingAlgorithmGreedy MatchingAlgorithm = iota
	// MatchingAlgorithmHungarian performs optimal one-to-one assignment
	// (Kuhn-Munkres) between the frame's detections and the live identities.
	// Within a frame at most one detection is matched per identity; leftovers
	// go through the usual create-or-force policy.
	MatchingAlgorithmHungarian
)

// solveAssignment runs the Hungarian algorithm over a detections x identities
// similarity matrix and returns detection index -> identity index pairs.
// Rectangular matrices are padded to square with zero similarity.
func solveAssignment(similarity [][]float64) map[int]int {
	matches := make(map[int]int)
	numDetections := len(similarity)
	if numDetections == 0 {
		return matches
	}
	numIdentities := len(similarity[0])
	if numIdentities == 0 {
		return matches
	}

	padded := similarity
	if numDetections != numIdentities {
		paddedSize := maxInt(numDetections, numIdentities)
		padded = make([][]float64, paddedSize)
		for i := 0; i < paddedSize; i++ {
			padded[i] = make([]float64, paddedSize)
		}
		for i := 0; i < numDetections; i++ {
			copy(padded[i], similarity[i])
		}
	}

	assignmentsMap := hungarian.SolveMax(padded)
	for detectionIndex, rowMap := range assignmentsMap {
		for identityIndex := range rowMap {
			if detectionIndex < numDetections && identityIndex < numIdentities {
				matches[detectionIndex] = identityIndex
			}
			break
		}
	}
	return matches
}
