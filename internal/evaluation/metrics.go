package evaluation

import "strings"

// Hit reports whether a ranked entry names one of the ground-truth methods,
// i.e. some ground-truth identifier ends with it. An empty entry is a suffix
// of every identifier and so hits whenever there is ground truth.
func Hit(entry string, groundTruth []string) bool {
	for _, gt := range groundTruth {
		if strings.HasSuffix(gt, entry) {
			return true
		}
	}
	return false
}

// Hits marks every ranked entry as a hit or a miss, in rank order.
func Hits(ranked, groundTruth []string) []bool {
	hits := make([]bool, len(ranked))
	for i, entry := range ranked {
		hits[i] = Hit(entry, groundTruth)
	}
	return hits
}

// AveragePrecision calculates Average Precision: the mean of precision@rank
// taken at every hit position.
func AveragePrecision(hits []bool) float64 {
	relevant := 0
	sumPrecision := 0.0

	for i, hit := range hits {
		if hit {
			relevant++
			sumPrecision += float64(relevant) / float64(i+1)
		}
	}

	if relevant == 0 {
		return 0
	}
	return sumPrecision / float64(relevant)
}

// FirstHitRank returns the 1-indexed rank of the first hit, or 0.
func FirstHitRank(hits []bool) int {
	for i, hit := range hits {
		if hit {
			return i + 1
		}
	}
	return 0
}

// ReciprocalRank calculates 1/rank of the first hit, or 0 when nothing hit.
func ReciprocalRank(hits []bool) float64 {
	if rank := FirstHitRank(hits); rank > 0 {
		return 1.0 / float64(rank)
	}
	return 0
}

// HitWithin reports whether any of the first n entries hit.
func HitWithin(hits []bool, n int) bool {
	if n > len(hits) {
		n = len(hits)
	}
	for i := 0; i < n; i++ {
		if hits[i] {
			return true
		}
	}
	return false
}
