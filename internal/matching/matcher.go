package matching

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Pair is a candidate identifier and the ground-truth method it resolved to.
type Pair struct {
	Candidate   string `json:"candidate_key"`
	GroundTruth string `json:"ground_truth_method"`
}

// Match resolves candidate to at most one ground-truth identifier.
//
// The candidate's last two segments (Class.method) are matched as a suffix of
// each ground-truth name; failing that, its last segment is compared with each
// ground-truth method name. Among several matches the lexicographically first
// wins, so results are reproducible even when classes or overloads share a
// name. ok is false when nothing matches.
func Match(candidate string, groundTruth []string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", false
	}

	suffix := LastSegments(candidate, 2)
	if m, ok := firstMatch(groundTruth, func(gt string) bool {
		return strings.HasSuffix(gt, suffix)
	}); ok {
		return m, true
	}

	method := MethodName(candidate)
	return firstMatch(groundTruth, func(gt string) bool {
		return MethodName(gt) == method
	})
}

func firstMatch(groundTruth []string, pred func(string) bool) (string, bool) {
	best, found := "", false
	for _, gt := range groundTruth {
		if pred(gt) && (!found || gt < best) {
			best, found = gt, true
		}
	}
	return best, found
}

// MatchAll resolves every candidate and returns the matched pairs ordered by
// candidate. Unmatched candidates are returned separately, also sorted.
func MatchAll(candidates []string, groundTruth []string) (pairs []Pair, unmatched []string) {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	for _, c := range sorted {
		if gt, ok := Match(c, groundTruth); ok {
			pairs = append(pairs, Pair{Candidate: c, GroundTruth: gt})
		} else {
			unmatched = append(unmatched, c)
		}
	}
	return pairs, unmatched
}

// Nearest returns the ground-truth identifier whose Class.method tail is most
// similar to the candidate's by Jaro-Winkler similarity. It only feeds
// diagnostics for unmatched candidates and never changes what Match returns.
func Nearest(candidate string, groundTruth []string) (string, float32) {
	want := LastSegments(strings.TrimSpace(candidate), 2)

	best, bestScore := "", float32(-1)
	for _, gt := range groundTruth {
		score, err := edlib.StringsSimilarity(want, LastSegments(gt, 2), edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore || (score == bestScore && gt < best) {
			best, bestScore = gt, score
		}
	}
	if bestScore < 0 {
		return "", 0
	}
	return best, bestScore
}
