package similarity

import (
	"math"
	"strings"
)

// smoothingK is the constant of the length-aware smoothing used for n-gram
// orders without a single match.
const smoothingK = 5.0

// PrecisionFunc scores one tokenized hypothesis against its tokenized
// references. The composite scorer takes it as a collaborator so another
// sentence-level precision metric can be swapped in.
type PrecisionFunc func(references [][]string, hypothesis []string) float64

// SentenceBLEU is sentence-level BLEU with uniform weights over 1..4-grams,
// the closest-reference brevity penalty and length-aware smoothing: the i-th
// order with zero matches gets the numerator 1/(2^i * k / ln(len(hypothesis))).
// A hypothesis with no unigram match scores 0.
func SentenceBLEU(references [][]string, hypothesis []string) float64 {
	hypLen := len(hypothesis)
	numerators := make([]int, maxOrder)
	denominators := make([]int, maxOrder)
	for n := 1; n <= maxOrder; n++ {
		numerators[n-1], denominators[n-1] = modifiedPrecision(references, hypothesis, n)
	}

	if numerators[0] == 0 {
		return 0
	}

	precisions := make([]float64, maxOrder)
	increment := 1
	for i := range precisions {
		if numerators[i] == 0 && hypLen > 1 {
			numerator := 1 / (math.Pow(2, float64(increment)) * smoothingK / math.Log(float64(hypLen)))
			precisions[i] = numerator / float64(denominators[i])
			increment++
			continue
		}
		precisions[i] = float64(numerators[i]) / float64(denominators[i])
	}

	weight := 1.0 / maxOrder
	logSum := 0.0
	for _, p := range precisions {
		if p > 0 {
			logSum += weight * math.Log(p)
		}
	}

	return brevityPenalty(closestRefLength(references, hypLen), hypLen) * math.Exp(logSum)
}

// modifiedPrecision returns the clipped n-gram match count of hypothesis and
// its n-gram total (floored at 1).
func modifiedPrecision(references [][]string, hypothesis []string, n int) (int, int) {
	counts := orderCounts(hypothesis, n)

	maxRef := make(map[string]int, len(counts))
	for _, ref := range references {
		for gram, c := range orderCounts(ref, n) {
			if _, wanted := counts[gram]; wanted && c > maxRef[gram] {
				maxRef[gram] = c
			}
		}
	}

	clipped, total := 0, 0
	for gram, c := range counts {
		total += c
		clipped += min(c, maxRef[gram])
	}
	return clipped, max(1, total)
}

func orderCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}

// closestRefLength picks the reference length nearest to hypLen, preferring
// the shorter one on ties.
func closestRefLength(references [][]string, hypLen int) int {
	best, bestDiff := 0, math.MaxInt
	for _, ref := range references {
		l := len(ref)
		diff := l - hypLen
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff || (diff == bestDiff && l < best) {
			best, bestDiff = l, diff
		}
	}
	return best
}

func brevityPenalty(refLen, hypLen int) float64 {
	switch {
	case hypLen > refLen:
		return 1
	case hypLen == 0:
		return 0
	default:
		return math.Exp(1 - float64(refLen)/float64(hypLen))
	}
}
