package similarity

import "strings"

// maxOrder is the longest n-gram counted by the overlap scorers.
const maxOrder = 4

// ngramCounts returns the multiset of contiguous n-grams of tokens for
// n = 1..maxOrder. Keys join tokens with a single space, which cannot occur
// inside a whitespace-split token, so n-grams of different order never collide.
func ngramCounts(tokens []string) map[string]int {
	counts := make(map[string]int)
	for n := 1; n <= maxOrder; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			counts[strings.Join(tokens[i:i+n], " ")]++
		}
	}
	return counts
}

// NgramMatch is the fraction of the hypothesis' 1..4-gram occurrences that are
// also present in the reference, clipped per n-gram to the reference count.
// Both strings are whitespace-tokenized. A hypothesis without n-grams scores 0.
func NgramMatch(reference, hypothesis string) float64 {
	refCounts := ngramCounts(strings.Fields(reference))
	hypCounts := ngramCounts(strings.Fields(hypothesis))

	overlap, total := 0, 0
	for gram, hc := range hypCounts {
		total += hc
		overlap += min(hc, refCounts[gram])
	}
	return float64(overlap) / float64(max(1, total))
}

// WeightedNgramMatch averages NgramMatch over paired references and
// hypotheses. Pairs are taken up to the shorter slice; an empty batch scores 0.
func WeightedNgramMatch(references, hypotheses []string) float64 {
	n := min(len(references), len(hypotheses))
	if n == 0 {
		return 0
	}
	score := 0.0
	for i := 0; i < n; i++ {
		score += NgramMatch(references[i], hypotheses[i])
	}
	return score / float64(n)
}
