package similarity

import "regexp"

var identifierPattern = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)

// identifiers returns the set of identifier-shaped tokens in s.
func identifiers(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, id := range identifierPattern.FindAllString(s, -1) {
		set[id] = struct{}{}
	}
	return set
}

// DataflowMatch is the share of the hypothesis' distinct identifiers that also
// appear in the reference.
//
// It only approximates dataflow agreement: identifiers are compared as sets of
// names, so def-use chains, scoping and keyword-vs-variable distinctions are
// not tracked. A hypothesis without identifiers scores 0.
func DataflowMatch(reference, hypothesis string) float64 {
	refIDs := identifiers(reference)
	hypIDs := identifiers(hypothesis)

	overlap := 0
	for id := range hypIDs {
		if _, ok := refIDs[id]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(max(1, len(hypIDs)))
}

// WeightedDataflowMatch averages DataflowMatch over paired references and
// hypotheses. Pairs are taken up to the shorter slice; an empty batch scores 0.
func WeightedDataflowMatch(references, hypotheses []string) float64 {
	n := min(len(references), len(hypotheses))
	if n == 0 {
		return 0
	}
	score := 0.0
	for i := 0; i < n; i++ {
		score += DataflowMatch(references[i], hypotheses[i])
	}
	return score / float64(n)
}
