// Package similarity scores generated code against reference code with a
// CodeBLEU-style blend of lexical precision, n-gram overlap and identifier
// overlap.
package similarity

import (
	"fmt"
	"strings"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

// Weights are the composite weights in slot order: sentence precision,
// n-gram overlap, structural similarity, identifier overlap.
//
// The structural slot (index 2) is never read because structural similarity
// is not computed; identifier overlap is weighted by index 3. Weight tuples
// from earlier runs depend on this layout.
type Weights [4]float64

// DefaultWeights splits the score evenly across the three computed components.
var DefaultWeights = Weights{1.0 / 3, 1.0 / 3, 0, 1.0 / 3}

// Score is the component breakdown of one comparison.
type Score struct {
	BLEU     float64 `json:"bleu"`
	Ngram    float64 `json:"ngram"`
	Syntax   float64 `json:"syntax"` // always 0, no structural comparison for this target
	Dataflow float64 `json:"dataflow"`
	CodeBLEU float64 `json:"codebleu"`
}

// Scorer computes composite scores with fixed weights.
type Scorer struct {
	weights   Weights
	precision PrecisionFunc
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithPrecision replaces the sentence-level precision metric.
func WithPrecision(fn PrecisionFunc) Option {
	return func(s *Scorer) {
		if fn != nil {
			s.precision = fn
		}
	}
}

// NewScorer creates a scorer. Weights are used as given; they are not
// required to sum to 1.
func NewScorer(weights Weights, opts ...Option) *Scorer {
	s := &Scorer{
		weights:   weights,
		precision: SentenceBLEU,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the scorer's weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Compute scores a batch. references[i] holds the acceptable references for
// hypotheses[i]; all of them feed the precision metric, only the first feeds
// the overlap scorers.
func (s *Scorer) Compute(references [][]string, hypotheses []string) (Score, error) {
	if len(references) != len(hypotheses) {
		return Score{}, errors.ValidationError(
			fmt.Sprintf("mismatch in references and hypotheses length: %d != %d", len(references), len(hypotheses)))
	}
	if len(hypotheses) == 0 {
		return Score{}, errors.ValidationError("empty batch")
	}

	refsFlat := make([]string, len(references))
	hypsFlat := make([]string, len(hypotheses))
	precisionSum := 0.0
	for i, refs := range references {
		if len(refs) == 0 {
			return Score{}, errors.ValidationError(fmt.Sprintf("hypothesis %d has no reference", i))
		}

		tokenized := make([][]string, len(refs))
		for j, ref := range refs {
			tokenized[j] = strings.Fields(ref)
		}
		hypTokens := strings.Fields(hypotheses[i])
		precisionSum += s.precision(tokenized, hypTokens)

		refsFlat[i] = strings.Join(tokenized[0], " ")
		hypsFlat[i] = strings.Join(hypTokens, " ")
	}

	score := Score{
		BLEU:     precisionSum / float64(len(hypotheses)),
		Ngram:    WeightedNgramMatch(refsFlat, hypsFlat),
		Dataflow: WeightedDataflowMatch(refsFlat, hypsFlat),
	}
	score.CodeBLEU = s.weights[0]*score.BLEU +
		s.weights[1]*score.Ngram +
		s.weights[3]*score.Dataflow

	return score, nil
}

// ScorePair scores a single candidate body against a single reference body.
func (s *Scorer) ScorePair(candidate, reference string) (Score, error) {
	return s.Compute(
		[][]string{{strings.TrimSpace(reference)}},
		[]string{strings.TrimSpace(candidate)},
	)
}
