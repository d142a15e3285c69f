// Package rouge implements ROUGE-N and ROUGE-L overlap scores between a
// reference and a candidate token sequence.
//
// Scores follow the conventions of the rouge_score reference implementation:
// clipped n-gram counts, the plain longest common subsequence for ROUGE-L and
// an F-measure with beta = 1. Empty inputs score zero, never NaN.
package rouge

import (
	"fmt"

	"github.com/braintrustdata/overlap-go/ngram"
)

// Score is a precision/recall/F1 triple. Every field lies in [0, 1].
type Score struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// String returns a short human-readable form.
func (s Score) String() string {
	return fmt.Sprintf("P=%.4f R=%.4f F1=%.4f", s.Precision, s.Recall, s.F1)
}

// FMeasure returns the harmonic mean of precision and recall, or 0 when both
// are 0.
func FMeasure(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// newScore divides matches by the candidate and reference sizes, guarding
// against empty sides.
func newScore(matches, refTotal, candTotal int) Score {
	var s Score
	if candTotal > 0 {
		s.Precision = float64(matches) / float64(candTotal)
	}
	if refTotal > 0 {
		s.Recall = float64(matches) / float64(refTotal)
	}
	s.F1 = FMeasure(s.Precision, s.Recall)
	return s
}

// N computes ROUGE-N of order n.
func N(reference, candidate []string, n int) Score {
	refCounts := ngram.Count(reference, n)
	candCounts := ngram.Count(candidate, n)
	overlap := refCounts.Clipped(candCounts)
	return newScore(overlap, refCounts.Total(), candCounts.Total())
}

// L computes ROUGE-L from the longest common subsequence of the two sequences.
func L(reference, candidate []string) Score {
	return newScore(LCS(reference, candidate), len(reference), len(candidate))
}
