// Package bleu implements single-reference, sentence-level BLEU.
//
// The default configuration is BLEU-4 with uniform weights and no smoothing,
// matching NLTK's sentence_bleu. Without smoothing any order with zero matches
// makes the whole score zero, so short or loosely matching candidates commonly
// score 0. Smoothing is available only as an explicit option.
package bleu

import (
	"fmt"
	"math"
	"strings"

	"github.com/braintrustdata/overlap-go/ngram"
)

// DefaultMaxOrder is the highest n-gram order used by default (BLEU-4).
const DefaultMaxOrder = 4

// Epsilon is the numerator substituted for zero matches by SmoothingEpsilon.
const Epsilon = 0.1

// Smoothing selects how zero n-gram matches are handled.
type Smoothing int

const (
	// SmoothingNone leaves zero precisions at zero, so the score is zero.
	SmoothingNone Smoothing = iota
	// SmoothingEpsilon adds Epsilon to zero numerators (NLTK method1).
	SmoothingEpsilon
	// SmoothingAddOne adds one to numerator and denominator for orders >= 2
	// (NLTK method2, Lin & Och 2004).
	SmoothingAddOne
)

var smoothingNames = map[Smoothing]string{
	SmoothingNone:    "none",
	SmoothingEpsilon: "epsilon",
	SmoothingAddOne:  "add-one",
}

// String returns the configuration name of the smoothing method.
func (s Smoothing) String() string {
	if name, ok := smoothingNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Smoothing(%d)", int(s))
}

// ParseSmoothing maps a configuration name to a Smoothing value.
// The empty string means SmoothingNone.
func ParseSmoothing(name string) (Smoothing, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return SmoothingNone, nil
	}
	for s, n := range smoothingNames {
		if n == name {
			return s, nil
		}
	}
	return SmoothingNone, fmt.Errorf("unknown BLEU smoothing %q (want none, epsilon or add-one)", name)
}

type options struct {
	maxOrder  int
	smoothing Smoothing
}

// Option configures a BLEU computation.
type Option func(*options)

// WithMaxOrder sets the highest n-gram order. Weights stay uniform (1/n).
// Values below 1 are ignored.
func WithMaxOrder(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.maxOrder = n
		}
	}
}

// WithSmoothing opts into a smoothing method.
func WithSmoothing(s Smoothing) Option {
	return func(o *options) {
		o.smoothing = s
	}
}

func newOptions(opts []Option) options {
	o := options{maxOrder: DefaultMaxOrder}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Precision is the modified (clipped) n-gram precision for one order.
type Precision struct {
	Order   int `json:"order"`
	Matches int `json:"matches"`
	Total   int `json:"total"`
}

// Value returns Matches / max(1, Total).
func (p Precision) Value() float64 {
	return float64(p.Matches) / float64(max(1, p.Total))
}

// Precisions returns the modified precision for each order 1..maxOrder.
func Precisions(reference, candidate []string, opts ...Option) []Precision {
	o := newOptions(opts)
	return precisions(reference, candidate, o.maxOrder)
}

func precisions(reference, candidate []string, maxOrder int) []Precision {
	out := make([]Precision, 0, maxOrder)
	for n := 1; n <= maxOrder; n++ {
		refCounts := ngram.Count(reference, n)
		candCounts := ngram.Count(candidate, n)
		out = append(out, Precision{
			Order:   n,
			Matches: candCounts.Clipped(refCounts),
			Total:   candCounts.Total(),
		})
	}
	return out
}

// BrevityPenalty returns 1 when the candidate is longer than the reference,
// exp(1 - r/c) otherwise, and 0 for an empty candidate.
func BrevityPenalty(refLen, candLen int) float64 {
	switch {
	case candLen > refLen:
		return 1
	case candLen == 0:
		return 0
	default:
		return math.Exp(1 - float64(refLen)/float64(candLen))
	}
}

// Sentence computes BLEU for one candidate against one reference.
func Sentence(reference, candidate []string, opts ...Option) float64 {
	o := newOptions(opts)
	if len(candidate) == 0 {
		return 0
	}

	ps := precisions(reference, candidate, o.maxOrder)
	// no unigram matches scores zero under every smoothing method
	if ps[0].Matches == 0 {
		return 0
	}

	weight := 1 / float64(o.maxOrder)
	logSum := 0.0
	for i, p := range ps {
		v, ok := smooth(p, i, o.smoothing)
		if !ok {
			return 0
		}
		logSum += weight * math.Log(v)
	}

	score := BrevityPenalty(len(reference), len(candidate)) * math.Exp(logSum)
	return clamp(score)
}

// smooth returns the precision value for order index i, or false when it is
// zero and the method leaves it at zero.
func smooth(p Precision, i int, method Smoothing) (float64, bool) {
	denom := float64(max(1, p.Total))
	switch method {
	case SmoothingEpsilon:
		if p.Matches == 0 {
			return Epsilon / denom, true
		}
	case SmoothingAddOne:
		if i > 0 {
			return float64(p.Matches+1) / (denom + 1), true
		}
	}
	if p.Matches == 0 {
		return 0, false
	}
	return float64(p.Matches) / denom, true
}

// clamp absorbs floating point error so identical texts score exactly 1.
func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
