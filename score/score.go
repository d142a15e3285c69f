// Package score computes the full ROUGE/BLEU score set for one
// (reference, candidate) pair.
package score

import (
	"github.com/braintrustdata/overlap-go/bleu"
	"github.com/braintrustdata/overlap-go/rouge"
	"github.com/braintrustdata/overlap-go/tokenize"
)

// Metric names one of the four reported scores.
type Metric string

const (
	ROUGE1 Metric = "ROUGE-1"
	ROUGE2 Metric = "ROUGE-2"
	ROUGEL Metric = "ROUGE-L"
	BLEU   Metric = "BLEU"
)

// Metrics lists the reported metrics in report order.
var Metrics = []Metric{ROUGE1, ROUGE2, ROUGEL, BLEU}

// Set holds the four F1/BLEU values for one pair. It is a value type and is
// never modified once returned.
type Set struct {
	ROUGE1 float64 `json:"rouge1"`
	ROUGE2 float64 `json:"rouge2"`
	ROUGEL float64 `json:"rougeL"`
	BLEU   float64 `json:"bleu"`
}

// Get returns the value of metric m.
func (s Set) Get(m Metric) float64 {
	switch m {
	case ROUGE1:
		return s.ROUGE1
	case ROUGE2:
		return s.ROUGE2
	case ROUGEL:
		return s.ROUGEL
	case BLEU:
		return s.BLEU
	}
	return 0
}

// Map returns the set keyed by metric name.
func (s Set) Map() map[string]float64 {
	out := make(map[string]float64, len(Metrics))
	for _, m := range Metrics {
		out[string(m)] = s.Get(m)
	}
	return out
}

// Detail carries everything computed for a pair, not just the reported F1s.
type Detail struct {
	ROUGE1          rouge.Score      `json:"rouge1"`
	ROUGE2          rouge.Score      `json:"rouge2"`
	ROUGEL          rouge.Score      `json:"rougeL"`
	BLEU            float64          `json:"bleu"`
	BLEUPrecisions  []bleu.Precision `json:"bleu_precisions"`
	ReferenceTokens int              `json:"reference_tokens"`
	CandidateTokens int              `json:"candidate_tokens"`
}

// Set reduces the detail to the reported values.
func (d Detail) Set() Set {
	return Set{
		ROUGE1: d.ROUGE1.F1,
		ROUGE2: d.ROUGE2.F1,
		ROUGEL: d.ROUGEL.F1,
		BLEU:   d.BLEU,
	}
}

// Opts configures a Scorer.
type Opts struct {
	// ROUGETokenizer normalizes text for ROUGE. Defaults to tokenize.ROUGE().
	ROUGETokenizer *tokenize.Tokenizer

	// BLEUTokenizer normalizes text for BLEU. Defaults to tokenize.BLEU().
	BLEUTokenizer *tokenize.Tokenizer

	// BLEUOptions are passed to bleu.Sentence.
	BLEUOptions []bleu.Option
}

// Scorer scores pairs. It is stateless after construction and safe for
// concurrent use.
type Scorer struct {
	rougeTok *tokenize.Tokenizer
	bleuTok  *tokenize.Tokenizer
	bleuOpts []bleu.Option
}

// New creates a Scorer, filling in default tokenizers.
func New(opts Opts) *Scorer {
	s := &Scorer{
		rougeTok: opts.ROUGETokenizer,
		bleuTok:  opts.BLEUTokenizer,
		bleuOpts: opts.BLEUOptions,
	}
	if s.rougeTok == nil {
		s.rougeTok = tokenize.ROUGE()
	}
	if s.bleuTok == nil {
		s.bleuTok = tokenize.BLEU()
	}
	return s
}

// Default returns a Scorer with the standard policies: stemmed ROUGE,
// unstemmed and unsmoothed BLEU-4.
func Default() *Scorer {
	return New(Opts{})
}

// Score returns the score set for a pair. Blank texts score zero.
func (s *Scorer) Score(reference, candidate string) Set {
	return s.Detail(reference, candidate).Set()
}

// Detail returns the full precision/recall breakdown for a pair.
func (s *Scorer) Detail(reference, candidate string) Detail {
	refR := s.rougeTok.MustTokenize(reference)
	candR := s.rougeTok.MustTokenize(candidate)
	refB := s.bleuTok.MustTokenize(reference)
	candB := s.bleuTok.MustTokenize(candidate)

	return Detail{
		ROUGE1:          rouge.N(refR, candR, 1),
		ROUGE2:          rouge.N(refR, candR, 2),
		ROUGEL:          rouge.L(refR, candR),
		BLEU:            bleu.Sentence(refB, candB, s.bleuOpts...),
		BLEUPrecisions:  bleu.Precisions(refB, candB, s.bleuOpts...),
		ReferenceTokens: len(refR),
		CandidateTokens: len(candR),
	}
}
