// Package tokenize turns raw answer text into the word token sequences that the
// ROUGE and BLEU scorers compare.
//
// Two normalization policies are provided. ROUGE lower-cases, drops anything
// that is not a letter or digit and Porter-stems longer words. BLEU lower-cases
// and splits on whitespace only, so punctuation stays attached to its word.
// Both sides of a pair must always go through the same Tokenizer.
//
// Letters and digits are Unicode classes, so "café" stays one token. Tools
// that keep only [a-z0-9] split such words and drop the accented runes, which
// makes ROUGE differ from theirs on non-ASCII text. ASCII text tokenizes the
// same either way.
package tokenize

import (
	"errors"
	"strings"
	"unicode"

	porterstemmer "github.com/reiver/go-porterstemmer"
)

// ErrEmptyInput is returned when the text is empty after trimming whitespace.
// Callers that want degenerate-but-valid behavior treat it as an empty sequence.
var ErrEmptyInput = errors.New("empty input")

// DefaultMinStemLength is the shortest token the ROUGE policy will stem.
// Shorter tokens are left alone, which keeps words like "was" and "has" intact.
const DefaultMinStemLength = 4

// Options controls how text is normalized.
type Options struct {
	// Stem reduces each token to its Porter stem.
	Stem bool

	// KeepPunctuation splits on whitespace only. When false, every rune that is
	// not a letter or digit acts as a separator.
	KeepPunctuation bool

	// MinStemLength is the minimum token length (in runes) eligible for stemming.
	// Zero means every token is stemmed.
	MinStemLength int
}

// Tokenizer normalizes text according to its Options. It holds no mutable
// state and is safe for concurrent use.
type Tokenizer struct {
	opts Options
}

// New creates a Tokenizer with the given options.
func New(opts Options) *Tokenizer {
	if opts.MinStemLength < 0 {
		opts.MinStemLength = 0
	}
	return &Tokenizer{opts: opts}
}

// ROUGE returns the tokenizer policy used for ROUGE scoring: punctuation
// stripped, stemming on for tokens of four or more characters.
func ROUGE() *Tokenizer {
	return New(Options{Stem: true, MinStemLength: DefaultMinStemLength})
}

// BLEU returns the tokenizer policy used for BLEU scoring: whitespace split,
// lower-cased, no stemming.
func BLEU() *Tokenizer {
	return New(Options{KeepPunctuation: true})
}

// Options returns the options this tokenizer was built with.
func (t *Tokenizer) Options() Options {
	return t.opts
}

// Tokenize splits text into normalized tokens.
//
// It returns ErrEmptyInput (and a nil slice) when text is blank. Text that is
// non-blank but holds no word characters yields an empty, non-nil slice.
func (t *Tokenizer) Tokenize(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	text = strings.ToLower(text)

	var words []string
	if t.opts.KeepPunctuation {
		words = strings.Fields(text)
	} else {
		words = strings.FieldsFunc(text, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
	}

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if t.opts.Stem && len([]rune(w)) >= t.opts.MinStemLength {
			w = stem(w)
		}
		if w == "" {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens, nil
}

// MustTokenize is like Tokenize but maps ErrEmptyInput to an empty sequence.
// It is what the scorers use: blank text scores zero instead of failing.
func (t *Tokenizer) MustTokenize(text string) []string {
	tokens, err := t.Tokenize(text)
	if err != nil {
		return []string{}
	}
	return tokens
}

// stem returns the Porter stem of word, or word itself when the stemmer
// yields nothing. The stemmer indexes out of range on a few short inputs
// such as "eing" and "eeds"; those words are kept unstemmed.
func stem(word string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = word
		}
	}()

	s := string(porterstemmer.StemWithoutLowerCasing([]rune(word)))
	if s == "" {
		return word
	}
	return s
}
