// Package ngram counts contiguous token n-grams and computes clipped overlaps
// between two such multisets.
package ngram

import "strings"

// sep joins tokens into a map key. Tokens come from whitespace or rune-class
// splitting and never contain it.
const sep = "\x00"

// Counts is the multiset of n-grams of one order in one token sequence.
type Counts struct {
	n      int
	counts map[string]int
	total  int
}

// Count builds the n-gram multiset of tokens using a window of length n and
// stride 1. A sequence shorter than n (or n < 1) yields an empty multiset.
func Count(tokens []string, n int) Counts {
	c := Counts{n: n, counts: map[string]int{}}
	if n < 1 || len(tokens) < n {
		return c
	}
	for i := 0; i+n <= len(tokens); i++ {
		c.counts[strings.Join(tokens[i:i+n], sep)]++
	}
	c.total = len(tokens) - n + 1
	return c
}

// Order returns n.
func (c Counts) Order() int {
	return c.n
}

// Total returns the number of n-grams including repeats.
func (c Counts) Total() int {
	return c.total
}

// Distinct returns the number of distinct n-grams.
func (c Counts) Distinct() int {
	return len(c.counts)
}

// Get returns how many times the n-gram made of tokens occurs.
func (c Counts) Get(tokens ...string) int {
	return c.counts[strings.Join(tokens, sep)]
}

// Clipped returns the sum over distinct n-grams of min(c[g], other[g]).
// It is symmetric, and no n-gram ever contributes more than it occurs on
// either side.
func (c Counts) Clipped(other Counts) int {
	small, large := c.counts, other.counts
	if len(small) > len(large) {
		small, large = large, small
	}
	overlap := 0
	for g, a := range small {
		if b, ok := large[g]; ok {
			overlap += min(a, b)
		}
	}
	return overlap
}
