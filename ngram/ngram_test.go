package ngram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount(t *testing.T) {
	t.Parallel()

	tokens := []string{"the", "cat", "sat", "on", "the", "mat"}

	uni := Count(tokens, 1)
	assert.Equal(t, 1, uni.Order())
	assert.Equal(t, 6, uni.Total())
	assert.Equal(t, 5, uni.Distinct())
	assert.Equal(t, 2, uni.Get("the"))
	assert.Equal(t, 0, uni.Get("dog"))

	bi := Count(tokens, 2)
	assert.Equal(t, 5, bi.Total())
	assert.Equal(t, 5, bi.Distinct())
	assert.Equal(t, 1, bi.Get("the", "cat"))
	assert.Equal(t, 0, bi.Get("cat", "the"))
}

func TestCount_ShortSequence(t *testing.T) {
	t.Parallel()

	c := Count([]string{"a", "b"}, 3)
	assert.Equal(t, 0, c.Total())
	assert.Equal(t, 0, c.Distinct())

	c = Count(nil, 1)
	assert.Equal(t, 0, c.Total())

	c = Count([]string{"a"}, 0)
	assert.Equal(t, 0, c.Total())
}

func TestCount_TokensAreNotConfusedAcrossBoundaries(t *testing.T) {
	t.Parallel()

	a := Count([]string{"ab", "c"}, 2)
	b := Count([]string{"a", "bc"}, 2)
	assert.Equal(t, 0, a.Clipped(b))
}

func TestClipped(t *testing.T) {
	t.Parallel()

	ref := Count([]string{"the", "cat", "sat"}, 1)
	cand := Count([]string{"the", "the", "the", "the", "the"}, 1)

	assert.Equal(t, 1, ref.Clipped(cand))
	assert.Equal(t, 1, cand.Clipped(ref))

	ref = Count([]string{"a", "a", "b"}, 1)
	cand = Count([]string{"a", "b", "b", "c"}, 1)
	assert.Equal(t, 2, ref.Clipped(cand))
	assert.Equal(t, 2, cand.Clipped(ref))

	assert.Equal(t, 0, Count(nil, 1).Clipped(ref))
}
