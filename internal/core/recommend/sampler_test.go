package recommend

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampBatchSize(t *testing.T) {
	assert.Equal(t, 4, ClampBatchSize(0, 4, 10))
	assert.Equal(t, 4, ClampBatchSize(-3, 4, 10))
	assert.Equal(t, 1, ClampBatchSize(1, 4, 10))
	assert.Equal(t, 7, ClampBatchSize(7, 4, 10))
	assert.Equal(t, 10, ClampBatchSize(99, 4, 10))
}

func TestSampleExcludesCaseInsensitive(t *testing.T) {
	pool := testPool("Alpha", "beta", "Gamma")
	exclude := map[string]struct{}{"alpha": {}, "gamma": {}}

	outcome := Sample(pool, exclude, 10, rand.New(rand.NewSource(1)))

	require.Len(t, outcome.Picked, 1)
	assert.Equal(t, "beta", outcome.Picked[0].Item.ID)
	assert.Equal(t, 1, outcome.TotalAfterFilter)
	assert.False(t, outcome.Exhausted)
}

func TestSampleExhausted(t *testing.T) {
	pool := testPool("a", "b")
	exclude := map[string]struct{}{"a": {}, "b": {}}

	outcome := Sample(pool, exclude, 4, rand.New(rand.NewSource(1)))

	assert.Empty(t, outcome.Picked)
	assert.Equal(t, 0, outcome.TotalAfterFilter)
	assert.True(t, outcome.Exhausted)
}

func TestSampleTakesAtMostN(t *testing.T) {
	pool := testPool("a", "b", "c", "d", "e")

	outcome := Sample(pool, nil, 2, rand.New(rand.NewSource(7)))

	assert.Len(t, outcome.Picked, 2)
	assert.Equal(t, 5, outcome.TotalAfterFilter)
}

func TestSampleDoesNotMutateInput(t *testing.T) {
	pool := testPool("a", "b", "c", "d", "e")
	before := make([]ScoredCandidate, len(pool))
	copy(before, pool)

	Sample(pool, nil, 3, rand.New(rand.NewSource(42)))

	assert.Equal(t, before, pool)
}

func TestSampleCoversWholePool(t *testing.T) {
	// 同一顆種子下多輪抽樣應該能覆蓋整個池，不是固定前綴
	pool := testPool("a", "b", "c", "d", "e", "f")
	rng := rand.New(rand.NewSource(99))

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		outcome := Sample(pool, nil, 2, rng)
		for _, c := range outcome.Picked {
			seen[c.Item.ID] = struct{}{}
		}
	}
	assert.Len(t, seen, 6)
}
