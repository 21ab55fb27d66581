package client

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"meal-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecommender 逐次回放預設結果的假推薦來源
type fakeRecommender struct {
	results  []*common.RecommendationResult
	err      error
	requests []BatchRequest
}

func (f *fakeRecommender) RecommendBatch(_ context.Context, req BatchRequest) (*common.RecommendationResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	idx := len(f.requests) - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx], nil
}

func batchResult(ids ...string) *common.RecommendationResult {
	items := make([]common.MenuItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, common.MenuItem{ID: id, Name: "menu-" + id})
	}
	return &common.RecommendationResult{
		AnalysisMessage: "ok",
		Items:           items,
		Meta:            common.Meta{TotalAfterFilter: len(ids), BatchSize: len(ids)},
	}
}

func TestSessionAccumulatesShownIDs(t *testing.T) {
	remote := &fakeRecommender{results: []*common.RecommendationResult{
		batchResult("a", "b"),
		batchResult("c"),
	}}
	s := NewSession("user@example.com", 4, remote, nil)

	_, err := s.NextBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.ShownIDs())

	_, err = s.NextBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, s.ShownIDs())

	// 第二次請求帶上第一次看過的 ID，且允許服務端重置
	require.Len(t, remote.requests, 2)
	assert.Empty(t, remote.requests[0].Exclude)
	assert.Equal(t, []string{"a", "b"}, remote.requests[1].Exclude)
	assert.True(t, remote.requests[1].ResetOnEmpty)
}

func TestSessionServerResetClearsLocalSet(t *testing.T) {
	reset := batchResult("x")
	reset.Meta.ExclusionReset = true
	remote := &fakeRecommender{results: []*common.RecommendationResult{
		batchResult("a", "b"),
		reset,
	}}
	s := NewSession("user@example.com", 4, remote, nil)

	_, err := s.NextBatch(context.Background())
	require.NoError(t, err)
	_, err = s.NextBatch(context.Background())
	require.NoError(t, err)

	// 服務端重跑後本地集合重置，只剩新批次
	assert.Equal(t, []string{"x"}, s.ShownIDs())
}

func TestSessionExploreFresh(t *testing.T) {
	remote := &fakeRecommender{results: []*common.RecommendationResult{
		batchResult("a", "b"),
		batchResult("c"),
	}}
	s := NewSession("user@example.com", 4, remote, nil)

	_, err := s.NextBatch(context.Background())
	require.NoError(t, err)

	_, err = s.ExploreFresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"c"}, s.ShownIDs())
	require.Len(t, remote.requests, 2)
	assert.Empty(t, remote.requests[1].Exclude)
	assert.False(t, remote.requests[1].ResetOnEmpty)
}

func TestSessionFallbackOnServerFailure(t *testing.T) {
	remote := &fakeRecommender{err: errors.New("connection refused")}

	h := 170
	w := 65.0
	profiles := &fakeProfileStore{profiles: map[string]*common.UserProfile{
		"user@example.com": {Email: "user@example.com", HeightCm: &h, WeightKg: &w},
	}}
	catalog := &fakeCatalogStore{items: []common.MenuItem{
		{ID: "m1", Name: "menu-1", Kcal: intPtr(400), Tags: []string{"balanced"}},
		{ID: "m2", Name: "menu-2", Kcal: intPtr(500), Tags: []string{"balanced"}},
	}}
	fallback := NewDegradedFallback(profiles, catalog, 10).
		WithRand(rand.New(rand.NewSource(1)))

	s := NewSession("user@example.com", 4, remote, fallback)

	result, err := s.NextBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, FallbackMessage, result.AnalysisMessage)
	assert.Len(t, result.Items, 2)
	// 降級結果一樣累計到已看過集合
	assert.Len(t, s.ShownIDs(), 2)
}

func TestSessionClientErrorNotDegraded(t *testing.T) {
	remote := &fakeRecommender{err: common.ErrProfileNotFound}
	fallback := NewDegradedFallback(nil, nil, 10)
	s := NewSession("ghost@example.com", 4, remote, fallback)

	_, err := s.NextBatch(context.Background())
	assert.ErrorIs(t, err, common.ErrProfileNotFound)
}

func TestSessionFailureWithoutFallback(t *testing.T) {
	remote := &fakeRecommender{err: errors.New("boom")}
	s := NewSession("user@example.com", 4, remote, nil)

	_, err := s.NextBatch(context.Background())
	assert.Error(t, err)
	assert.Empty(t, s.ShownIDs())
}
