package recommend

import (
	"context"
	"errors"
	"testing"

	"meal-recommender/internal/core/profile"
	"meal-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatClient 固定回應的假 LLM
type fakeChatClient struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeChatClient) ProcessRequest(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testPool(ids ...string) []ScoredCandidate {
	pool := make([]ScoredCandidate, 0, len(ids))
	for i, id := range ids {
		pool = append(pool, ScoredCandidate{
			Item:  menu(id, intPtr(400), []string{"balanced"}, nil),
			Score: float64(len(ids) - i),
		})
	}
	return pool
}

func testClassification() profile.Classification {
	h := 170
	w := 65.0
	return profile.Classify(&common.UserProfile{HeightCm: &h, WeightKg: &w}, 10)
}

func TestLLMRerankOrderIsAuthoritative(t *testing.T) {
	client := &fakeChatClient{response: `{"order": ["y", "x"], "reason": "低糖優先"}`}
	r := NewLLMReranker(client)

	ordered, reason := r.Rerank(context.Background(), testClassification(), &common.UserProfile{}, testPool("x", "y", "z"))

	require.Len(t, ordered, 2)
	assert.Equal(t, "y", ordered[0].Item.ID)
	assert.Equal(t, "x", ordered[1].Item.ID)
	// 不在 order 裡的 z 被淘汰
	assert.Equal(t, "低糖優先", reason)
}

func TestLLMRerankUnknownIDsDropped(t *testing.T) {
	client := &fakeChatClient{response: `{"order": ["ghost", "x", "ghost2"], "reason": "ok"}`}
	r := NewLLMReranker(client)

	ordered, _ := r.Rerank(context.Background(), testClassification(), &common.UserProfile{}, testPool("x", "y"))

	require.Len(t, ordered, 1)
	assert.Equal(t, "x", ordered[0].Item.ID)
}

func TestLLMRerankAllUnknownIDsYieldsEmpty(t *testing.T) {
	// order 是權威名單：全是未知 id 時結果清空，不回退規則排序
	client := &fakeChatClient{response: `{"order": ["ghost", "ghost2"], "reason": "ok"}`}
	r := NewLLMReranker(client)

	ordered, reason := r.Rerank(context.Background(), testClassification(), &common.UserProfile{}, testPool("x", "y"))

	assert.Empty(t, ordered)
	assert.Equal(t, "ok", reason)
}

func TestLLMRerankUnquotedKeysRepaired(t *testing.T) {
	// 模型偶爾輸出未加引號的鍵，補引號後再解析一次
	client := &fakeChatClient{response: `{order: ["x"], reason: "補救成功"}`}
	r := NewLLMReranker(client)

	ordered, reason := r.Rerank(context.Background(), testClassification(), &common.UserProfile{}, testPool("x", "y"))

	require.Len(t, ordered, 1)
	assert.Equal(t, "x", ordered[0].Item.ID)
	assert.Equal(t, "補救成功", reason)
}

func TestLLMRerankCallFailureFallsBack(t *testing.T) {
	client := &fakeChatClient{err: errors.New("timeout")}
	r := NewLLMReranker(client)

	pool := testPool("x", "y", "z")
	ordered, reason := r.Rerank(context.Background(), testClassification(), &common.UserProfile{}, pool)

	assert.Equal(t, pool, ordered)
	assert.Empty(t, reason)
}

func TestLLMRerankMalformedJSONFallsBack(t *testing.T) {
	cases := []string{
		"這不是 JSON",
		`{"order": "not-a-list"}`,
		`{"reason": "沒有 order"}`,
		`{"order": []}`,
	}

	for _, response := range cases {
		client := &fakeChatClient{response: response}
		r := NewLLMReranker(client)

		pool := testPool("x", "y")
		ordered, reason := r.Rerank(context.Background(), testClassification(), &common.UserProfile{}, pool)

		assert.Equal(t, pool, ordered, "response: %s", response)
		assert.Empty(t, reason, "response: %s", response)
	}
}

func TestLLMRerankWrappedJSONAccepted(t *testing.T) {
	// 模型在 JSON 前後多話時仍能取出物件
	client := &fakeChatClient{response: "好的，以下是結果：\n{\"order\": [\"x\"], \"reason\": \"ok\"}\n謝謝"}
	r := NewLLMReranker(client)

	ordered, reason := r.Rerank(context.Background(), testClassification(), &common.UserProfile{}, testPool("x", "y"))

	require.Len(t, ordered, 1)
	assert.Equal(t, "x", ordered[0].Item.ID)
	assert.Equal(t, "ok", reason)
}

func TestLLMRerankEmptyPoolSkipsCall(t *testing.T) {
	client := &fakeChatClient{response: `{"order": ["x"]}`}
	r := NewLLMReranker(client)

	ordered, reason := r.Rerank(context.Background(), testClassification(), &common.UserProfile{}, nil)

	assert.Empty(t, ordered)
	assert.Empty(t, reason)
	assert.Empty(t, client.prompts)
}

func TestNullRerankerIdentity(t *testing.T) {
	pool := testPool("a", "b")
	ordered, reason := NullReranker{}.Rerank(context.Background(), testClassification(), &common.UserProfile{}, pool)
	assert.Equal(t, pool, ordered)
	assert.Empty(t, reason)
}
