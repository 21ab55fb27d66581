package recommend

import (
	"math"
	"testing"

	"meal-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func menu(id string, kcal *int, tags, flags []string) common.MenuItem {
	return common.MenuItem{ID: id, Name: "menu-" + id, Kcal: kcal, Tags: tags, AllergyFlags: flags}
}

func TestScoreByRulesAllergenHardExclusion(t *testing.T) {
	m := menu("m1", intPtr(400), []string{"balanced"}, []string{"Peanut"})
	score := ScoreByRules(&m, []string{"balanced"}, &common.KcalWindow{Low: 300, High: 700}, map[string]struct{}{"peanut": {}})
	assert.True(t, math.IsInf(score, -1))
}

func TestScoreByRulesTagAndKcal(t *testing.T) {
	window := &common.KcalWindow{Low: 300, High: 700}

	// 窗口中點命中：kcalScore = 1
	m := menu("m1", intPtr(500), []string{"balanced", "low_sugar"}, nil)
	score := ScoreByRules(&m, []string{"balanced", "low_sugar"}, window, nil)
	assert.InDelta(t, 2*2+1.0, score, 0.001)

	// kcal 缺失：kcalScore 固定 0.5
	m2 := menu("m2", nil, []string{"balanced"}, nil)
	score2 := ScoreByRules(&m2, []string{"balanced"}, window, nil)
	assert.InDelta(t, 2+0.5, score2, 0.001)

	// 窗口為 nil：kcalScore 固定 0.5
	m3 := menu("m3", intPtr(500), nil, nil)
	score3 := ScoreByRules(&m3, nil, nil, nil)
	assert.InDelta(t, 0.5, score3, 0.001)

	// 偏離中點超過中點距離時 kcalScore 掉到 0
	m4 := menu("m4", intPtr(1200), nil, nil)
	score4 := ScoreByRules(&m4, nil, window, nil)
	assert.InDelta(t, 0.0, score4, 0.001)
}

func TestScoreByRulesTagDominatesKcal(t *testing.T) {
	window := &common.KcalWindow{Low: 300, High: 700}
	hit := menu("hit", intPtr(1200), []string{"balanced"}, nil)
	miss := menu("miss", intPtr(500), nil, nil)

	scoreHit := ScoreByRules(&hit, []string{"balanced"}, window, nil)
	scoreMiss := ScoreByRules(&miss, []string{"balanced"}, window, nil)
	assert.Greater(t, scoreHit, scoreMiss)
}

func TestScorePoolDropsAllergensAndSorts(t *testing.T) {
	window := &common.KcalWindow{Low: 300, High: 700}
	items := []common.MenuItem{
		menu("low", intPtr(700), nil, nil),
		menu("bad", intPtr(500), []string{"balanced"}, []string{"shrimp"}),
		menu("high", intPtr(500), []string{"balanced"}, nil),
	}

	scored := ScorePool(items, []string{"balanced"}, window, map[string]struct{}{"shrimp": {}})
	require.Len(t, scored, 2)
	assert.Equal(t, "high", scored[0].Item.ID)
	assert.Equal(t, "low", scored[1].Item.ID)
}

func TestScorePoolStableOnTies(t *testing.T) {
	items := []common.MenuItem{
		menu("a", nil, nil, nil),
		menu("b", nil, nil, nil),
		menu("c", nil, nil, nil),
	}

	scored := ScorePool(items, nil, nil, nil)
	require.Len(t, scored, 3)
	assert.Equal(t, "a", scored[0].Item.ID)
	assert.Equal(t, "b", scored[1].Item.ID)
	assert.Equal(t, "c", scored[2].Item.ID)

	// 同輸入重複評分結果一致
	again := ScorePool(items, nil, nil, nil)
	assert.Equal(t, scored, again)
}
