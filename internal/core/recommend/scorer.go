package recommend

import (
	"math"
	"sort"

	"meal-recommender/internal/pkg/common"
)

// ScoredCandidate 候選項目與其規則分數
// 分數只在同一輪評分內有意義，不跨請求比較、不落地
type ScoredCandidate struct {
	Item  common.MenuItem
	Score float64
}

// ScoreByRules 規則評分：
//   - 項目帶有使用者過敏原（不分大小寫）時回傳 -Inf，候選硬性淘汰
//   - tagHit = 項目標籤命中期望標籤的數量
//   - kcalScore = 與窗口中點的接近度；窗口為 nil 或 kcal 缺失時固定 0.5
//   - score = tagHit*2 + kcalScore
func ScoreByRules(m *common.MenuItem, wantedTags []string, window *common.KcalWindow, allergySet map[string]struct{}) float64 {
	if m.HasAllergen(allergySet) {
		return math.Inf(-1)
	}

	tagHit := 0
	for _, t := range m.Tags {
		for _, w := range wantedTags {
			if t == w {
				tagHit++
				break
			}
		}
	}

	kcalScore := 0.5
	if window != nil && m.Kcal != nil {
		mid := window.Mid()
		kcalScore = 1 - math.Min(1, math.Abs(float64(*m.Kcal)-mid)/math.Max(mid, 1))
	}

	return float64(tagHit)*2 + kcalScore
}

// ScorePool 為整批候選評分，淘汰 -Inf 後依分數降冪穩定排序。
// 同分時維持輸入順序，同一輪評分內不得重新洗牌。
func ScorePool(items []common.MenuItem, wantedTags []string, window *common.KcalWindow, allergySet map[string]struct{}) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(items))
	for i := range items {
		s := ScoreByRules(&items[i], wantedTags, window, allergySet)
		if math.IsInf(s, -1) {
			continue
		}
		scored = append(scored, ScoredCandidate{Item: items[i], Score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
