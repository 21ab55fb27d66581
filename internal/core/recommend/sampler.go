package recommend

import (
	"math/rand"
	"strings"
)

// SampleOutcome 單次批次抽樣結果
type SampleOutcome struct {
	Picked           []ScoredCandidate
	TotalAfterFilter int  // 排除過濾後的剩餘候選數
	Exhausted        bool // 過濾後為空，代表本輪已無可展示項目
}

// ClampBatchSize 批次大小夾取：n <= 0 用預設值，並夾在 [1, max]
func ClampBatchSize(n, def, max int) int {
	if n <= 0 {
		n = def
	}
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	return n
}

// Sample 排除感知批次抽樣：
// 先以排除集合（不分大小寫）過濾，再均勻洗牌取前 n 筆。
// rng 為 nil 時使用全域隨機源；輸入切片不被改動。
func Sample(pool []ScoredCandidate, excludeSet map[string]struct{}, n int, rng *rand.Rand) SampleOutcome {
	filtered := make([]ScoredCandidate, 0, len(pool))
	for _, c := range pool {
		if _, ok := excludeSet[strings.ToLower(c.Item.ID)]; ok {
			continue
		}
		filtered = append(filtered, c)
	}

	outcome := SampleOutcome{TotalAfterFilter: len(filtered)}
	if len(filtered) == 0 {
		outcome.Exhausted = true
		return outcome
	}

	shuffle(filtered, rng)
	if n > len(filtered) {
		n = len(filtered)
	}
	outcome.Picked = filtered[:n]
	return outcome
}

// shuffle 均勻洗牌（Fisher-Yates）
func shuffle(cs []ScoredCandidate, rng *rand.Rand) {
	swap := func(i, j int) { cs[i], cs[j] = cs[j], cs[i] }
	if rng != nil {
		rng.Shuffle(len(cs), swap)
		return
	}
	rand.Shuffle(len(cs), swap)
}
