package recommend

import (
	"context"

	"meal-recommender/internal/core/catalog"
	"meal-recommender/internal/core/profile"
	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Pool 管線某階段的工作候選集
type Pool struct {
	Candidates []ScoredCandidate
	// 放寬階段的執行記錄
	KcalRelaxed  bool
	BroadFetched bool
}

// PoolBuilder 候選收集與保底擴充
type PoolBuilder struct {
	store      catalog.Store
	fetchLimit int
	broadLimit int
	minPool    int
}

// NewPoolBuilder 創建候選收集器
func NewPoolBuilder(store catalog.Store, cfg *config.RecommendConfig) *PoolBuilder {
	return &PoolBuilder{
		store:      store,
		fetchLimit: cfg.FetchLimit,
		broadLimit: cfg.BroadFetchLimit,
		minPool:    cfg.MinPool,
	}
}

// Build 依檔案分類收集候選並保證最小候選數。
// 擴充嚴格分段，達標即停：
//  1. 同一批候選以 kcal 窗口放寬重新評分，按 id 去重合併（既有項目優先）
//  2. 仍不足時，抓取無標籤的廣池，只做過敏過濾後合併
//  3. 仍不足時照常繼續，絕不因候選稀少而報錯
func (b *PoolBuilder) Build(ctx context.Context, cls profile.Classification, allergySet map[string]struct{}) (*Pool, error) {
	raw, err := b.store.FetchByTags(ctx, cls.Tags, b.fetchLimit)
	if err != nil {
		return nil, err
	}

	window := cls.Window
	pool := &Pool{
		Candidates: ScorePool(raw, cls.Tags, &window, allergySet),
	}
	if len(pool.Candidates) >= b.minPool {
		return pool, nil
	}

	// 階段一：放寬熱量窗口重新評分（標籤與過敏條件不變）
	relaxed := ScorePool(raw, cls.Tags, nil, allergySet)
	pool.Candidates = mergeByID(pool.Candidates, relaxed)
	pool.KcalRelaxed = true
	if len(pool.Candidates) >= b.minPool {
		return pool, nil
	}

	// 階段二：抓取無標籤廣池，只做過敏過濾
	broad, err := b.store.FetchByTags(ctx, nil, b.broadLimit)
	if err != nil {
		// 擴充查詢失敗不中斷請求，以現有候選繼續
		common.LogWarn("廣池查詢失敗，以現有候選繼續",
			zap.Error(err),
			zap.Int("pool_size", len(pool.Candidates)),
		)
		return pool, nil
	}
	pool.BroadFetched = true

	extra := make([]ScoredCandidate, 0, len(broad))
	for i := range broad {
		if broad[i].HasAllergen(allergySet) {
			continue
		}
		extra = append(extra, ScoredCandidate{
			Item:  broad[i],
			Score: ScoreByRules(&broad[i], cls.Tags, nil, allergySet),
		})
	}
	pool.Candidates = mergeByID(pool.Candidates, extra)

	if len(pool.Candidates) < b.minPool {
		common.LogInfo("候選擴充後仍低於下限，照常繼續",
			zap.Int("pool_size", len(pool.Candidates)),
			zap.Int("min_pool", b.minPool),
			zap.String("tags", common.StringSliceToString(cls.Tags)),
		)
	}
	return pool, nil
}

// mergeByID 按 id 去重合併：只補缺、不覆蓋，既有項目永遠優先
func mergeByID(base, extra []ScoredCandidate) []ScoredCandidate {
	seen := make(map[string]struct{}, len(base))
	for _, c := range base {
		seen[c.Item.ID] = struct{}{}
	}
	for _, c := range extra {
		if _, ok := seen[c.Item.ID]; ok {
			continue
		}
		seen[c.Item.ID] = struct{}{}
		base = append(base, c)
	}
	return base
}
