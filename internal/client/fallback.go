package client

import (
	"context"
	"math/rand"

	"meal-recommender/internal/core/catalog"
	"meal-recommender/internal/core/profile"
	"meal-recommender/internal/core/recommend"
	"meal-recommender/internal/pkg/common"
)

// 降級路徑一次拉取的候選上限與批次邊界，與線上推薦一致
const (
	fallbackFetchLimit   = 30
	fallbackDefaultBatch = 4
	fallbackMaxBatch     = 10
)

// FallbackMessage 降級推薦的標示訊息
const FallbackMessage = "AI 服務暫時無法使用，改用基本候選隨機推薦。"

// DegradedFallback 服務不可用時的本地降級推薦。
// 直接讀目錄做單段標籤查詢、熱量與過敏原過濾後隨機取樣；
// 不做評分、不做保底擴充，刻意維持比管線簡單的行為。
type DegradedFallback struct {
	profiles profile.Store
	catalog  catalog.Store
	maxTags  int
	rng      *rand.Rand
}

// NewDegradedFallback 創建降級推薦
func NewDegradedFallback(profiles profile.Store, store catalog.Store, maxTags int) *DegradedFallback {
	return &DegradedFallback{
		profiles: profiles,
		catalog:  store,
		maxTags:  maxTags,
	}
}

// WithRand 指定隨機源（測試用）
func (f *DegradedFallback) WithRand(rng *rand.Rand) *DegradedFallback {
	f.rng = rng
	return f
}

// Recommend 執行一次降級推薦
func (f *DegradedFallback) Recommend(ctx context.Context, email string, batchSize int) (*common.RecommendationResult, error) {
	batchSize = recommend.ClampBatchSize(batchSize, fallbackDefaultBatch, fallbackMaxBatch)

	prof, err := f.profiles.GetProfile(ctx, email)
	if err != nil {
		return nil, err
	}

	cls := profile.Classify(prof, f.maxTags)
	allergySet := prof.AllergySet()

	items, err := f.catalog.FetchByTags(ctx, cls.Tags, fallbackFetchLimit)
	if err != nil {
		return nil, err
	}

	// 熱量缺值放行，帶過敏原一律剔除
	kept := make([]common.MenuItem, 0, len(items))
	for _, m := range items {
		if m.HasAllergen(allergySet) {
			continue
		}
		if m.Kcal != nil && (*m.Kcal < cls.Window.Low || *m.Kcal > cls.Window.High) {
			continue
		}
		kept = append(kept, m)
	}

	if f.rng != nil {
		f.rng.Shuffle(len(kept), func(i, j int) { kept[i], kept[j] = kept[j], kept[i] })
	} else {
		rand.Shuffle(len(kept), func(i, j int) { kept[i], kept[j] = kept[j], kept[i] })
	}

	total := len(kept)
	if len(kept) > batchSize {
		kept = kept[:batchSize]
	}
	for i := range kept {
		kept[i].NormalizeLists()
	}

	return &common.RecommendationResult{
		AnalysisMessage: FallbackMessage,
		Items:           kept,
		Meta: common.Meta{
			TotalAfterFilter: total,
			BatchSize:        batchSize,
		},
	}, nil
}
