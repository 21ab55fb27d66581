package recommend

import (
	"context"
	"math/rand"
	"strings"

	"meal-recommender/internal/core/catalog"
	"meal-recommender/internal/core/profile"
	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Request 單次批次推薦請求
type Request struct {
	Email        string
	Exclude      []string
	BatchSize    int
	ResetOnEmpty bool // 過濾後為空時是否清空排除集合重跑一次
}

// Service 推薦管線：
// 檔案 → 分類 → 候選收集 → 規則評分 → 保底擴充 → 重排序 → 排除抽樣。
// 每次請求為無狀態的單次執行，排除集合由呼叫端持有並傳入。
type Service struct {
	profiles profile.Store
	builder  *PoolBuilder
	reranker Reranker
	cfg      *config.RecommendConfig
	rng      *rand.Rand
}

// NewService 創建推薦管線
func NewService(profiles profile.Store, store catalog.Store, reranker Reranker, cfg *config.RecommendConfig) *Service {
	if reranker == nil {
		reranker = NullReranker{}
	}
	return &Service{
		profiles: profiles,
		builder:  NewPoolBuilder(store, cfg),
		reranker: reranker,
		cfg:      cfg,
	}
}

// WithRand 指定隨機源（測試用；nil 表示使用全域隨機源）
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// RecommendBatch 執行一次批次推薦。
// 只有缺 email 與查無檔案會以錯誤回傳；其餘內部失敗一律在本地回復。
func (s *Service) RecommendBatch(ctx context.Context, req Request) (*common.RecommendationResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, common.ErrEmailRequired
	}

	batchSize := ClampBatchSize(req.BatchSize, s.cfg.DefaultBatch, s.cfg.MaxBatch)

	common.LogInfo("開始批次推薦",
		zap.String("email", email),
		zap.Int("exclude_count", len(req.Exclude)),
		zap.Int("batch_size", batchSize),
		zap.Bool("reset_on_empty", req.ResetOnEmpty),
	)

	result, err := s.runOnce(ctx, email, req.Exclude, batchSize)
	if err != nil {
		return nil, err
	}

	// 池耗盡時清空排除集合重跑一次；每條請求鏈最多一次，
	// 第二次耗盡視為「沒有更多推薦」的正常結果，不再重試
	if result.Meta.TotalAfterFilter == 0 && len(req.Exclude) > 0 && req.ResetOnEmpty {
		common.LogInfo("候選已全數排除，清空排除集合重跑",
			zap.String("email", email),
		)
		retry, err := s.runOnce(ctx, email, nil, batchSize)
		if err != nil {
			return nil, err
		}
		retry.Meta.ExcludedCount = len(req.Exclude)
		retry.Meta.ExclusionReset = true
		return retry, nil
	}

	return result, nil
}

// runOnce 單次管線執行，不含耗盡重試
func (s *Service) runOnce(ctx context.Context, email string, exclude []string, batchSize int) (*common.RecommendationResult, error) {
	// 1. 檔案為每次請求讀取的唯讀快照
	prof, err := s.profiles.GetProfile(ctx, email)
	if err != nil {
		return nil, err
	}

	// 2. 三軸分類、飲食標籤與熱量窗口
	cls := profile.Classify(prof, s.cfg.MaxTags)
	allergySet := prof.AllergySet()

	// 3. 候選收集、評分與保底擴充
	pool, err := s.builder.Build(ctx, cls, allergySet)
	if err != nil {
		return nil, err
	}

	// 4. 重排序只看前 RerankTop 筆瘦身候選
	top := pool.Candidates
	if len(top) > s.cfg.RerankTop {
		top = top[:s.cfg.RerankTop]
	}
	ordered, reason := s.reranker.Rerank(ctx, cls, prof, top)
	if reason == "" {
		reason = cls.Summary()
	}

	// 5. 排除過濾與隨機抽樣
	outcome := Sample(ordered, common.LowercaseSet(exclude), batchSize, s.rng)

	// 6. 結果組裝；排除集合的更新由呼叫端在收到完整結果後執行
	items := make([]common.MenuItem, 0, len(outcome.Picked))
	scores := make([]common.MenuScore, 0, len(outcome.Picked))
	for _, c := range outcome.Picked {
		c.Item.NormalizeLists()
		items = append(items, c.Item)
		scores = append(scores, common.MenuScore{MenuID: c.Item.ID, Score: c.Score})
	}

	return &common.RecommendationResult{
		AnalysisMessage: reason,
		Items:           items,
		Scores:          scores,
		Meta: common.Meta{
			TotalAfterFilter: outcome.TotalAfterFilter,
			ExcludedCount:    len(exclude),
			BatchSize:        batchSize,
		},
	}, nil
}
