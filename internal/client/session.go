package client

import (
	"context"
	"sync"

	"meal-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Session 單一使用者的推薦會話。持有「已看過」菜單 ID 集合，
// 集合只在收到完整結果後成長；服務完全失敗時走本地降級路徑。
type Session struct {
	email     string
	batchSize int
	remote    Recommender
	fallback  *DegradedFallback

	mu       sync.Mutex
	shownIDs []string // 保留出現順序
	shownSet map[string]struct{}
}

// NewSession 創建推薦會話
func NewSession(email string, batchSize int, remote Recommender, fallback *DegradedFallback) *Session {
	return &Session{
		email:     email,
		batchSize: batchSize,
		remote:    remote,
		fallback:  fallback,
		shownSet:  make(map[string]struct{}),
	}
}

// ShownIDs 回傳目前已看過的菜單 ID（依出現順序）
func (s *Session) ShownIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.shownIDs))
	copy(out, s.shownIDs)
	return out
}

// NextBatch 要求下一批推薦。已看過的項目帶入排除集合，
// 候選耗盡時允許服務端清空排除集合重跑一次。
func (s *Session) NextBatch(ctx context.Context) (*common.RecommendationResult, error) {
	return s.request(ctx, s.ShownIDs(), true)
}

// ExploreFresh 完全重置後重新探索：清空已看過集合，不帶排除條件
func (s *Session) ExploreFresh(ctx context.Context) (*common.RecommendationResult, error) {
	s.mu.Lock()
	s.shownIDs = nil
	s.shownSet = make(map[string]struct{})
	s.mu.Unlock()

	return s.request(ctx, nil, false)
}

func (s *Session) request(ctx context.Context, exclude []string, resetOnEmpty bool) (*common.RecommendationResult, error) {
	result, err := s.remote.RecommendBatch(ctx, BatchRequest{
		Email:        s.email,
		Exclude:      exclude,
		BatchSize:    s.batchSize,
		ResetOnEmpty: resetOnEmpty,
	})
	if err != nil {
		// 明確的客戶端錯誤不降級，直接回報
		if ce, ok := common.AsCustomError(err); ok && ce.Status < 500 {
			return nil, err
		}
		if s.fallback == nil {
			return nil, err
		}
		common.LogWarn("推薦服務呼叫失敗，改用降級路徑",
			zap.Error(err),
			zap.String("email", s.email),
		)
		result, err = s.fallback.Recommend(ctx, s.email, s.batchSize)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	// 服務端已清空排除集合重跑，本地集合跟著重置
	if result.Meta.ExclusionReset {
		s.shownIDs = nil
		s.shownSet = make(map[string]struct{})
	}
	for _, id := range result.ItemIDs() {
		if _, seen := s.shownSet[id]; seen {
			continue
		}
		s.shownSet[id] = struct{}{}
		s.shownIDs = append(s.shownIDs, id)
	}
	s.mu.Unlock()

	return result, nil
}
