package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"meal-recommender/internal/core/ai/cache"
	openrouter "meal-recommender/internal/core/service"
	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"
)

// Service AI 服務。包 OpenRouter 呼叫，加上回應快取與最小請求間隔。
type Service struct {
	config       *config.Config
	openRouter   *openrouter.OpenRouterService
	cacheManager *cache.CacheManager
	mu           sync.Mutex
	lastRequest  time.Time
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, cacheManager *cache.CacheManager) (*Service, error) {
	if !cfg.OpenRouter.Enabled {
		return nil, common.ErrLLMDisabled
	}

	return &Service{
		config:       cfg,
		openRouter:   openrouter.NewOpenRouterService(cfg),
		cacheManager: cacheManager,
	}, nil
}

// ProcessRequest 統一對外方法
func (s *Service) ProcessRequest(ctx context.Context, prompt string) (string, error) {
	if err := s.checkRequestRate(); err != nil {
		return "", err
	}

	// 統一 prompt 格式：去除前後空白、tab 換行收斂為單一空格，確保快取 key 一致。
	// 不能把空白全部移除，prompt 內嵌的菜單名稱會被改掉。
	prompt = strings.TrimSpace(prompt)
	prompt = strings.Join(strings.Fields(prompt), " ")

	// 檢查緩存（用 cacheManager）
	if s.config.Cache.Enabled && s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, prompt); err == nil && val != "" {
			return val, nil
		}
	}

	start := time.Now()
	content, err := s.openRouter.GenerateResponse(ctx, prompt)
	common.LogAICall(time.Since(start), err, common.GetRequestID(ctx))
	if err != nil {
		return "", err
	}

	if s.config.Cache.Enabled && s.cacheManager != nil {
		_ = s.cacheManager.Set(ctx, prompt, content)
	}

	return content, nil
}

// checkRequestRate 檢查請求頻率
func (s *Service) checkRequestRate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.config.RateLimit.Enabled && now.Sub(s.lastRequest) < s.config.RateLimit.Window {
		return errors.New("request rate limit exceeded")
	}

	s.lastRequest = now
	return nil
}
