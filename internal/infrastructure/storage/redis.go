package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"meal-recommender/internal/core/catalog"
	"meal-recommender/internal/core/profile"
	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	menuKeyPrefix    = "menu:item:"
	menuTagKeyPrefix = "menu:tag:"
	menuIDSetKey     = "menu:ids"
	profileKeyPrefix = "profile:"
)

// Redis 菜單目錄與使用者檔案的 Redis 儲存
type Redis struct {
	client *redis.Client
}

// NewRedis 創建 Redis 儲存並測試連接
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: client}, nil
}

// Ping 就緒檢查用
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連接
func (s *Redis) Close() error {
	return s.client.Close()
}

// FetchByTags 依標籤查詢菜單項目；tags 為空時回傳未過濾的前 limit 筆。
// 壞記錄（JSON 壞損、缺 id/name）靜默跳過，不中斷整批查詢。
func (s *Redis) FetchByTags(ctx context.Context, tags []string, limit int) ([]common.MenuItem, error) {
	if limit <= 0 {
		return nil, nil
	}

	var ids []string
	var err error
	if len(tags) > 0 {
		keys := make([]string, 0, len(tags))
		for _, t := range tags {
			keys = append(keys, menuTagKeyPrefix+t)
		}
		ids, err = s.client.SUnion(ctx, keys...).Result()
	} else {
		ids, err = s.client.SMembers(ctx, menuIDSetKey).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query menu ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, menuKeyPrefix+id)
	}
	docs, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load menu documents: %w", err)
	}

	items := make([]common.MenuItem, 0, len(docs))
	skipped := 0
	for i, doc := range docs {
		str, ok := doc.(string)
		if !ok || str == "" {
			skipped++
			continue
		}
		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(str), &raw); err != nil {
			skipped++
			continue
		}
		item, ok := catalog.MapDocument(ids[i], raw)
		if !ok {
			skipped++
			continue
		}
		items = append(items, item)
	}
	if skipped > 0 {
		common.LogDebug("跳過壞損的目錄文件",
			zap.Int("skipped", skipped),
			zap.Int("loaded", len(items)),
		)
	}

	return items, nil
}

// GetProfile 查詢使用者檔案；查無時回傳 common.ErrProfileNotFound
func (s *Redis) GetProfile(ctx context.Context, email string) (*common.UserProfile, error) {
	data, err := s.client.Get(ctx, profileKeyPrefix+email).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, common.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return profile.MapDocument(email, raw), nil
}

// UpsertMenu 寫入菜單項目並維護標籤索引（種子資料用，非核心管線）
func (s *Redis) UpsertMenu(ctx context.Context, item common.MenuItem) error {
	if item.ID == "" || item.Name == "" {
		return common.ErrInvalidRequest
	}
	item.NormalizeLists()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal menu item: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, menuKeyPrefix+item.ID, data, 0)
	pipe.SAdd(ctx, menuIDSetKey, item.ID)
	for _, t := range item.Tags {
		pipe.SAdd(ctx, menuTagKeyPrefix+t, item.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert menu item: %w", err)
	}
	return nil
}

// UpsertProfile 寫入使用者檔案（種子資料用，非核心管線）
func (s *Redis) UpsertProfile(ctx context.Context, p common.UserProfile) error {
	if p.Email == "" {
		return common.ErrEmailRequired
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := s.client.Set(ctx, profileKeyPrefix+p.Email, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
