package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meal-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Recommender 批次推薦來源
type Recommender interface {
	RecommendBatch(ctx context.Context, req BatchRequest) (*common.RecommendationResult, error)
}

// BatchRequest 批次推薦請求
type BatchRequest struct {
	Email        string   `json:"email"`
	Exclude      []string `json:"exclude,omitempty"`
	BatchSize    int      `json:"batchSize,omitempty"`
	ResetOnEmpty bool     `json:"resetOnEmpty,omitempty"`
}

// RemoteClient 呼叫推薦服務的 HTTP 客戶端
type RemoteClient struct {
	client *resty.Client
}

// NewRemoteClient 創建推薦服務客戶端
func NewRemoteClient(baseURL string, timeout time.Duration) *RemoteClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &RemoteClient{client: client}
}

// RecommendBatch 執行一次批次推薦呼叫
func (c *RemoteClient) RecommendBatch(ctx context.Context, req BatchRequest) (*common.RecommendationResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/api/v1/recommendations/today")

	if err != nil {
		return nil, fmt.Errorf("recommendation request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if jsonErr := common.ParseJSONBytes(resp.Body(), &errBody); jsonErr == nil && errBody.Code != "" {
			return nil, common.NewError(errBody.Code, errBody.Error, resp.StatusCode(), nil)
		}
		return nil, fmt.Errorf("recommendation service returned status %d", resp.StatusCode())
	}

	var result common.RecommendationResult
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse recommendation response: %w", err)
	}

	return &result, nil
}
