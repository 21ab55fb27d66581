package service

import (
	"context"
	"fmt"
	"net/http"

	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// OpenRouterService OpenRouter 服務
type OpenRouterService struct {
	config *config.Config
	client *resty.Client
}

// NewOpenRouterService 創建 OpenRouter 服務
func NewOpenRouterService(cfg *config.Config) *OpenRouterService {
	client := resty.New().
		SetBaseURL("https://openrouter.ai/api/v1").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://meal-recommender.com").
		SetHeader("X-Title", "Meal Recommender").
		SetTimeout(cfg.OpenRouter.Timeout)

	return &OpenRouterService{
		config: cfg,
		client: client,
	}
}

// GenerateResponse 生成回應。要求模型以 JSON 物件格式輸出，
// 上層仍需做嚴格解析：response_format 只是提示，模型不保證遵守。
func (s *OpenRouterService) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	req := map[string]interface{}{
		"model": s.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": "你是一位營養師助理，只輸出 JSON 物件，不輸出任何其他文字。",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens":  s.config.OpenRouter.MaxTokens,
		"temperature": 0.2,
		"response_format": map[string]string{
			"type": "json_object",
		},
	}

	// 發送請求
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API returned error: %s", resp.String())
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	return result.Choices[0].Message.Content, nil
}
