package recommend

import (
	"context"
	"fmt"
	"strings"

	"meal-recommender/internal/core/profile"
	"meal-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Reranker 重排序策略。
// 回傳重排後的候選與分析文字；reason 為空字串時由呼叫端補上規則摘要。
// 實作不得讓任何解析錯誤越過此邊界：所有失敗一律退回原始順序。
type Reranker interface {
	Rerank(ctx context.Context, cls profile.Classification, prof *common.UserProfile, pool []ScoredCandidate) ([]ScoredCandidate, string)
}

// NullReranker 恆等重排序：未配置 LLM 時的預設策略
type NullReranker struct{}

// Rerank 原樣回傳
func (NullReranker) Rerank(_ context.Context, _ profile.Classification, _ *common.UserProfile, pool []ScoredCandidate) ([]ScoredCandidate, string) {
	return pool, ""
}

// ChatClient LLM 對話能力（嚴格 JSON 輸出）
type ChatClient interface {
	ProcessRequest(ctx context.Context, prompt string) (string, error)
}

// LLMReranker 以 LLM 重排序候選
type LLMReranker struct {
	client ChatClient
}

// NewLLMReranker 創建 LLM 重排序器
func NewLLMReranker(client ChatClient) *LLMReranker {
	return &LLMReranker{client: client}
}

// rerankResponse 重排序回應契約：{order: [ids...], reason: string}
type rerankResponse struct {
	Order  []string `json:"order"`
	Reason string   `json:"reason"`
}

// slimMenu 送入 LLM 的瘦身候選欄位（不含圖片、步驟、食材）
type slimMenu struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Kcal         *int     `json:"kcal,omitempty"`
	Tags         []string `json:"tags"`
	AllergyFlags []string `json:"allergyFlags"`
}

// rerankProfile 送入 LLM 的使用者摘要
type rerankProfile struct {
	BMI       *float64 `json:"bmi,omitempty"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	KcalLow   int      `json:"kcal_low"`
	KcalHigh  int      `json:"kcal_high"`
	Allergies []string `json:"allergies"`
	Diseases  []string `json:"diseases"`
}

// Rerank 請 LLM 重排候選順序。
// 任一失敗（呼叫錯誤、JSON 壞損、order 缺失或為空）都退回規則排序；
// order 存在時即為權威：不在 order 裡的候選直接淘汰，未知 id 靜默丟棄，
// 即使因此結果清空也不回退。
func (r *LLMReranker) Rerank(ctx context.Context, cls profile.Classification, prof *common.UserProfile, pool []ScoredCandidate) ([]ScoredCandidate, string) {
	if len(pool) == 0 {
		return pool, ""
	}

	prompt := buildRerankPrompt(cls, prof, pool)

	content, err := r.client.ProcessRequest(ctx, prompt)
	if err != nil {
		// LLM 失敗一律本地回復，不對呼叫端曝露
		return pool, ""
	}

	resp, err := parseRerankResponse(content)
	if err != nil {
		common.LogWarn("重排序回應解析失敗，退回規則排序",
			zap.Error(err),
			zap.Int("response_length", len(content)),
		)
		return pool, ""
	}
	if len(resp.Order) == 0 {
		return pool, ""
	}

	byID := make(map[string]ScoredCandidate, len(pool))
	for _, c := range pool {
		byID[c.Item.ID] = c
	}

	ordered := make([]ScoredCandidate, 0, len(resp.Order))
	dropped := 0
	for _, id := range resp.Order {
		c, ok := byID[id]
		if !ok {
			// 池中不存在的 id 靜默丟棄，不得以空項目補位
			dropped++
			continue
		}
		ordered = append(ordered, c)
		delete(byID, id)
	}
	if dropped > 0 {
		common.LogDebug("重排序回傳未知 id",
			zap.Int("dropped", dropped),
		)
	}

	return ordered, strings.TrimSpace(resp.Reason)
}

// parseRerankResponse 解析重排序回應：先嚴格解析，
// 失敗時補上未加引號的鍵再寬鬆解析一次
func parseRerankResponse(content string) (rerankResponse, error) {
	raw := common.ExtractJSONObject(content)

	var resp rerankResponse
	if err := common.ParseJSONStrict(raw, &resp); err == nil {
		return resp, nil
	}
	resp = rerankResponse{}
	if err := common.ParseJSON(common.QuoteJSONKeys(raw), &resp); err != nil {
		return rerankResponse{}, err
	}
	return resp, nil
}

// buildRerankPrompt 組裝重排序 prompt：使用者摘要與最多 24 筆瘦身候選
func buildRerankPrompt(cls profile.Classification, prof *common.UserProfile, pool []ScoredCandidate) string {
	rp := rerankProfile{
		BMI:       cls.BMI,
		Category:  string(cls.Category.BMI),
		Tags:      cls.Tags,
		KcalLow:   cls.Window.Low,
		KcalHigh:  cls.Window.High,
		Allergies: prof.Allergies,
		Diseases:  prof.Diseases,
	}
	menus := make([]slimMenu, 0, len(pool))
	for _, c := range pool {
		menus = append(menus, slimMenu{
			ID:           c.Item.ID,
			Name:         c.Item.Name,
			Kcal:         c.Item.Kcal,
			Tags:         c.Item.Tags,
			AllergyFlags: c.Item.AllergyFlags,
		})
	}

	profJSON, _ := common.ToJSON(rp)
	menuJSON, _ := common.ToJSON(menus)

	return fmt.Sprintf(`你是營養師，請嚴格回傳 JSON。

使用者檔案：
%s

候選菜單（最多 24 筆）：
%s

任務：
1. 綜合 BMI、疾病、過敏與熱量標籤，將菜單 id 由最適合到最不適合排序
2. 用不超過 120 字寫一句分析
3. 只回傳一個獨立的 JSON，所有鍵都必須使用雙引號，不要加任何說明文字

回傳格式：{"order": ["id1", "id2"], "reason": "分析"}`, profJSON, menuJSON)
}
