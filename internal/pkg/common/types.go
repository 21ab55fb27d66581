package common

import (
	"strings"
)

// Zone 健康指標的粗分類區間
type Zone string

const (
	ZoneLow    Zone = "L"
	ZoneNormal Zone = "N"
	ZoneHigh   Zone = "H"
)

// HealthCategory 三軸健康分類（體重 / BMI / 體脂）
// 注意：體重區間固定沿用 BMI 區間，與來源行為一致
type HealthCategory struct {
	Weight Zone `json:"weight"`
	BMI    Zone `json:"bmi"`
	Fat    Zone `json:"fat"`
}

// UserProfile 使用者健康檔案（每次請求讀取的唯讀快照）
type UserProfile struct {
	Email      string   `json:"email"`
	HeightCm   *int     `json:"height_cm,omitempty"`
	WeightKg   *float64 `json:"weight_kg,omitempty"`
	FatPercent *float64 `json:"fat_percent,omitempty"`
	AgeYears   *int     `json:"age_years,omitempty"`
	Allergies  []string `json:"allergies"`
	Diseases   []string `json:"diseases"`
}

// AllergySet 回傳小寫化的過敏原集合
func (p *UserProfile) AllergySet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Allergies))
	for _, a := range p.Allergies {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			set[a] = struct{}{}
		}
	}
	return set
}

// MenuItem 菜單項目（取得後視為不可變值）
type MenuItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Kcal         *int     `json:"kcal,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Steps        []string `json:"steps"`
	Tags         []string `json:"tags"`
	AllergyFlags []string `json:"allergyFlags"`
}

// HasAllergen 檢查項目是否帶有集合中任一過敏原（不分大小寫）
func (m *MenuItem) HasAllergen(allergySet map[string]struct{}) bool {
	for _, f := range m.AllergyFlags {
		if _, ok := allergySet[strings.ToLower(f)]; ok {
			return true
		}
	}
	return false
}

// NormalizeLists 確保序列化時清單欄位為 []、不是 null
func (m *MenuItem) NormalizeLists() {
	if m.Ingredients == nil {
		m.Ingredients = []string{}
	}
	if m.Steps == nil {
		m.Steps = []string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.AllergyFlags == nil {
		m.AllergyFlags = []string{}
	}
}

// KcalWindow 熱量窗口 [low, high]，以指標傳遞時 nil 表示未設限
type KcalWindow struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Mid 窗口中點
func (w KcalWindow) Mid() float64 {
	return float64(w.Low+w.High) / 2
}

// MenuScore 單輪評分結果（只在同一輪評分內有意義，不落地）
type MenuScore struct {
	MenuID string  `json:"menuId"`
	Score  float64 `json:"score"`
}

// Meta 推薦結果的批次統計
type Meta struct {
	TotalAfterFilter int  `json:"totalAfterFilter"`
	ExcludedCount    int  `json:"excludedCount"`
	BatchSize        int  `json:"batchSize"`
	ExclusionReset   bool `json:"exclusionReset,omitempty"`
}

// RecommendationResult 單次推薦請求的結果（產生後不可變）
type RecommendationResult struct {
	AnalysisMessage string      `json:"analysisMessage"`
	Items           []MenuItem  `json:"items"`
	Scores          []MenuScore `json:"scores,omitempty"`
	Meta            Meta        `json:"meta"`
}

// ItemIDs 回傳結果中所有菜單 ID（依序）
func (r *RecommendationResult) ItemIDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		ids = append(ids, it.ID)
	}
	return ids
}
