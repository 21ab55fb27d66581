package profile

import (
	"context"
	"fmt"
	"strings"

	"meal-recommender/internal/pkg/common"
)

// Store 使用者檔案儲存（核心唯讀）
type Store interface {
	// GetProfile 查詢使用者檔案，查無時回傳 common.ErrProfileNotFound
	GetProfile(ctx context.Context, email string) (*common.UserProfile, error)
}

// Classification 檔案分類結果：健康分類、飲食標籤與熱量窗口
type Classification struct {
	BMI      *float64 // BMI 無法定義時為 nil
	Category common.HealthCategory
	Tags     []string // 依序、去重，上限由呼叫端設定
	Window   common.KcalWindow
}

// BMIOf 計算 BMI。身高或體重缺失、身高 <= 0 時回傳 (0, false)
func BMIOf(heightCm *int, weightKg *float64) (float64, bool) {
	if heightCm == nil || weightKg == nil || *heightCm <= 0 {
		return 0, false
	}
	m := float64(*heightCm) / 100.0
	return *weightKg / (m * m), true
}

// ZoneOfBMI BMI 區間：<18.5 低、<25 正常、其餘高；無法定義時 fail-open 為正常
func ZoneOfBMI(bmi float64, ok bool) common.Zone {
	switch {
	case !ok:
		return common.ZoneNormal
	case bmi < 18.5:
		return common.ZoneLow
	case bmi < 25.0:
		return common.ZoneNormal
	default:
		return common.ZoneHigh
	}
}

// ZoneOfFat 體脂區間：<18 低、<=28 正常、其餘高；缺失時為正常
func ZoneOfFat(fatPercent *float64) common.Zone {
	switch {
	case fatPercent == nil:
		return common.ZoneNormal
	case *fatPercent < 18.0:
		return common.ZoneLow
	case *fatPercent <= 28.0:
		return common.ZoneNormal
	default:
		return common.ZoneHigh
	}
}

// CategoryOf 推導三軸健康分類
// 體重區間直接沿用 BMI 區間，不另行計算（沿用來源行為）
func CategoryOf(p *common.UserProfile) common.HealthCategory {
	bmi, ok := BMIOf(p.HeightCm, p.WeightKg)
	bmiZone := ZoneOfBMI(bmi, ok)
	return common.HealthCategory{
		Weight: bmiZone,
		BMI:    bmiZone,
		Fat:    ZoneOfFat(p.FatPercent),
	}
}

// DietTags 由 BMI 區間與疾病描述推導飲食標籤（依序、去重）
func DietTags(cat common.HealthCategory, diseases []string) []string {
	var tags []string
	seen := make(map[string]struct{})
	add := func(t string) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}

	switch cat.BMI {
	case common.ZoneHigh:
		add("calorie_deficit")
		add("balanced")
	case common.ZoneLow:
		add("high_protein")
		add("balanced")
	default:
		add("balanced")
	}

	// 疾病描述為自由文字，不分大小寫掃描（韓文與英文詞彙皆比對）
	d := strings.ToLower(strings.Join(diseases, " "))
	if strings.Contains(d, "당뇨") || strings.Contains(d, "diabetes") {
		add("low_sugar")
	}
	if strings.Contains(d, "고혈압") || strings.Contains(d, "hypertension") {
		add("low_sodium")
	}

	return tags
}

// CalorieWindowFor 依 BMI 區間決定熱量窗口
func CalorieWindowFor(zone common.Zone) common.KcalWindow {
	switch zone {
	case common.ZoneHigh:
		return common.KcalWindow{Low: 200, High: 500}
	case common.ZoneLow:
		return common.KcalWindow{Low: 400, High: 900}
	default:
		return common.KcalWindow{Low: 300, High: 700}
	}
}

// Classify 一次完成檔案分類：BMI、分類、標籤（上限 maxTags）、熱量窗口
func Classify(p *common.UserProfile, maxTags int) Classification {
	bmi, ok := BMIOf(p.HeightCm, p.WeightKg)
	cat := CategoryOf(p)

	tags := DietTags(cat, p.Diseases)
	if maxTags > 0 && len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	c := Classification{
		Category: cat,
		Tags:     tags,
		Window:   CalorieWindowFor(cat.BMI),
	}
	if ok {
		c.BMI = &bmi
	}
	return c
}

// Summary 規則分析摘要：BMI（一位小數，無法定義時以 - 代替）、分類代碼、
// 熱量窗口與逗號串接的標籤（為空時以 - 代替）
func (c Classification) Summary() string {
	bmiTxt := "-"
	if c.BMI != nil {
		bmiTxt = fmt.Sprintf("%.1f", *c.BMI)
	}
	tagTxt := strings.Join(c.Tags, ",")
	if tagTxt == "" {
		tagTxt = "-"
	}
	return fmt.Sprintf("BMI %s(%s)，%d~%dkcal，標籤：%s",
		bmiTxt, c.Category.BMI, c.Window.Low, c.Window.High, tagTxt)
}
