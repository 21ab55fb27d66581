package profile

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"meal-recommender/internal/pkg/common"
)

// MapDocument 將原始檔案文件轉換為 UserProfile。
// 舊資料同時存在 snake_case 與 camelCase 鍵名，兩者都接受。
func MapDocument(email string, raw map[string]interface{}) *common.UserProfile {
	p := &common.UserProfile{
		Email:     email,
		HeightCm:  anyToInt(pick(raw, "height_cm", "heightCm")),
		WeightKg:  anyToFloat(pick(raw, "weight_kg", "weightKg")),
		AgeYears:  anyToInt(pick(raw, "age_years", "ageYears")),
		Allergies: anyToStringList(pick(raw, "allergies", "allergy")),
		Diseases:  anyToStringList(pick(raw, "diseases", "disease")),
	}
	p.FatPercent = anyToFloat(pick(raw, "fat_percent", "fatPercent"))

	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if p.Diseases == nil {
		p.Diseases = []string{}
	}
	return p
}

// pick 依序取出第一個存在的鍵
func pick(raw map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// anyToInt 安全轉換整數，無法解析時回傳 nil
func anyToInt(v interface{}) *int {
	if f := anyToFloat(v); f != nil {
		i := int(*f)
		return &i
	}
	return nil
}

// anyToFloat 安全轉換浮點數，無法解析時回傳 nil（杜絕 NaN 進入管線）
func anyToFloat(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case int:
		return finite(float64(n))
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return finite(f)
		}
	case string:
		// ParseFloat 接受 "NaN"/"Infinity"，一律視為無效值
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return finite(f)
		}
	}
	return nil
}

// finite 非有限數值回傳 nil
func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// anyToStringList 將任意值轉換為字串清單
func anyToStringList(v interface{}) []string {
	switch vv := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return vv
	case string:
		if vv == "" {
			return nil
		}
		return []string{vv}
	}
	return nil
}
