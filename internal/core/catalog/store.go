package catalog

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"meal-recommender/internal/pkg/common"
)

// Store 菜單目錄的查詢能力：
// 依標籤集合查詢最多 limit 筆；標籤為空時回傳最多 limit 筆未過濾項目。
// 目錄不保證任何排序，核心也不得假設目錄順序有意義。
type Store interface {
	FetchByTags(ctx context.Context, tags []string, limit int) ([]common.MenuItem, error)
}

// MapDocument 將原始目錄文件轉換為 MenuItem。
// id 或 name 缺失視為壞記錄，回傳 false 由呼叫端靜默跳過，
// 單筆壞記錄不得中斷整批查詢。
func MapDocument(id string, raw map[string]interface{}) (common.MenuItem, bool) {
	id = strings.TrimSpace(id)
	name := toString(raw["name"])
	if id == "" || name == "" {
		return common.MenuItem{}, false
	}

	item := common.MenuItem{
		ID:           id,
		Name:         name,
		Kcal:         toIntSafe(raw["kcal"]),
		Ingredients:  toStringList(raw["ingredients"]),
		Steps:        toStringList(raw["steps"]),
		Tags:         toStringList(raw["tags"]),
		AllergyFlags: toStringList(raw["allergy_flags"]),
	}

	// 舊文件同時存在 imageUrl 與 image 兩種鍵
	if img := toString(raw["imageUrl"]); img != "" {
		item.ImageURL = img
	} else if img := toString(raw["image"]); img != "" {
		item.ImageURL = img
	}

	// allergyFlags 為較新的鍵名，優先於 allergy_flags
	if flags := toStringList(raw["allergyFlags"]); len(flags) > 0 {
		item.AllergyFlags = flags
	}

	item.NormalizeLists()
	return item, true
}

// toString 安全取出字串
func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// toIntSafe 安全轉換整數，無法解析時回傳 nil（序列化時整欄位省略，避免 NaN）
func toIntSafe(v interface{}) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		i := n
		return &i
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil
		}
		i := int(f)
		return &i
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return &i
		}
	}
	return nil
}

// toStringList 將任意值轉換為字串清單（單一字串視為單元素清單）
func toStringList(v interface{}) []string {
	switch vv := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if e == nil {
				continue
			}
			switch s := e.(type) {
			case string:
				out = append(out, s)
			case json.Number:
				out = append(out, s.String())
			default:
				continue
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
