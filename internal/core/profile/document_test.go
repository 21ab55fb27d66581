package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-recommender/internal/pkg/common"
)

func TestMapDocumentSnakeCase(t *testing.T) {
	p := MapDocument("user@example.com", map[string]interface{}{
		"height_cm":   float64(170),
		"weight_kg":   72.5,
		"fat_percent": 22.0,
		"age_years":   float64(30),
		"allergies":   []interface{}{"peanut", "shrimp"},
		"diseases":    []interface{}{"diabetes"},
	})

	require.NotNil(t, p)
	assert.Equal(t, "user@example.com", p.Email)
	require.NotNil(t, p.HeightCm)
	assert.Equal(t, 170, *p.HeightCm)
	require.NotNil(t, p.WeightKg)
	assert.Equal(t, 72.5, *p.WeightKg)
	require.NotNil(t, p.FatPercent)
	assert.Equal(t, 22.0, *p.FatPercent)
	assert.Equal(t, []string{"peanut", "shrimp"}, p.Allergies)
	assert.Equal(t, []string{"diabetes"}, p.Diseases)
}

func TestMapDocumentCamelCaseFallback(t *testing.T) {
	p := MapDocument("user@example.com", map[string]interface{}{
		"weightKg":   "68.5",
		"fatPercent": 19.5,
		"heightCm":   "175",
	})

	require.NotNil(t, p.WeightKg)
	assert.Equal(t, 68.5, *p.WeightKg)
	require.NotNil(t, p.HeightCm)
	assert.Equal(t, 175, *p.HeightCm)
	require.NotNil(t, p.FatPercent)
	assert.Equal(t, 19.5, *p.FatPercent)
}

func TestMapDocumentNonFiniteNumbers(t *testing.T) {
	// ParseFloat 會接受 "NaN"/"Infinity" 字串，必須擋在管線外
	for _, bad := range []string{"NaN", "Infinity", "-Infinity", "+Inf"} {
		p := MapDocument("user@example.com", map[string]interface{}{
			"height_cm": "170",
			"weight_kg": bad,
		})
		assert.Nil(t, p.WeightKg, "weight_kg=%s 應視為缺值", bad)

		// 缺少體重時體位落回 NORMAL，摘要不得洩漏 NaN
		cls := Classify(p, 10)
		assert.Equal(t, common.ZoneNormal, cls.Category.BMI)
		assert.NotContains(t, cls.Summary(), "NaN")
	}
}

func TestMapDocumentMissingAndGarbage(t *testing.T) {
	p := MapDocument("user@example.com", map[string]interface{}{
		"height_cm": "not-a-number",
		"allergies": "shrimp", // 單一字串視為單元素清單
	})

	assert.Nil(t, p.HeightCm)
	assert.Nil(t, p.WeightKg)
	assert.Nil(t, p.FatPercent)
	assert.Equal(t, []string{"shrimp"}, p.Allergies)
	// 清單欄位永遠不為 nil
	assert.NotNil(t, p.Diseases)
	assert.Empty(t, p.Diseases)
}
