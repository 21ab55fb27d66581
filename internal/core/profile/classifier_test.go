package profile

import (
	"testing"

	"meal-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestBMIOf(t *testing.T) {
	bmi, ok := BMIOf(intPtr(170), floatPtr(72.25))
	require.True(t, ok)
	assert.InDelta(t, 25.0, bmi, 0.001)

	_, ok = BMIOf(nil, floatPtr(70))
	assert.False(t, ok)

	_, ok = BMIOf(intPtr(170), nil)
	assert.False(t, ok)

	_, ok = BMIOf(intPtr(0), floatPtr(70))
	assert.False(t, ok)
}

func TestZoneOfBMI(t *testing.T) {
	assert.Equal(t, common.ZoneLow, ZoneOfBMI(18.4, true))
	assert.Equal(t, common.ZoneNormal, ZoneOfBMI(18.5, true))
	assert.Equal(t, common.ZoneNormal, ZoneOfBMI(24.9, true))
	assert.Equal(t, common.ZoneHigh, ZoneOfBMI(25.0, true))
	// BMI 無法定義時 fail-open 為正常
	assert.Equal(t, common.ZoneNormal, ZoneOfBMI(0, false))
}

func TestZoneOfFat(t *testing.T) {
	assert.Equal(t, common.ZoneLow, ZoneOfFat(floatPtr(17.9)))
	assert.Equal(t, common.ZoneNormal, ZoneOfFat(floatPtr(18.0)))
	assert.Equal(t, common.ZoneNormal, ZoneOfFat(floatPtr(28.0)))
	assert.Equal(t, common.ZoneHigh, ZoneOfFat(floatPtr(28.1)))
	assert.Equal(t, common.ZoneNormal, ZoneOfFat(nil))
}

func TestCategoryOfWeightFollowsBMI(t *testing.T) {
	p := &common.UserProfile{
		HeightCm: intPtr(160),
		WeightKg: floatPtr(90),
	}
	cat := CategoryOf(p)
	assert.Equal(t, common.ZoneHigh, cat.BMI)
	assert.Equal(t, cat.BMI, cat.Weight)
}

func TestDietTags(t *testing.T) {
	tests := []struct {
		name     string
		cat      common.HealthCategory
		diseases []string
		want     []string
	}{
		{
			name: "高 BMI",
			cat:  common.HealthCategory{BMI: common.ZoneHigh},
			want: []string{"calorie_deficit", "balanced"},
		},
		{
			name: "低 BMI",
			cat:  common.HealthCategory{BMI: common.ZoneLow},
			want: []string{"high_protein", "balanced"},
		},
		{
			name: "正常 BMI",
			cat:  common.HealthCategory{BMI: common.ZoneNormal},
			want: []string{"balanced"},
		},
		{
			name:     "糖尿病（韓文）",
			cat:      common.HealthCategory{BMI: common.ZoneNormal},
			diseases: []string{"당뇨"},
			want:     []string{"balanced", "low_sugar"},
		},
		{
			name:     "高血壓（英文、大小寫混用）",
			cat:      common.HealthCategory{BMI: common.ZoneNormal},
			diseases: []string{"Hypertension"},
			want:     []string{"balanced", "low_sodium"},
		},
		{
			name:     "多重疾病不重複",
			cat:      common.HealthCategory{BMI: common.ZoneHigh},
			diseases: []string{"diabetes", "당뇨", "고혈압"},
			want:     []string{"calorie_deficit", "balanced", "low_sugar", "low_sodium"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DietTags(tt.cat, tt.diseases))
		})
	}
}

func TestCalorieWindowFor(t *testing.T) {
	assert.Equal(t, common.KcalWindow{Low: 200, High: 500}, CalorieWindowFor(common.ZoneHigh))
	assert.Equal(t, common.KcalWindow{Low: 300, High: 700}, CalorieWindowFor(common.ZoneNormal))
	assert.Equal(t, common.KcalWindow{Low: 400, High: 900}, CalorieWindowFor(common.ZoneLow))
}

func TestClassifyTagCap(t *testing.T) {
	p := &common.UserProfile{
		HeightCm: intPtr(160),
		WeightKg: floatPtr(90),
		Diseases: []string{"diabetes", "hypertension"},
	}
	cls := Classify(p, 2)
	assert.Len(t, cls.Tags, 2)
	assert.Equal(t, []string{"calorie_deficit", "balanced"}, cls.Tags)
}

func TestClassifyMissingMeasurements(t *testing.T) {
	cls := Classify(&common.UserProfile{}, 10)
	assert.Nil(t, cls.BMI)
	assert.Equal(t, common.ZoneNormal, cls.Category.BMI)
	assert.Equal(t, []string{"balanced"}, cls.Tags)
	assert.Equal(t, common.KcalWindow{Low: 300, High: 700}, cls.Window)
}

func TestSummary(t *testing.T) {
	p := &common.UserProfile{
		HeightCm: intPtr(170),
		WeightKg: floatPtr(72.25),
	}
	cls := Classify(p, 10)
	assert.Equal(t, "BMI 25.0(H)，200~500kcal，標籤：calorie_deficit,balanced", cls.Summary())
}

func TestSummaryPlaceholders(t *testing.T) {
	cls := Classification{
		Category: common.HealthCategory{BMI: common.ZoneNormal},
		Window:   common.KcalWindow{Low: 300, High: 700},
	}
	assert.Equal(t, "BMI -(N)，300~700kcal，標籤：-", cls.Summary())
}
