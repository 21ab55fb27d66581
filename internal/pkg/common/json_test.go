package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	err := ParseJSON(`{"a": 1} 額外文字`, &v)
	assert.Error(t, err)
}

func TestParseJSONStrictRejectsUnknownFields(t *testing.T) {
	var v struct {
		Order []string `json:"order"`
	}
	err := ParseJSONStrict(`{"order": ["a"], "extra": true}`, &v)
	assert.Error(t, err)

	err = ParseJSON(`{"order": ["a"], "extra": true}`, &v)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v.Order)
}

func TestExtractJSONObject(t *testing.T) {
	got := ExtractJSONObject("```json\n{\"order\": [\"a\"]}\n```")
	assert.Equal(t, `{"order": ["a"]}`, got)

	got = ExtractJSONObject(`前言 {"a": {"b": 1}} 結語`)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	// 沒有物件時原樣回傳
	got = ExtractJSONObject("完全不是 JSON")
	assert.Equal(t, "完全不是 JSON", got)
}

func TestQuoteJSONKeys(t *testing.T) {
	got := QuoteJSONKeys(`{order: ["a"], reason: "ok"}`)
	assert.Equal(t, `{"order": ["a"], "reason": "ok"}`, got)
}

func TestMenuItemNormalizeLists(t *testing.T) {
	m := MenuItem{ID: "m1", Name: "n"}
	m.NormalizeLists()

	out, err := ToJSON(m)
	require.NoError(t, err)
	assert.Contains(t, out, `"ingredients":[]`)
	assert.Contains(t, out, `"tags":[]`)
	assert.NotContains(t, out, "null")
	// kcal 缺值時整欄位省略
	assert.NotContains(t, out, "kcal")
}

func TestHasAllergenCaseInsensitive(t *testing.T) {
	m := MenuItem{AllergyFlags: []string{"Peanut"}}
	assert.True(t, m.HasAllergen(map[string]struct{}{"peanut": {}}))
	assert.False(t, m.HasAllergen(map[string]struct{}{"shrimp": {}}))
	assert.False(t, m.HasAllergen(nil))
}

func TestLowercaseSet(t *testing.T) {
	set := LowercaseSet([]string{" Peanut ", "SHRIMP", "", "  "})
	assert.Len(t, set, 2)
	_, ok := set["peanut"]
	assert.True(t, ok)
	_, ok = set["shrimp"]
	assert.True(t, ok)
}
