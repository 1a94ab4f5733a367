package numeric_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"draftly/internal/numeric"
)

func TestNumberToWordsIndian(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"zero", 0, "Zero Rupees Only"},
		{"single digit", 7, "Seven Rupees Only"},
		{"teen", 13, "Thirteen Rupees Only"},
		{"round tens", 40, "Forty Rupees Only"},
		{"hundreds", 905, "Nine Hundred Five Rupees Only"},
		{"thousands", 59000, "Fifty Nine Thousand Rupees Only"},
		{"lakh grouping", 123000, "One Lakh Twenty Three Thousand Rupees Only"},
		{"full lakh", 123456, "One Lakh Twenty Three Thousand Four Hundred Fifty Six Rupees Only"},
		{"crore", 12345678, "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight Rupees Only"},
		{"large crore", 10_000_000_000, "One Thousand Crore Rupees Only"},
		{"past int64", 1e19, "One Lakh Crore Crore Rupees Only"},
		{"past int64 mixed", 1.5e19, "One Lakh Fifty Thousand Crore Crore Rupees Only"},
		{"paise", 100.5, "One Hundred Rupees and Fifty Paise Only"},
		{"only paise", 0.25, "Zero Rupees and Twenty Five Paise Only"},
		{"paise carry", 9.999, "Ten Rupees Only"},
		{"negative uses magnitude", -59000, "Fifty Nine Thousand Rupees Only"},
		{"nan", math.NaN(), "Zero Rupees Only"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, numeric.NumberToWordsIndian(tc.amount))
		})
	}
}

func TestNumberToWordsIndian_Deterministic(t *testing.T) {
	first := numeric.NumberToWordsIndian(43660)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, numeric.NumberToWordsIndian(43660))
	}
	assert.Equal(t, "Forty Three Thousand Six Hundred Sixty Rupees Only", first)
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		def  float64
		want float64
	}{
		{"float", 12.5, 0, 12.5},
		{"int", 3, 0, 3},
		{"int64", int64(9), 0, 9},
		{"json number", json.Number("18"), 0, 18},
		{"numeric string", " 42.75 ", 0, 42.75},
		{"bad string", "twelve", 7, 7},
		{"empty string", "", 1, 1},
		{"nil", nil, 3, 3},
		{"bool", true, 5, 5},
		{"map", map[string]any{"a": 1}, 2, 2},
		{"nan string", "NaN", 4, 4},
		{"inf", math.Inf(1), 6, 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, numeric.CoerceNumber(tc.in, tc.def))
		})
	}
}

func TestCoerceAmount(t *testing.T) {
	assert.Equal(t, numeric.MaxAmount, numeric.CoerceAmount(1e200, 0))
	assert.Equal(t, -numeric.MaxAmount, numeric.CoerceAmount("-1e300", 0))
	assert.Equal(t, 12.5, numeric.CoerceAmount("12.5", 0))
	assert.Equal(t, 3.0, numeric.CoerceAmount(nil, 3))
}

func TestCoerceInt(t *testing.T) {
	assert.Equal(t, 40, numeric.CoerceInt("40%", 0))
	assert.Equal(t, 33, numeric.CoerceInt(33.4, 0))
	assert.Equal(t, 34, numeric.CoerceInt(33.5, 0))
	assert.Equal(t, 9, numeric.CoerceInt("abc", 9))
	assert.Equal(t, 0, numeric.CoerceInt(nil, 0))
}

func TestCoerceString(t *testing.T) {
	assert.Equal(t, "hello", numeric.CoerceString("  hello "))
	assert.Equal(t, "12.5", numeric.CoerceString(12.5))
	assert.Equal(t, "true", numeric.CoerceString(true))
	assert.Equal(t, "", numeric.CoerceString(nil))
	assert.Equal(t, "", numeric.CoerceString(map[string]any{"x": 1}))
}

func TestCoerceStringList(t *testing.T) {
	assert.Equal(t, []string{"a", "2"}, numeric.CoerceStringList([]any{"a", " ", 2, nil}))
	assert.Equal(t, []string{"solo"}, numeric.CoerceStringList("solo"))
	assert.Nil(t, numeric.CoerceStringList(nil))
	assert.Empty(t, numeric.CoerceStringList([]any{}))
}
