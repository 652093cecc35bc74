package retroachievements

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCoercePercentage(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"percent string", "98.05%", 98.05},
		{"fraction string", "0.5676", 56.76},
		{"fraction string rounds", "0.123456", 12.35},
		{"literal zero", 0, 0},
		{"json integer", json.Number("0"), 0},
		{"json integer percentage", json.Number("80"), 80},
		{"json fraction", json.Number("0.25"), 25},
		{"padded percent string", " 12.5 % ", 12.5},
		{"full fraction", "1.0000", 100},
		{"float fraction", 0.5, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoercePercentage(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestCoercePercentageAbsent(t *testing.T) {
	assert.Nil(t, CoercePercentage(nil))
	assert.Nil(t, CoercePercentage("not a number"))
	assert.Nil(t, CoercePercentage("%"))
	assert.Nil(t, CoercePercentage([]any{}))
}

func TestCoercePercentageStaysInRange(t *testing.T) {
	got := CoercePercentage("1.5")
	require.NotNil(t, got)
	assert.Equal(t, 100.0, *got)

	got = CoercePercentage("-3%")
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)
}

func TestCoerceTriBool(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{"string one", "1", true},
		{"string zero", "0", false},
		{"empty string", "", false},
		{"string two", "2", true},
		{"json one", json.Number("1"), true},
		{"json zero", json.Number("0"), false},
		{"bool true", true, true},
		{"bool false", false, false},
		{"int", 1, true},
		{"string true", "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceTriBool(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	assert.Nil(t, CoerceTriBool(nil))
	assert.Nil(t, CoerceTriBool("maybe"))
	assert.Nil(t, CoerceTriBool(map[string]any{}))
}

func TestResolveImageURL(t *testing.T) {
	assert.Nil(t, ResolveImageURL(nil))
	assert.Nil(t, ResolveImageURL(strPtr("")))

	got := ResolveImageURL(strPtr("/Images/x.png"))
	require.NotNil(t, got)
	assert.Equal(t, BaseOrigin+"/Images/x.png", *got)

	got = ResolveImageURL(strPtr("Images/x.png"))
	require.NotNil(t, got)
	assert.Equal(t, BaseOrigin+"/Images/x.png", *got)

	got = ResolveImageURL(strPtr("https://media.retroachievements.org/Images/x.png"))
	require.NotNil(t, got)
	assert.Equal(t, "https://media.retroachievements.org/Images/x.png", *got)
}

func TestRecordLookupDistinguishesNullFromMissing(t *testing.T) {
	rec := Record{"Title": nil, "Points": json.Number("0")}

	v, ok := rec.Lookup("Title")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = rec.Lookup("Missing")
	assert.False(t, ok)

	v, ok = rec.Lookup("Points")
	assert.True(t, ok)
	assert.Equal(t, json.Number("0"), v)

	var nilRecord Record
	_, ok = nilRecord.Lookup("Title")
	assert.False(t, ok)
}

func TestRecordFirstPresentKeyWins(t *testing.T) {
	rec := Record{
		"NumAchieved":      nil,
		"NumAwardedToUser": json.Number("12"),
		"NumAwarded":       json.Number("99"),
	}

	got := rec.getInt(gameFields.NumAchieved)
	require.NotNil(t, got)
	assert.Equal(t, int64(12), *got)

	assert.Nil(t, Record{}.getInt(gameFields.NumAchieved))
	assert.Nil(t, Record{"NumAchieved": "n/a"}.getInt(gameFields.NumAchieved))
}

func TestRecordNumericStrings(t *testing.T) {
	rec := Record{"NumAwarded": "1234", "TrueRatio": "12.9", "Title": json.Number("1942")}

	n := rec.getInt(keys{"NumAwarded"})
	require.NotNil(t, n)
	assert.Equal(t, int64(1234), *n)

	n = rec.getInt(keys{"TrueRatio"})
	require.NotNil(t, n)
	assert.Equal(t, int64(12), *n)

	s := rec.getString(keys{"Title"})
	require.NotNil(t, s)
	assert.Equal(t, "1942", *s)
}
