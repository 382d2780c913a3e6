package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoom(t *testing.T) {
	cases := map[string]string{
		"101":         "101",
		" 1 01 ":      "101",
		"12.3":        "12-3",
		"a12":         "A12",
		"-101-":       "101",
		"":            "",
		"101 .102":    "101-102",
		"CH101":       "101",
		"ch 101":      "101",
		"Chambre.101": "101",
		"N°7":         "7",
		"CH101-102":   "CH101-102",
		"CHB":         "CHB",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeRoom(in), "input %q", in)
	}
}

// Samples taken from the OCR export of reservation_elsofra.
func TestRoomTokens_LegacySamples(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"101", []string{"101"}},
		{"101.102", []string{"101", "102"}},
		{"101 / 102", []string{"101", "102"}},
		{"CH 214", []string{"214"}},
		{"ch214", []string{"214"}},
		{"214+214", []string{"214"}},
		{"CH101-102", []string{"101", "102"}},
		{"Chambre 101 / 102", []string{"101", "102"}},
		{"B12", []string{"B12"}},
		{"Non spécifié", []string{"NONSPÉCIFIÉ"}},
		{"  ", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RoomTokens(tc.raw), "input %q", tc.raw)
	}
}

// A room must not match a longer legacy number that merely contains it.
func TestRoomTokens_NoSubstringMatch(t *testing.T) {
	assert.NotContains(t, RoomTokens("1101"), "101")
	assert.NotContains(t, RoomTokens("101-1010"), "10")
}

// Request rooms and legacy tokens must agree on the canonical form.
func TestNormalizeRoom_AgreesWithRoomTokens(t *testing.T) {
	for _, raw := range []string{"CH101", "ch 214", "Chambre 7", "room12", "B12", "101"} {
		assert.Equal(t, []string{NormalizeRoom(raw)}, RoomTokens(raw), "input %q", raw)
	}
}
