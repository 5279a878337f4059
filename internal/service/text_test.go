package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	cases := map[string]string{
		"  tomato   price \t":          "tomato price",
		"pani\x00 kab\x07 dein":          "pani kab dein",
		"gehun \xff\xfeka bhav":          "gehun ka bhav",
		"Water early.\n\n  Mulch beds.": "Water early.\nMulch beds.",
		"कांदा  भाव":                     "कांदा भाव",
		" \n\t ":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanText(in), "%q", in)
	}
}
