package commodity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ExactAcrossLanguages(t *testing.T) {
	r := MustResolver()

	cases := map[string][]string{
		"tamatar":                {"tomato"},
		"Tomato price":           {"tomato"},
		"pyaz ke bhao":           {"onion"},
		"टमाटर का भाव":           {"tomato"},
		"कांदा आणि बटाटा":        {"onion", "potato"},
		"gehun aur chana":        {"wheat", "chana"},
		"Wheat, wheat and WHEAT": {"wheat"},
	}
	for input, want := range cases {
		assert.Equal(t, want, r.Resolve(input), "Resolve(%q)", input)
	}
}

func TestResolve_EmptyAndStopwordsOnly(t *testing.T) {
	r := MustResolver()

	assert.Empty(t, r.Resolve(""))
	assert.Empty(t, r.Resolve("   "))
	assert.Empty(t, r.Resolve("price and rate today"))
	assert.Empty(t, r.Resolve("aaj ka bhav kya hai"))
}

func TestResolve_UnknownTokenPassesThrough(t *testing.T) {
	r := MustResolver()

	got := r.Resolve("xyzxyz")
	require.Len(t, got, 1)
	assert.Equal(t, "xyzxyz", got[0])

	m := r.ResolveDetailed("xyzxyz")
	require.Len(t, m, 1)
	assert.False(t, m[0].Known())
	assert.Equal(t, MethodPassthrough, m[0].Method)
}

func TestResolve_FuzzyWithinThreshold(t *testing.T) {
	r := MustResolver()

	m := r.ResolveDetailed("tamatr")
	require.Len(t, m, 1)
	assert.Equal(t, "tomato", m[0].Key)
	assert.Equal(t, MethodFuzzy, m[0].Method)
	assert.Equal(t, 1, m[0].Distance)

	// "onoin" is a transposition of "onion": distance 2, threshold max(2, 5/3).
	assert.Equal(t, []string{"onion"}, r.Resolve("onoin"))
}

func TestResolve_SubstringContainment(t *testing.T) {
	r := MustResolver()

	m := r.ResolveDetailed("tomatoess")
	require.Len(t, m, 1)
	assert.Equal(t, "tomato", m[0].Key)
	assert.Equal(t, MethodSubstring, m[0].Method)

	// "tamat" covers five of the seven runes of "tamatar".
	assert.Equal(t, []string{"tomato"}, r.Resolve("tamat"))
}

func TestResolve_FieldOperationWordsAreNotCrops(t *testing.T) {
	r := MustResolver()

	assert.Empty(t, r.Resolve("water"))
	assert.Equal(t, []string{"wheat"}, r.Resolve("when should I water wheat"))
	assert.Equal(t, []string{"wheat"}, r.Resolve("best time to sow wheat"))
	assert.Equal(t, []string{"onion"}, r.Resolve("soil test for onion"))
	assert.Equal(t, []string{"tomato"}, r.Resolve("pest spray on tomato"))
	assert.Equal(t, []string{"chana"}, r.Resolve("जल्दी चना"))
}

func TestResolve_PhraseBeatsParts(t *testing.T) {
	r := MustResolver()

	assert.Equal(t, []string{"moong"}, r.Resolve("green gram price"))
	assert.Equal(t, []string{"wheat", "tur"}, r.Resolve("wheat and red gram"))
}

func TestResolve_PreservesFirstOccurrenceOrder(t *testing.T) {
	r := MustResolver()

	assert.Equal(t, []string{"onion", "wheat", "rice"}, r.Resolve("kanda, gehu, dhan, pyaz"))
}

func TestCanonical_ProviderLabels(t *testing.T) {
	r := MustResolver()

	cases := map[string]string{
		"Paddy(Dhan)(Common)":         "rice",
		"Bengal Gram(Gram)(Whole)":    "chana",
		"Arhar (Tur/Red Gram)(Whole)": "tur",
		"Green Gram (Moong)(Whole)":   "moong",
		"Bhindi(Ladies Finger)":       "okra",
		"Onion":                       "onion",
	}
	for label, want := range cases {
		got, ok := r.Canonical(label)
		assert.True(t, ok, "Canonical(%q) ok", label)
		assert.Equal(t, want, got, "Canonical(%q)", label)
	}

	got, ok := r.Canonical("Dragon Fruit")
	assert.False(t, ok)
	assert.Equal(t, "dragon fruit", got)
}

func TestDisplayName(t *testing.T) {
	r := MustResolver()

	assert.Equal(t, "टमाटर", r.DisplayName("tomato", "hi"))
	assert.Equal(t, "Tomato", r.DisplayName("tomato", "ta"))
	assert.Equal(t, "xyz", r.DisplayName("xyz", "en"))
	assert.True(t, r.Known("tomato"))
	assert.False(t, r.Known("tamatar"))
}

func TestNewResolverFromYAML_RejectsConflicts(t *testing.T) {
	_, err := NewResolverFromYAML([]byte(`
commodities:
  - key: a
    synonyms: [shared]
  - key: b
    synonyms: [shared]
`))
	require.Error(t, err)
}
