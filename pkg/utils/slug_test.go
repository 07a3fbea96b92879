package utils

import "testing"

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Séance découverte", "seance-decouverte"},
		{"Photo Du Cabinet", "photo-du-cabinet"},
		{"  Déontologie & Éthique  ", "deontologie-ethique"},
		{"rendez-vous", "rendez-vous"},
		{"Ça, c'est l'été!", "ca-c-est-l-ete"},
		{"100% relaxation", "100-relaxation"},
		{"---", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := GenerateSlug(tc.input); got != tc.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
