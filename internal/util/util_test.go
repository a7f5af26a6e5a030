package util

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Assembleia Geral Ordinária 2026": "assembleia-geral-ordinaria-2026",
		"  AGE: obras & reforma!  ":       "age-obras-reforma",
		"Eleição de Síndico":              "eleicao-de-sindico",
		"---":                             "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequireString(t *testing.T) {
	if err := RequireString(" ", "DB_DSN"); err == nil || err.Error() != "DB_DSN obrigatório" {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RequireString("x", "DB_DSN"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
