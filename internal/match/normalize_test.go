package match

import (
	"sync"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"lowercase passthrough", "varonis", "varonis"},
		{"uppercase", "VARONIS", "varonis"},
		{"accents stripped", "Justiça Federal", "justica federal"},
		{"cedilla and circumflex", "Econômica providência", "economica providencia"},
		{"digits kept", "Relatório 2024", "relatorio 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "Caixa Econômica Federal", "relatório_JFAL_Varonis_2024.pdf", "ÀÉÎÕÜ çñ"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
		onceStrict := NormalizeStrict(in)
		if twiceStrict := NormalizeStrict(onceStrict); twiceStrict != onceStrict {
			t.Errorf("NormalizeStrict not idempotent for %q: %q != %q", in, onceStrict, twiceStrict)
		}
	}
}

func TestNormalizeAccentVariantsAgree(t *testing.T) {
	pairs := [][2]string{
		{"Justiça", "Justica"},
		{"Econômica", "Economica"},
		{"RELATÓRIO", "relatorio"},
	}
	for _, p := range pairs {
		if Normalize(p[0]) != Normalize(p[1]) {
			t.Errorf("Normalize(%q) = %q, Normalize(%q) = %q, want equal",
				p[0], Normalize(p[0]), p[1], Normalize(p[1]))
		}
	}
}

func TestNormalizeConcurrent(t *testing.T) {
	inputs := []struct{ in, want string }{
		{"Caixa Econômica Federal", "caixa economica federal"},
		{"Justiça Federal de Alagoas", "justica federal de alagoas"},
		{"relatório_JFAL_Varonis_2024.pdf", "relatorio_jfal_varonis_2024.pdf"},
		{"ÀÉÎÕÜ çñ", "aeiou cn"},
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				c := inputs[i%len(inputs)]
				if got := Normalize(c.in); got != c.want {
					t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNormalizeStrict(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"relatório_JFAL-Varonis.2024.pdf", "relatoriojfalvaronis2024pdf"},
		{"Caixa Econômica Federal", "caixa economica federal"},
		{"a+b=c", "abc"},
	}
	for _, tt := range tests {
		if got := NormalizeStrict(tt.input); got != tt.want {
			t.Errorf("NormalizeStrict(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
