package similarity

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "accents stripped", in: "As de Québec", want: "as de quebec"},
		{name: "whitespace collapsed", in: "  Éperviers   de  Sorel ", want: "eperviers de sorel"},
		{name: "already plain", in: "Huskies", want: "huskies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio("As de Québec", "as de quebec"); got != 1 {
		t.Fatalf("expected accent-only variants to score 1, got %v", got)
	}
	if got := Ratio("", ""); got != 0 {
		t.Fatalf("expected empty names to score 0, got %v", got)
	}

	near := Ratio("Estacades de Trois-Rivières", "Estacades Trois-Rivieres")
	far := Ratio("Estacades de Trois-Rivières", "Albatros du Collège Notre-Dame")
	if near <= far {
		t.Fatalf("expected near match %v to beat far match %v", near, far)
	}
	if near < 0.8 {
		t.Fatalf("expected near match above 0.8, got %v", near)
	}
}
