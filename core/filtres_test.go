package core

import (
	"testing"

	"github.com/ansadev/PortailStat/db"
)

func TestNormaliseSelecteur(t *testing.T) {
	tests := []struct {
		entree    string
		principal string
		sous      string
	}{
		{"Population ~ Masculine", "Population", "Masculine"},
		{"Population~Masculine", "Population", "Masculine"},
		{"Population ~ Ensemble", "Population", ""},
		{"Population ~ total", "Population", ""},
		{"Population", "Population", ""},
	}
	for _, tt := range tests {
		principal, sous := normaliseSelecteur(tt.entree)
		if principal != tt.principal || sous != tt.sous {
			t.Fatalf("normaliseSelecteur(%q) = (%q, %q), attendu (%q, %q)",
				tt.entree, principal, sous, tt.principal, tt.sous)
		}
	}
}

func TestLignesCorrespondantes(t *testing.T) {
	lignes := []db.LigneIndicateur{
		ligne(1, "Population", "", "", -1),
		ligne(2, "Population ~ Masculine", "", "", -1),
		ligne(3, "Population~Féminine", "", "", -1),
		ligne(4, "Superficie", "", "", -1),
	}

	t.Run("aucun selecteur", func(t *testing.T) {
		if ids := LignesCorrespondantes(lignes, nil); ids != nil {
			t.Fatalf("ids %v, attendu nil (aucune restriction)", ids)
		}
	})

	t.Run("composite exact", func(t *testing.T) {
		ids := LignesCorrespondantes(lignes, []string{"Population ~ Masculine"})
		if len(ids) != 1 || ids[0] != 2 {
			t.Fatalf("ids %v, attendu [2]", ids)
		}
	})

	t.Run("espaces indifferents", func(t *testing.T) {
		// Le label stocké sans espaces autour du ~ doit quand même matcher.
		ids := LignesCorrespondantes(lignes, []string{"Population ~ Féminine"})
		if len(ids) != 1 || ids[0] != 3 {
			t.Fatalf("ids %v, attendu [3]", ids)
		}
	})

	t.Run("ensemble replie sur le principal", func(t *testing.T) {
		ids := LignesCorrespondantes(lignes, []string{"Population ~ ensemble"})
		if len(ids) != 1 || ids[0] != 1 {
			t.Fatalf("ids %v, attendu [1]", ids)
		}
	})

	t.Run("ou entre selecteurs", func(t *testing.T) {
		ids := LignesCorrespondantes(lignes, []string{"Superficie", "Population ~ Masculine"})
		if len(ids) != 2 {
			t.Fatalf("ids %v, attendu deux correspondances", ids)
		}
	})

	t.Run("aucune correspondance", func(t *testing.T) {
		ids := LignesCorrespondantes(lignes, []string{"Inexistant"})
		if ids == nil || len(ids) != 0 {
			t.Fatalf("ids %v, attendu liste vide non nulle", ids)
		}
	})
}
