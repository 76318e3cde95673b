package classeurs

import (
	"math"
	"testing"
	"time"
)

func texte(s string) Cellule   { return Cellule{Type: CelluleTexte, Texte: s} }
func nombre(v float64) Cellule { return Cellule{Type: CelluleNombre, Nombre: v} }

func TestParseValeur(t *testing.T) {
	tests := []struct {
		nom      string
		cellule  Cellule
		valeur   float64
		ok       bool
		pourcent bool
	}{
		{"pourcentage virgule", texte("57,7%"), 57.7, true, true},
		{"nombre simple", nombre(45.2), 45.2, true, false},
		{"texte numerique point", texte("45.2"), 45.2, true, false},
		{"milliers espace", texte("1 234,5"), 1234.5, true, false},
		{"milliers espace fine", texte("1 234"), 1234, true, false},
		{"statut", texte("N/D"), 0, false, false},
		{"vide", Cellule{Type: CelluleVide}, 0, false, false},
		{"pourcent seul", texte("%"), 0, false, true},
		{"date", Cellule{Type: CelluleDate, Date: time.Now()}, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.nom, func(t *testing.T) {
			v, ok, pourcent := ParseValeur(tt.cellule)
			if ok != tt.ok || pourcent != tt.pourcent {
				t.Fatalf("ParseValeur: ok=%v pourcent=%v, attendu ok=%v pourcent=%v", ok, pourcent, tt.ok, tt.pourcent)
			}
			if ok && math.Abs(v-tt.valeur) > 1e-9 {
				t.Fatalf("valeur %v, attendu %v", v, tt.valeur)
			}
		})
	}
}

func TestNouvelleCellule(t *testing.T) {
	// Une colonne-année reste un nombre même si elle est numérique.
	c := NouvelleCellule("2020", "2020")
	if c.Type != CelluleNombre || c.Nombre != 2020 {
		t.Fatalf("cellule %+v, attendu nombre 2020", c)
	}

	// Une série dont le rendu formaté se lit comme une date devient une date.
	c = NouvelleCellule("45292", "01-01-24")
	if c.Type != CelluleDate {
		t.Fatalf("cellule %+v, attendu une date", c)
	}
	if c.Date.Year() != 2024 || c.Date.Month() != time.January {
		t.Fatalf("date %v, attendu janvier 2024", c.Date)
	}

	c = NouvelleCellule("", "")
	if !c.EstVide() {
		t.Fatalf("cellule %+v, attendu vide", c)
	}

	c = NouvelleCellule("Population", "Population")
	if c.Type != CelluleTexte || c.Texte != "Population" {
		t.Fatalf("cellule %+v, attendu texte Population", c)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		nom     string
		cellule Cellule
		attendu string
	}{
		{"objet date", Cellule{Type: CelluleDate, Date: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)}, "janv-24"},
		{"serie plausible", nombre(45292), "janv-24"},
		{"annee hors plage serie", nombre(2020), "2020"},
		{"texte iso", texte("2023-05-10"), "mai-23"},
		{"texte libre", texte("  Population  "), "Population"},
		{"aout accentue", Cellule{Type: CelluleDate, Date: time.Date(2003, time.August, 1, 0, 0, 0, 0, time.UTC)}, "août-03"},
		{"vide", Cellule{Type: CelluleVide}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.nom, func(t *testing.T) {
			if got := FormatDate(tt.cellule); got != tt.attendu {
				t.Fatalf("FormatDate = %q, attendu %q", got, tt.attendu)
			}
		})
	}
}
