package core

import (
	"database/sql"
	"testing"

	"github.com/ansadev/PortailStat/db"
)

func ligne(id int, label, code, parent string, ordre int64) db.LigneIndicateur {
	l := db.LigneIndicateur{ID: id, Label: label, Code: code, ParentCode: parent}
	if ordre >= 0 {
		l.Ordre = sql.NullInt64{Int64: ordre, Valid: true}
	}
	return l
}

func labels(entrees []EntreeArbre) []string {
	out := make([]string, len(entrees))
	for i, e := range entrees {
		out[i] = e.Label
	}
	return out
}

func TestConstruireArbreStructure(t *testing.T) {
	// L'entrée arrive déjà triée (ordre nul en dernier, ordre, label).
	lignes := []db.LigneIndicateur{
		ligne(1, "Population", "POP", "", 1),
		ligne(2, "Urbaine", "POP.U", "POP", 2),
		ligne(3, "Rurale", "POP.R", "POP", 3),
		ligne(4, "Orpheline", "X", "INCONNU", -1),
	}

	entrees := ConstruireArbre(lignes)
	attendu := []string{"Population", "Urbaine", "Rurale", "Orpheline"}
	if got := labels(entrees); len(got) != len(attendu) {
		t.Fatalf("labels %v, attendu %v", got, attendu)
	} else {
		for i := range attendu {
			if got[i] != attendu[i] {
				t.Fatalf("labels %v, attendu %v", got, attendu)
			}
		}
	}

	profondeurs := []int{0, 1, 1, 0}
	for i, e := range entrees {
		if e.Profondeur != profondeurs[i] {
			t.Fatalf("profondeur de %q = %d, attendu %d", e.Label, e.Profondeur, profondeurs[i])
		}
	}
	if !entrees[0].AEnfants || entrees[1].AEnfants {
		t.Fatal("indicateur AEnfants incorrect")
	}
}

func TestConstruireArbreCycle(t *testing.T) {
	// A et B se référencent mutuellement: chacun doit sortir exactement une
	// fois, sans boucle infinie.
	lignes := []db.LigneIndicateur{
		ligne(1, "A", "A", "B", 1),
		ligne(2, "B", "B", "A", 2),
		ligne(3, "C", "C", "", 3),
	}

	entrees := ConstruireArbre(lignes)
	if len(entrees) != 3 {
		t.Fatalf("%d entrées, attendu 3: %v", len(entrees), labels(entrees))
	}
	vus := map[string]int{}
	for _, e := range entrees {
		vus[e.Label]++
	}
	for _, l := range []string{"A", "B", "C"} {
		if vus[l] != 1 {
			t.Fatalf("%q vu %d fois: %v", l, vus[l], labels(entrees))
		}
	}
}

func TestConstruireArbreAutoreference(t *testing.T) {
	lignes := []db.LigneIndicateur{
		ligne(1, "Boucle", "A", "A", 1),
	}
	entrees := ConstruireArbre(lignes)
	if len(entrees) != 1 || entrees[0].Profondeur != 0 {
		t.Fatalf("entrées %v", entrees)
	}
}

func TestConstruireArbreHerite(t *testing.T) {
	lignes := []db.LigneIndicateur{
		ligne(1, "Total", "", "", -1),
		ligne(2, "Urbain ~ Homme", "", "", -1),
		ligne(3, "Urbain ~ Femme", "", "", -1),
		ligne(4, "Rural ~ Homme", "", "", -1),
	}

	entrees := ConstruireArbre(lignes)
	attendu := []struct {
		label      string
		profondeur int
	}{
		{"Total", 0},
		{"Urbain", 0},
		{"Homme", 1},
		{"Femme", 1},
		{"Rural", 0},
		{"Homme", 1},
	}
	if len(entrees) != len(attendu) {
		t.Fatalf("%d entrées, attendu %d: %v", len(entrees), len(attendu), labels(entrees))
	}
	for i, a := range attendu {
		if entrees[i].Label != a.label || entrees[i].Profondeur != a.profondeur {
			t.Fatalf("entrée %d = (%q, %d), attendu (%q, %d)",
				i, entrees[i].Label, entrees[i].Profondeur, a.label, a.profondeur)
		}
	}

	// Les principaux synthétiques n'ont pas de ligne propre.
	if entrees[1].Ligne != nil || !entrees[1].AEnfants {
		t.Fatalf("principal synthétique inattendu: %+v", entrees[1])
	}
	if entrees[0].Ligne == nil {
		t.Fatal("Total doit garder sa ligne")
	}
}
