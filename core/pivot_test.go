package core

import (
	"database/sql"
	"testing"

	"github.com/ansadev/PortailStat/db"
)

func donnee(ligneID int64, colonne, unite string, valeur float64) db.Donnee {
	return db.Donnee{
		LigneID: sql.NullInt64{Int64: ligneID, Valid: true},
		Colonne: colonne,
		Unite:   unite,
		Valeur:  sql.NullFloat64{Float64: valeur, Valid: true},
	}
}

func TestFormatValeur(t *testing.T) {
	tests := []struct {
		nom           string
		d             db.Donnee
		titrePourcent bool
		attendu       string
	}{
		{"statut prioritaire", db.Donnee{Statut: sql.NullString{String: "N/D", Valid: true}}, false, "N/D"},
		{"nulle", db.Donnee{}, false, ""},
		{"fraction redeployee", donnee(1, "2020", "%", 0.452), false, "45.2%"},
		{"fraction titre pourcent", donnee(1, "2020", "%", 0.452), true, "45.2"},
		{"pourcentage deja entier", donnee(1, "2020", "%", 57.7), false, "57.7%"},
		{"pourcentage arrondi une decimale", donnee(1, "2020", "%", 0.4567), false, "45.7%"},
		{"valeur simple entiere", donnee(1, "2020", "", 12), false, "12"},
		{"valeur simple arrondie", donnee(1, "2020", "", 12.3456), false, "12.35"},
		{"zeros de queue", donnee(1, "2020", "", 12.10), false, "12.1"},
		{"negatif fraction", donnee(1, "2020", "%", -0.5), false, "-50%"},
	}
	for _, tt := range tests {
		t.Run(tt.nom, func(t *testing.T) {
			if got := FormatValeur(&tt.d, tt.titrePourcent); got != tt.attendu {
				t.Fatalf("FormatValeur = %q, attendu %q", got, tt.attendu)
			}
		})
	}
}

func TestCleColonne(t *testing.T) {
	tests := []struct{ entree, attendu string }{
		{"2015 ~ Homme", "2015 ~ Homme"},
		{"2015~Homme", "2015 ~ Homme"},
		{"  2015  ~  Homme  ", "2015 ~ Homme"},
		{"2023", "2023"},
	}
	for _, tt := range tests {
		if got := cleColonne(tt.entree); got != tt.attendu {
			t.Fatalf("cleColonne(%q) = %q, attendu %q", tt.entree, got, tt.attendu)
		}
	}
}

func TestPivotTableauStructure(t *testing.T) {
	tableau := &db.Tableau{ID: 1, Titre: "Population résidente", EtiquetteLigne: "Indicateur"}
	lignes := []db.LigneIndicateur{
		ligne(1, "Population", "POP", "", 1),
		ligne(2, "Urbaine", "POP.U", "POP", 2),
	}
	donnees := []db.Donnee{
		donnee(2, "2020", "", 715.9),
		donnee(2, "2021", "", 728.1),
	}

	res := PivotTableau(tableau, lignes, donnees)

	if len(res.Colonnes) != 2 || res.Colonnes[0].Principal != "2020" || res.Colonnes[1].Principal != "2021" {
		t.Fatalf("colonnes inattendues: %+v", res.Colonnes)
	}
	if res.HasSousIndicateurs {
		t.Fatal("pas de sous-indicateurs hérités attendus")
	}

	if len(res.Lignes) != 2 {
		t.Fatalf("%d lignes, attendu 2", len(res.Lignes))
	}
	parent := res.Lignes[0]
	// Parent sans valeur propre mais avec descendants: en-tête de section.
	if !parent.EstSection || parent.Profondeur != 0 || parent.Code != "POP" {
		t.Fatalf("ligne parent inattendue: %+v", parent)
	}
	enfant := res.Lignes[1]
	if enfant.EstSection || enfant.Profondeur != 1 {
		t.Fatalf("ligne enfant inattendue: %+v", enfant)
	}
	if enfant.Valeurs["2020"] != "715.9" || enfant.Valeurs["2021"] != "728.1" {
		t.Fatalf("valeurs inattendues: %+v", enfant.Valeurs)
	}
}

func TestPivotTableauHerite(t *testing.T) {
	tableau := &db.Tableau{ID: 2, Titre: "Répartition par milieu", EtiquetteLigne: "Indicateur"}
	lignes := []db.LigneIndicateur{
		ligne(1, "Urbain ~ Homme", "", "", -1),
		ligne(2, "Urbain ~ Femme", "", "", -1),
	}
	donnees := []db.Donnee{
		donnee(1, "2020 ~ Effectif", "", 100),
		donnee(1, "2020 ~ Part", "%", 51.2),
		donnee(2, "2020 ~ Effectif", "", 96),
		{
			LigneID: sql.NullInt64{Int64: 2, Valid: true},
			Colonne: "2020 ~ Part",
			Statut:  sql.NullString{String: "NS", Valid: true},
		},
	}

	res := PivotTableau(tableau, lignes, donnees)

	if !res.HasSousIndicateurs {
		t.Fatal("sous-indicateurs hérités attendus")
	}

	// Colonnes groupées en ordre de première rencontre.
	attendu := []ColonneGroupe{
		{Principal: "2020", Sous: "Effectif"},
		{Principal: "2020", Sous: "Part"},
	}
	if len(res.Colonnes) != len(attendu) {
		t.Fatalf("colonnes %+v", res.Colonnes)
	}
	for i, a := range attendu {
		if res.Colonnes[i] != a {
			t.Fatalf("colonne %d = %+v, attendu %+v", i, res.Colonnes[i], a)
		}
	}

	// Principal synthétique + deux sous-lignes.
	if len(res.Lignes) != 3 {
		t.Fatalf("%d lignes, attendu 3", len(res.Lignes))
	}
	if res.Lignes[0].Label != "Urbain" || !res.Lignes[0].EstSection {
		t.Fatalf("ligne 0 inattendue: %+v", res.Lignes[0])
	}
	homme := res.Lignes[1]
	if homme.Valeurs["2020 ~ Effectif"] != "100" || homme.Valeurs["2020 ~ Part"] != "51.2%" {
		t.Fatalf("valeurs homme: %+v", homme.Valeurs)
	}
	femme := res.Lignes[2]
	if femme.Valeurs["2020 ~ Part"] != "NS" {
		t.Fatalf("valeurs femme: %+v", femme.Valeurs)
	}

	if len(res.Statuts) != 1 || res.Statuts[0] != "NS" {
		t.Fatalf("statuts %v", res.Statuts)
	}
}
