package core

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ansadev/PortailStat/db"
)

func seedTableauWilaya(t *testing.T, a *App) int {
	t.Helper()
	categorieID, err := a.DB.CreateCategorie("Territoire")
	if err != nil {
		t.Fatal(err)
	}
	themeID, err := a.DB.CreateTheme("Régions", categorieID)
	if err != nil {
		t.Fatal(err)
	}

	val := func(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }
	feuille := &db.FeuilleImport{
		Tableau: db.Tableau{NomFeuille: "carte", Titre: "Population par wilaya", EtiquetteLigne: "Wilaya", ThemeID: themeID, Source: "ONS"},
		Lignes: []db.LigneImport{
			{
				Ligne: db.LigneIndicateur{Label: "Adrar"},
				Donnees: []db.Donnee{
					{Colonne: "2019", Valeur: val(7.777), CategorieID: categorieID},
					{Colonne: "2020", Valeur: val(8.1), CategorieID: categorieID},
					{Colonne: "S1 2020", Valeur: val(8), CategorieID: categorieID},
				},
			},
			{
				Ligne: db.LigneIndicateur{Label: "Nouakchott"},
				Donnees: []db.Donnee{
					{Colonne: "2019", Valeur: val(10), CategorieID: categorieID},
					{Colonne: "2019", Valeur: val(11), CategorieID: categorieID},
					{Colonne: "2020", Statut: sql.NullString{String: "N/D", Valid: true}, CategorieID: categorieID},
				},
			},
		},
	}
	id, err := a.DB.SaveFeuille(feuille)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestTableauCarte(t *testing.T) {
	a := appTest(t)
	id := seedTableauWilaya(t, a)
	router := routeurTest(a)

	req := httptest.NewRequest(http.MethodGet, "/api/tableaux/"+strconv.Itoa(id)+"/carte", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code %d: %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Titre   string             `json:"titre"`
		Annees  []string           `json:"annees"`
		Valeurs map[string]float64 `json:"valeurs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}

	if res.Titre != "Population par wilaya" {
		t.Fatalf("titre %q", res.Titre)
	}
	attendu := []string{"2019", "2020", "S1 2020"}
	if len(res.Annees) != len(attendu) {
		t.Fatalf("années %v, attendu %v", res.Annees, attendu)
	}
	for i := range attendu {
		if res.Annees[i] != attendu[i] {
			t.Fatalf("années %v, attendu %v (tri numérique puis lexicographique)", res.Annees, attendu)
		}
	}

	// Valeurs par défaut: moyenne de l'année la plus ancienne, arrondie à
	// deux décimales; le statut N/D de Nouakchott en 2020 ne compte pas.
	if len(res.Valeurs) != 2 {
		t.Fatalf("valeurs %v, attendu 2 wilayas", res.Valeurs)
	}
	if res.Valeurs["Nouakchott"] != 10.5 {
		t.Fatalf("Nouakchott = %v, attendu 10.5", res.Valeurs["Nouakchott"])
	}
	if res.Valeurs["Adrar"] != 7.78 {
		t.Fatalf("Adrar = %v, attendu 7.78", res.Valeurs["Adrar"])
	}
}

func TestTableauCarteNonWilaya(t *testing.T) {
	a := appTest(t)
	id := seedTableau(t, a)
	router := routeurTest(a)

	req := httptest.NewRequest(http.MethodGet, "/api/tableaux/"+strconv.Itoa(id)+"/carte", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code %d, attendu 400", rec.Code)
	}
}

func TestTableauCarteInconnu(t *testing.T) {
	a := appTest(t)
	router := routeurTest(a)

	req := httptest.NewRequest(http.MethodGet, "/api/tableaux/999/carte", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code %d, attendu 404", rec.Code)
	}
}
