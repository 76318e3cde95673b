package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestTypeTableau(t *testing.T) {
	tests := []struct {
		nom      string
		lignes   []string
		colonnes []string
		attendu  string
	}{
		{"séries annuelles", []string{"Population"}, []string{"2019", "2020"}, "annees"},
		{"sans colonnes", []string{"Population"}, nil, "annees"},
		{"ventilation par groupes", []string{"Population"}, []string{"Masculin", "Féminin", "Total"}, "groupes"},
		{"données territoriales", []string{"Wilaya de l'Adrar"}, []string{"Superficie"}, "carte"},
		{"générique", []string{"Population"}, []string{"Superficie"}, "generique"},
	}
	for _, tt := range tests {
		t.Run(tt.nom, func(t *testing.T) {
			if got := typeTableau(tt.lignes, tt.colonnes); got != tt.attendu {
				t.Fatalf("typeTableau = %q, attendu %q", got, tt.attendu)
			}
		})
	}
}

func TestTableauAnalyse(t *testing.T) {
	a := appTest(t)
	id := seedTableau(t, a)
	router := routeurTest(a)

	req := httptest.NewRequest(http.MethodGet, "/api/tableaux/"+strconv.Itoa(id)+"/analyse", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code %d: %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Titre   string         `json:"titre"`
		Type    string         `json:"type"`
		Donnees []pointAnalyse `json:"donnees"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}

	if res.Titre != "Répartition" || res.Type != "annees" {
		t.Fatalf("titre %q type %q, attendu Répartition / annees", res.Titre, res.Type)
	}
	if len(res.Donnees) != 4 {
		t.Fatalf("%d points, attendu 4: %+v", len(res.Donnees), res.Donnees)
	}
	p := res.Donnees[2]
	if p.CategorieLigne != "Urbain ~ Homme" || p.CategorieColonne != "2022" || p.Valeur != 48.1 {
		t.Fatalf("point inattendu: %+v", p)
	}
}

func TestTableauAnalyseInconnu(t *testing.T) {
	a := appTest(t)
	router := routeurTest(a)

	req := httptest.NewRequest(http.MethodGet, "/api/tableaux/999/analyse", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code %d, attendu 404", rec.Code)
	}
}
