package core

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

type resultatRecherche struct {
	Type   string `json:"type"`
	ID     int    `json:"id"`
	Nom    string `json:"nom"`
	Source string `json:"source,omitempty"`
}

// RechercheGlobale cherche le terme dans les catégories, les thèmes et les
// tableaux (titre ou source), insensible à la casse.
func (a *App) RechercheGlobale(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		repondreJSON(w, http.StatusOK, []resultatRecherche{})
		return
	}

	resultats := []resultatRecherche{}

	categories, err := a.DB.SearchCategories(q)
	if err != nil {
		Errorf("recherche de catégories %q: %v", q, err)
		erreurJSON(w, http.StatusInternalServerError, "recherche impossible")
		return
	}
	for _, c := range categories {
		resultats = append(resultats, resultatRecherche{Type: "Categorie", ID: c.ID, Nom: c.Nom})
	}

	themes, err := a.DB.SearchThemes(q)
	if err != nil {
		Errorf("recherche de thèmes %q: %v", q, err)
		erreurJSON(w, http.StatusInternalServerError, "recherche impossible")
		return
	}
	for _, t := range themes {
		resultats = append(resultats, resultatRecherche{Type: "Theme", ID: t.ID, Nom: t.Nom})
	}

	tableaux, err := a.DB.SearchTableaux(q)
	if err != nil {
		Errorf("recherche de tableaux %q: %v", q, err)
		erreurJSON(w, http.StatusInternalServerError, "recherche impossible")
		return
	}
	for i := range tableaux {
		resultats = append(resultats, resultatRecherche{
			Type:   "Tableau",
			ID:     tableaux[i].ID,
			Nom:    tableaux[i].Titre,
			Source: tableaux[i].Source,
		})
	}

	repondreJSON(w, http.StatusOK, resultats)
}
