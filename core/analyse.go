package core

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/julienschmidt/httprouter"
)

type pointAnalyse struct {
	CategorieLigne   string  `json:"categorie_ligne"`
	CategorieColonne string  `json:"categorie_colonne"`
	Valeur           float64 `json:"valeur"`
}

func estChiffres(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// typeTableau devine la nature d'un tableau d'après ses axes: séries
// annuelles, ventilation par groupes, données par wilaya, sinon générique.
func typeTableau(lignes, colonnes []string) string {
	// Sans colonne discordante (y compris sans colonne du tout), la série
	// est réputée annuelle.
	annees := true
	for _, c := range colonnes {
		if !estChiffres(c) && !strings.HasPrefix(c, "20") && !strings.HasPrefix(c, "19") {
			annees = false
			break
		}
	}
	if annees {
		return "annees"
	}
	for _, c := range colonnes {
		switch c {
		case "Féminin", "Masculin", "Total":
			return "groupes"
		}
	}
	for _, l := range lignes {
		if strings.Contains(strings.ToLower(l), "wilaya") {
			return "carte"
		}
	}
	return "generique"
}

// TableauAnalyse expose le tableau sous forme de triplets bruts accompagnés
// du type détecté, pour les vues graphiques du portail.
func (a *App) TableauAnalyse(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant de tableau invalide")
		return
	}
	tableau, err := a.DB.GetTableau(id)
	if err != nil {
		erreurJSON(w, http.StatusNotFound, "tableau non trouvé")
		return
	}
	lignes, err := a.DB.ListLignes(id)
	if err != nil {
		Errorf("lignes du tableau %d: %v", id, err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return
	}
	donnees, err := a.DB.ListDonnees(id)
	if err != nil {
		Errorf("données du tableau %d: %v", id, err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return
	}

	labels := make(map[int64]string, len(lignes))
	var labelsLignes []string
	for i := range lignes {
		labels[int64(lignes[i].ID)] = lignes[i].Label
		labelsLignes = append(labelsLignes, lignes[i].Label)
	}

	var colonnes []string
	points := make([]pointAnalyse, 0, len(donnees))
	for i := range donnees {
		d := &donnees[i]
		if d.Colonne != "" {
			colonnes = append(colonnes, d.Colonne)
		}
		p := pointAnalyse{CategorieColonne: d.Colonne}
		if d.LigneID.Valid {
			p.CategorieLigne = labels[d.LigneID.Int64]
		}
		if d.Valeur.Valid {
			p.Valeur = d.Valeur.Float64
		}
		points = append(points, p)
	}

	repondreJSON(w, http.StatusOK, map[string]interface{}{
		"titre":   tableau.Titre,
		"type":    typeTableau(labelsLignes, colonnes),
		"donnees": points,
	})
}
