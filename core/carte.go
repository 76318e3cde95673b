package core

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// TableauCarte agrège un tableau par wilaya pour la carte choroplèthe:
// années disponibles triées et, pour l'année la plus ancienne, la moyenne
// des valeurs de chaque wilaya arrondie à deux décimales.
func (a *App) TableauCarte(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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
	if !strings.EqualFold(tableau.EtiquetteLigne, "wilaya") {
		erreurJSON(w, http.StatusBadRequest, "ce tableau ne contient pas de données par wilaya")
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
	for i := range lignes {
		labels[int64(lignes[i].ID)] = lignes[i].Label
	}

	// annee -> wilaya -> valeurs observées
	parAnnee := make(map[string]map[string][]float64)
	for i := range donnees {
		d := &donnees[i]
		if d.Colonne == "" || !d.LigneID.Valid || !d.Valeur.Valid {
			continue
		}
		wilaya := labels[d.LigneID.Int64]
		if wilaya == "" {
			continue
		}
		if parAnnee[d.Colonne] == nil {
			parAnnee[d.Colonne] = make(map[string][]float64)
		}
		parAnnee[d.Colonne][wilaya] = append(parAnnee[d.Colonne][wilaya], d.Valeur.Float64)
	}

	annees := make([]string, 0, len(parAnnee))
	for annee := range parAnnee {
		annees = append(annees, annee)
	}
	sort.Slice(annees, func(i, j int) bool {
		vi, ei := strconv.Atoi(annees[i])
		vj, ej := strconv.Atoi(annees[j])
		if ei == nil && ej == nil {
			return vi < vj
		}
		return annees[i] < annees[j]
	})

	valeursParDefaut := map[string]float64{}
	if len(annees) > 0 {
		for wilaya, valeurs := range parAnnee[annees[0]] {
			somme := 0.0
			for _, v := range valeurs {
				somme += v
			}
			moyenne := somme / float64(len(valeurs))
			valeursParDefaut[wilaya] = math.Round(moyenne*100) / 100
		}
	}

	repondreJSON(w, http.StatusOK, map[string]interface{}{
		"titre":   tableau.Titre,
		"annees":  annees,
		"valeurs": valeursParDefaut,
	})
}
