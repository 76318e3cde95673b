package core

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// TableauStructure restitue le tableau entier restructuré, sans filtre.
func (a *App) TableauStructure(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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
	repondreJSON(w, http.StatusOK, PivotTableau(tableau, lignes, donnees))
}
