package core

import (
	"net/http"
	"net/url"

	"github.com/julienschmidt/httprouter"
)

// ListSources renvoie les citations de source distinctes, triées.
func (a *App) ListSources(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sources, err := a.DB.ListSources()
	if err != nil {
		Errorf("liste des sources: %v", err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return
	}
	if sources == nil {
		sources = []string{}
	}
	repondreJSON(w, http.StatusOK, sources)
}

// TableauxParSource liste les tableaux citant une source donnée. Le segment
// de chemin arrive encodé.
func (a *App) TableauxParSource(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	source := ps.ByName("source")
	if decode, err := url.PathUnescape(source); err == nil {
		source = decode
	}
	if source == "" {
		erreurJSON(w, http.StatusBadRequest, "source requise")
		return
	}

	tableaux, err := a.DB.ListTableauxBySource(source)
	if err != nil {
		Errorf("tableaux de la source %q: %v", source, err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return
	}

	type resume struct {
		ID    int    `json:"id"`
		Titre string `json:"titre"`
	}
	out := make([]resume, 0, len(tableaux))
	for i := range tableaux {
		out = append(out, resume{ID: tableaux[i].ID, Titre: tableaux[i].Titre})
	}
	repondreJSON(w, http.StatusOK, out)
}
