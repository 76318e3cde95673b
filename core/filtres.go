package core

import (
	"net/http"
	"sort"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/ansadev/PortailStat/db"
)

// normaliseSelecteur canonise un sélecteur de ligne `indicateur ~ sous`.
// Un sous "ensemble" ou "total" se replie sur l'indicateur seul.
func normaliseSelecteur(s string) (principal, sous string) {
	principal, sous = decomposeComposite(s)
	switch strings.ToLower(sous) {
	case "ensemble", "total":
		sous = ""
	}
	return principal, sous
}

// LignesCorrespondantes résout les sélecteurs en identifiants de lignes.
// La comparaison se fait sur les libellés normalisés (espaces autour du `~`
// ignorés), OU entre sélecteurs. Une liste vide n'impose aucune restriction
// et renvoie nil.
func LignesCorrespondantes(lignes []db.LigneIndicateur, selecteurs []string) []int64 {
	if len(selecteurs) == 0 {
		return nil
	}
	type paire struct{ principal, sous string }
	voulues := make(map[paire]bool, len(selecteurs))
	for _, s := range selecteurs {
		principal, sous := normaliseSelecteur(s)
		voulues[paire{principal, sous}] = true
	}

	ids := []int64{}
	for i := range lignes {
		principal, sous := decomposeComposite(lignes[i].Label)
		if voulues[paire{principal, sous}] {
			ids = append(ids, int64(lignes[i].ID))
		}
	}
	return ids
}

type requeteFiltre struct {
	Lignes   []string `json:"lignes"`
	Colonnes []string `json:"colonnes"`
}

// chargeFiltre lit le tableau, ses lignes, et les observations restreintes
// par la requête de filtre.
func (a *App) chargeFiltre(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (*db.Tableau, []db.LigneIndicateur, []db.Donnee, bool) {
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant de tableau invalide")
		return nil, nil, nil, false
	}
	var req requeteFiltre
	if err := decodeJSON(r, &req); err != nil {
		erreurJSON(w, http.StatusBadRequest, "corps JSON invalide")
		return nil, nil, nil, false
	}

	tableau, err := a.DB.GetTableau(id)
	if err != nil {
		erreurJSON(w, http.StatusNotFound, "tableau non trouvé")
		return nil, nil, nil, false
	}
	lignes, err := a.DB.ListLignes(id)
	if err != nil {
		Errorf("lignes du tableau %d: %v", id, err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return nil, nil, nil, false
	}

	ligneIDs := LignesCorrespondantes(lignes, req.Lignes)
	var colonnes []string
	for _, c := range req.Colonnes {
		if c = strings.TrimSpace(c); c != "" {
			colonnes = append(colonnes, c)
		}
	}

	donnees, err := a.DB.ListDonneesFiltrees(id, ligneIDs, colonnes)
	if err != nil {
		Errorf("données filtrées du tableau %d: %v", id, err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return nil, nil, nil, false
	}
	return tableau, lignes, donnees, true
}

// Filtrer renvoie les observations filtrées à plat, sans restructuration.
func (a *App) Filtrer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, lignes, donnees, ok := a.chargeFiltre(w, r, ps)
	if !ok {
		return
	}
	repondreJSON(w, http.StatusOK, versDonneesJSON(donnees, lignes))
}

// FiltrerStructure filtre puis restructure comme GetTableStructure.
func (a *App) FiltrerStructure(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tableau, lignes, donnees, ok := a.chargeFiltre(w, r, ps)
	if !ok {
		return
	}
	repondreJSON(w, http.StatusOK, PivotTableau(tableau, lignes, donnees))
}

// FiltresOptions liste les libellés de lignes et de colonnes filtrables du
// tableau, composites développés en "principal ~ sous", triés.
func (a *App) FiltresOptions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant de tableau invalide")
		return
	}
	if _, err := a.DB.GetTableau(id); err != nil {
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

	lignesVues := make(map[string]bool)
	for i := range lignes {
		lignesVues[cleColonne(lignes[i].Label)] = true
	}
	colonnesVues := make(map[string]bool)
	for i := range donnees {
		colonnesVues[cleColonne(donnees[i].Colonne)] = true
	}

	repondreJSON(w, http.StatusOK, map[string][]string{
		"lignes":   triOuVide(lignesVues),
		"colonnes": triOuVide(colonnesVues),
	})
}

func triOuVide(m map[string]bool) []string {
	s := triCles(m)
	if s == nil {
		return []string{}
	}
	return s
}

// donneeJSON est la forme sérialisée d'une observation, le libellé de ligne
// résolu.
type donneeJSON struct {
	ID          int      `json:"id"`
	Ligne       string   `json:"ligne"`
	LigneID     *int64   `json:"ligne_id"`
	Colonne     string   `json:"colonne"`
	Unite       string   `json:"unite"`
	Source      string   `json:"source"`
	Valeur      *float64 `json:"valeur"`
	Statut      *string  `json:"statut"`
	NoteColonne *string  `json:"note_colonne"`
	CategorieID int      `json:"categorie_id"`
	TableauID   int      `json:"tableau_id"`
}

func versDonneesJSON(donnees []db.Donnee, lignes []db.LigneIndicateur) []donneeJSON {
	labels := make(map[int64]string, len(lignes))
	for i := range lignes {
		labels[int64(lignes[i].ID)] = lignes[i].Label
	}

	out := make([]donneeJSON, 0, len(donnees))
	for i := range donnees {
		d := &donnees[i]
		dj := donneeJSON{
			ID:          d.ID,
			Colonne:     d.Colonne,
			Unite:       d.Unite,
			Source:      d.Source,
			CategorieID: d.CategorieID,
			TableauID:   d.TableauID,
		}
		if d.LigneID.Valid {
			id := d.LigneID.Int64
			dj.LigneID = &id
			dj.Ligne = labels[id]
		}
		if d.Valeur.Valid {
			v := d.Valeur.Float64
			dj.Valeur = &v
		}
		if d.Statut.Valid {
			s := d.Statut.String
			dj.Statut = &s
		}
		if d.NoteColonne.Valid {
			n := d.NoteColonne.String
			dj.NoteColonne = &n
		}
		out = append(out, dj)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ligne < out[j].Ligne })
	return out
}
