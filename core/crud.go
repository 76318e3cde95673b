package core

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/ansadev/PortailStat/db"
)

// exigeAuth garde les mutations du référentiel: il faut une session valide.
func (a *App) exigeAuth(w http.ResponseWriter, r *http.Request) bool {
	if _, err := a.UtilisateurCourant(r); err != nil {
		erreurJSON(w, http.StatusUnauthorized, "authentification requise")
		return false
	}
	return true
}

type categorieJSON struct {
	ID  int    `json:"id"`
	Nom string `json:"nom"`
}

type themeJSON struct {
	ID          int    `json:"id"`
	Nom         string `json:"nom"`
	CategorieID int    `json:"categorie_id"`
}

type tableauJSON struct {
	ID             int    `json:"id"`
	NomFeuille     string `json:"nom_feuille"`
	Titre          string `json:"titre"`
	EtiquetteLigne string `json:"etiquette_ligne"`
	ThemeID        int    `json:"theme_id"`
	Source         string `json:"source"`
}

func versTableauJSON(t *db.Tableau) tableauJSON {
	return tableauJSON{
		ID:             t.ID,
		NomFeuille:     t.NomFeuille,
		Titre:          t.Titre,
		EtiquetteLigne: t.EtiquetteLigne,
		ThemeID:        t.ThemeID,
		Source:         t.Source,
	}
}

func statutIntrouvable(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, db.ErrIntrouvable) {
		erreurJSON(w, http.StatusNotFound, message)
	} else {
		erreurJSON(w, http.StatusInternalServerError, "opération impossible")
	}
}

// ---- Catégories ----

func (a *App) ListCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	categories, err := a.DB.ListCategories()
	if err != nil {
		Errorf("liste des catégories: %v", err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return
	}
	out := make([]categorieJSON, 0, len(categories))
	for _, c := range categories {
		out = append(out, categorieJSON{ID: c.ID, Nom: c.Nom})
	}
	repondreJSON(w, http.StatusOK, out)
}

func (a *App) GetCategorie(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	c, err := a.DB.GetCategorie(id)
	if err != nil {
		statutIntrouvable(w, err, "catégorie non trouvée")
		return
	}
	repondreJSON(w, http.StatusOK, categorieJSON{ID: c.ID, Nom: c.Nom})
}

func (a *App) CreateCategorie(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !a.exigeAuth(w, r) {
		return
	}
	var req categorieJSON
	if err := decodeJSON(r, &req); err != nil || req.Nom == "" {
		erreurJSON(w, http.StatusBadRequest, "nom requis")
		return
	}
	id, err := a.DB.CreateCategorie(req.Nom)
	if err != nil {
		Errorf("création de catégorie: %v", err)
		erreurJSON(w, http.StatusInternalServerError, "création impossible")
		return
	}
	repondreJSON(w, http.StatusCreated, categorieJSON{ID: id, Nom: req.Nom})
}

func (a *App) UpdateCategorie(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !a.exigeAuth(w, r) {
		return
	}
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req categorieJSON
	if err := decodeJSON(r, &req); err != nil || req.Nom == "" {
		erreurJSON(w, http.StatusBadRequest, "nom requis")
		return
	}
	if err := a.DB.UpdateCategorie(&db.Categorie{ID: id, Nom: req.Nom}); err != nil {
		statutIntrouvable(w, err, "catégorie non trouvée")
		return
	}
	repondreJSON(w, http.StatusOK, categorieJSON{ID: id, Nom: req.Nom})
}

func (a *App) DeleteCategorie(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !a.exigeAuth(w, r) {
		return
	}
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	if err := a.DB.DeleteCategorie(id); err != nil {
		statutIntrouvable(w, err, "catégorie non trouvée")
		return
	}
	repondreJSON(w, http.StatusOK, map[string]string{"message": "catégorie supprimée"})
}

// ---- Thèmes ----

func (a *App) ListThemes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	categorieID, _ := strconv.Atoi(r.URL.Query().Get("categorie_id"))
	themes, err := a.DB.ListThemes(categorieID)
	if err != nil {
		Errorf("liste des thèmes: %v", err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return
	}
	out := make([]themeJSON, 0, len(themes))
	for _, t := range themes {
		out = append(out, themeJSON{ID: t.ID, Nom: t.Nom, CategorieID: t.CategorieID})
	}
	repondreJSON(w, http.StatusOK, out)
}

func (a *App) GetTheme(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	t, err := a.DB.GetTheme(id)
	if err != nil {
		statutIntrouvable(w, err, "thème non trouvé")
		return
	}
	repondreJSON(w, http.StatusOK, themeJSON{ID: t.ID, Nom: t.Nom, CategorieID: t.CategorieID})
}

func (a *App) CreateTheme(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !a.exigeAuth(w, r) {
		return
	}
	var req themeJSON
	if err := decodeJSON(r, &req); err != nil || req.Nom == "" || req.CategorieID <= 0 {
		erreurJSON(w, http.StatusBadRequest, "nom et categorie_id requis")
		return
	}
	if _, err := a.DB.GetCategorie(req.CategorieID); err != nil {
		erreurJSON(w, http.StatusBadRequest, "catégorie inconnue")
		return
	}
	id, err := a.DB.CreateTheme(req.Nom, req.CategorieID)
	if err != nil {
		Errorf("création de thème: %v", err)
		erreurJSON(w, http.StatusInternalServerError, "création impossible")
		return
	}
	req.ID = id
	repondreJSON(w, http.StatusCreated, req)
}

func (a *App) UpdateTheme(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !a.exigeAuth(w, r) {
		return
	}
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	var req themeJSON
	if err := decodeJSON(r, &req); err != nil || req.Nom == "" || req.CategorieID <= 0 {
		erreurJSON(w, http.StatusBadRequest, "nom et categorie_id requis")
		return
	}
	if err := a.DB.UpdateTheme(&db.Theme{ID: id, Nom: req.Nom, CategorieID: req.CategorieID}); err != nil {
		statutIntrouvable(w, err, "thème non trouvé")
		return
	}
	req.ID = id
	repondreJSON(w, http.StatusOK, req)
}

func (a *App) DeleteTheme(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !a.exigeAuth(w, r) {
		return
	}
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	if err := a.DB.DeleteTheme(id); err != nil {
		statutIntrouvable(w, err, "thème non trouvé")
		return
	}
	repondreJSON(w, http.StatusOK, map[string]string{"message": "thème supprimé"})
}

// ---- Tableaux ----

func (a *App) ListTableaux(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	themeID, _ := strconv.Atoi(r.URL.Query().Get("theme_id"))
	tableaux, err := a.DB.ListTableaux(themeID)
	if err != nil {
		Errorf("liste des tableaux: %v", err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return
	}
	out := make([]tableauJSON, 0, len(tableaux))
	for i := range tableaux {
		out = append(out, versTableauJSON(&tableaux[i]))
	}
	repondreJSON(w, http.StatusOK, out)
}

func (a *App) CreateTableau(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !a.exigeAuth(w, r) {
		return
	}
	var req tableauJSON
	if err := decodeJSON(r, &req); err != nil || req.Titre == "" || req.ThemeID <= 0 {
		erreurJSON(w, http.StatusBadRequest, "titre et theme_id requis")
		return
	}
	if _, err := a.DB.GetTheme(req.ThemeID); err != nil {
		erreurJSON(w, http.StatusBadRequest, "thème inconnu")
		return
	}
	id, err := a.DB.CreateTableau(&db.Tableau{
		NomFeuille:     req.NomFeuille,
		Titre:          req.Titre,
		EtiquetteLigne: req.EtiquetteLigne,
		ThemeID:        req.ThemeID,
		Source:         req.Source,
	})
	if err != nil {
		Errorf("création de tableau: %v", err)
		erreurJSON(w, http.StatusInternalServerError, "création impossible")
		return
	}
	req.ID = id
	repondreJSON(w, http.StatusCreated, req)
}

func (a *App) GetTableauHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	t, err := a.DB.GetTableau(id)
	if err != nil {
		statutIntrouvable(w, err, "tableau non trouvé")
		return
	}
	repondreJSON(w, http.StatusOK, versTableauJSON(t))
}

func (a *App) UpdateTableau(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !a.exigeAuth(w, r) {
		return
	}
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	courant, err := a.DB.GetTableau(id)
	if err != nil {
		statutIntrouvable(w, err, "tableau non trouvé")
		return
	}
	req := versTableauJSON(courant)
	if err := decodeJSON(r, &req); err != nil || req.Titre == "" {
		erreurJSON(w, http.StatusBadRequest, "titre requis")
		return
	}
	maj := db.Tableau{
		ID:             id,
		NomFeuille:     req.NomFeuille,
		Titre:          req.Titre,
		EtiquetteLigne: req.EtiquetteLigne,
		ThemeID:        req.ThemeID,
		Source:         req.Source,
	}
	if err := a.DB.UpdateTableau(&maj); err != nil {
		statutIntrouvable(w, err, "tableau non trouvé")
		return
	}
	req.ID = id
	repondreJSON(w, http.StatusOK, req)
}

func (a *App) DeleteTableau(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !a.exigeAuth(w, r) {
		return
	}
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant invalide")
		return
	}
	if err := a.DB.DeleteTableau(id); err != nil {
		statutIntrouvable(w, err, "tableau non trouvé")
		return
	}
	repondreJSON(w, http.StatusOK, map[string]string{"message": "tableau supprimé"})
}

// ---- Données ----

// ListDonnees renvoie les observations brutes d'un tableau (?tableau_id=).
func (a *App) ListDonnees(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tableauID, err := strconv.Atoi(r.URL.Query().Get("tableau_id"))
	if err != nil || tableauID <= 0 {
		erreurJSON(w, http.StatusBadRequest, "tableau_id requis")
		return
	}
	lignes, err := a.DB.ListLignes(tableauID)
	if err != nil {
		Errorf("lignes du tableau %d: %v", tableauID, err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return
	}
	donnees, err := a.DB.ListDonnees(tableauID)
	if err != nil {
		Errorf("données du tableau %d: %v", tableauID, err)
		erreurJSON(w, http.StatusInternalServerError, "lecture impossible")
		return
	}
	repondreJSON(w, http.StatusOK, versDonneesJSON(donnees, lignes))
}
