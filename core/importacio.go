package core

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	classeurs "github.com/ansadev/PortailStat/modules/Importacio/Classeurs"
)

const tailleMaxClasseur = 32 << 20 // 32 Mo

// ImportExcel reçoit un classeur en multipart (champs file, theme_id,
// cat_id) et l'ingère feuille par feuille. L'appelant doit être authentifié;
// un chef de section sans droits étendus ne peut importer que dans sa
// propre catégorie.
func (a *App) ImportExcel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utilisateur, err := a.UtilisateurCourant(r)
	if err != nil {
		erreurJSON(w, http.StatusUnauthorized, "authentification requise")
		return
	}

	if err := r.ParseMultipartForm(tailleMaxClasseur); err != nil {
		erreurJSON(w, http.StatusBadRequest, "formulaire multipart invalide")
		return
	}
	fichier, entete, err := r.FormFile("file")
	if err != nil {
		erreurJSON(w, http.StatusBadRequest, "veuillez fournir le fichier, theme_id et cat_id")
		return
	}
	defer fichier.Close()

	themeID, errTheme := strconv.Atoi(r.FormValue("theme_id"))
	categorieID, errCat := strconv.Atoi(r.FormValue("cat_id"))
	if errTheme != nil || errCat != nil || themeID <= 0 || categorieID <= 0 {
		erreurJSON(w, http.StatusBadRequest, "veuillez fournir le fichier, theme_id et cat_id")
		return
	}

	if !classeurs.ExtensionValide(entete.Filename) {
		erreurJSON(w, http.StatusBadRequest, "extension de fichier non acceptée")
		return
	}

	// Périmètre des chefs de section: leur catégorie, rien d'autre.
	if utilisateur.IsChef && !utilisateur.IsStaff && !utilisateur.IsSuperuser {
		if !utilisateur.CategorieID.Valid || int(utilisateur.CategorieID.Int64) != categorieID {
			erreurJSON(w, http.StatusForbidden, "catégorie hors de votre périmètre")
			return
		}
	}

	if _, err := a.DB.GetTheme(themeID); err != nil {
		erreurJSON(w, http.StatusBadRequest, "thème inconnu")
		return
	}
	if _, err := a.DB.GetCategorie(categorieID); err != nil {
		erreurJSON(w, http.StatusBadRequest, "catégorie inconnue")
		return
	}

	resultat, err := classeurs.ImporterClasseur(a.DB, fichier, themeID, categorieID)
	if err != nil {
		erreurJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	Infof("Import de %q par %s: %d tableau(x), %d erreur(s)",
		entete.Filename, utilisateur.Email, resultat.TableauxCrees, len(resultat.Erreurs))
	repondreJSON(w, http.StatusCreated, resultat)
}
