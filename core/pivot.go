package core

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ansadev/PortailStat/db"
)

// ColonneGroupe est une paire (principal, sous) de l'en-tête groupé.
// Sous vaut "" pour une colonne simple.
type ColonneGroupe struct {
	Principal string `json:"principal"`
	Sous      string `json:"sous"`
}

// LignePivot est une ligne du tableau restructuré, dans l'ordre de parcours
// de la forêt d'indicateurs. Valeurs est indexée par le libellé de colonne
// d'origine.
type LignePivot struct {
	ID         int               `json:"id,omitempty"`
	Label      string            `json:"label"`
	Code       string            `json:"code,omitempty"`
	ParentCode string            `json:"parent_code,omitempty"`
	Profondeur int               `json:"profondeur"`
	EstSection bool              `json:"est_section,omitempty"`
	Valeurs    map[string]string `json:"valeurs"`
}

type ResultatPivot struct {
	TableauID          int             `json:"tableau_id"`
	Titre              string          `json:"titre"`
	EtiquetteLigne     string          `json:"etiquette_ligne"`
	Source             string          `json:"source,omitempty"`
	Colonnes           []ColonneGroupe `json:"colonnes_groupees"`
	Lignes             []LignePivot    `json:"data"`
	HasSousIndicateurs bool            `json:"has_sous_indicateurs"`
	Statuts            []string        `json:"statuts,omitempty"`
	Notes              []string        `json:"notes,omitempty"`
}

// cleColonne canonise un libellé de colonne composite en "principal ~ sous".
func cleColonne(colonne string) string {
	principal, sous := decomposeComposite(colonne)
	if sous == "" {
		return principal
	}
	return principal + " ~ " + sous
}

// formatNombre rend v avec au plus `decimales` décimales, zéros de queue et
// point superflu retirés.
func formatNombre(v float64, decimales int) string {
	s := strconv.FormatFloat(v, 'f', decimales, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// FormatValeur rend une cellule affichable: le statut prime, puis la valeur.
// Les pourcentages stockés en fraction (magnitude ≤ 1.5) sont redéployés en
// v*100 et rendus à une décimale; le suffixe % est omis quand le titre du
// tableau porte déjà le signe. Les autres valeurs sont rendues à deux
// décimales.
func FormatValeur(d *db.Donnee, titrePourcent bool) string {
	if d.Statut.Valid && d.Statut.String != "" {
		return d.Statut.String
	}
	if !d.Valeur.Valid {
		return ""
	}
	v := d.Valeur.Float64
	if d.Unite == "%" {
		if math.Abs(v) <= 1.5 {
			v *= 100
		}
		s := formatNombre(v, 1)
		if !titrePourcent {
			s += "%"
		}
		return s
	}
	return formatNombre(v, 2)
}

// PivotTableau restructure les observations d'un tableau: colonnes groupées
// en ordre de première rencontre, lignes en ordre de parcours de la forêt,
// cellules formatées. Relecture pure, sans effet de bord.
func PivotTableau(t *db.Tableau, lignes []db.LigneIndicateur, donnees []db.Donnee) *ResultatPivot {
	titrePourcent := strings.Contains(t.Titre, "%")

	res := &ResultatPivot{
		TableauID:      t.ID,
		Titre:          t.Titre,
		EtiquetteLigne: t.EtiquetteLigne,
		Source:         t.Source,
		Colonnes:       []ColonneGroupe{},
		Lignes:         []LignePivot{},
	}

	// Colonnes groupées: principaux en ordre de première rencontre, sous de
	// même à l'intérieur d'un principal.
	var ordrePrincipaux []string
	sousParPrincipal := make(map[string][]string)
	sousVus := make(map[string]map[string]bool)
	for i := range donnees {
		principal, sous := decomposeComposite(donnees[i].Colonne)
		if _, vu := sousVus[principal]; !vu {
			sousVus[principal] = make(map[string]bool)
			ordrePrincipaux = append(ordrePrincipaux, principal)
		}
		if !sousVus[principal][sous] {
			sousVus[principal][sous] = true
			sousParPrincipal[principal] = append(sousParPrincipal[principal], sous)
		}
	}
	for _, principal := range ordrePrincipaux {
		for _, sous := range sousParPrincipal[principal] {
			res.Colonnes = append(res.Colonnes, ColonneGroupe{Principal: principal, Sous: sous})
		}
	}

	parLigne := make(map[int64][]*db.Donnee)
	statutsVus := make(map[string]bool)
	notesVues := make(map[string]bool)
	for i := range donnees {
		d := &donnees[i]
		if d.LigneID.Valid {
			parLigne[d.LigneID.Int64] = append(parLigne[d.LigneID.Int64], d)
		}
		if d.Statut.Valid && d.Statut.String != "" {
			statutsVus[d.Statut.String] = true
		}
		if d.NoteColonne.Valid && d.NoteColonne.String != "" {
			notesVues[d.NoteColonne.String] = true
		}
	}

	if !estStructure(lignes) {
		for i := range lignes {
			if strings.Contains(lignes[i].Label, "~") {
				res.HasSousIndicateurs = true
				break
			}
		}
	}

	for _, entree := range ConstruireArbre(lignes) {
		lp := LignePivot{
			Label:      entree.Label,
			Profondeur: entree.Profondeur,
			Valeurs:    map[string]string{},
		}
		var cellules []*db.Donnee
		if entree.Ligne != nil {
			lp.ID = entree.Ligne.ID
			lp.Code = entree.Ligne.Code
			lp.ParentCode = entree.Ligne.ParentCode
			cellules = parLigne[int64(entree.Ligne.ID)]
		}
		porteValeur := false
		for _, d := range cellules {
			lp.Valeurs[cleColonne(d.Colonne)] = FormatValeur(d, titrePourcent)
			if d.Valeur.Valid {
				porteValeur = true
			}
		}
		// En-tête de section: des descendants mais aucune valeur propre.
		lp.EstSection = entree.AEnfants && !porteValeur
		res.Lignes = append(res.Lignes, lp)
	}

	res.Statuts = triCles(statutsVus)
	res.Notes = triCles(notesVues)
	return res
}

func triCles(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	cles := make([]string, 0, len(m))
	for k := range m {
		cles = append(cles, k)
	}
	sort.Strings(cles)
	return cles
}
