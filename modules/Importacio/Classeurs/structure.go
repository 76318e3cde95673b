package classeurs

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/ansadev/PortailStat/db"
)

// Colonnes d'agrégat à écarter des colonnes-périodes.
var colonnesIgnorees = map[string]bool{
	"agreg":   true,
	"agrég":   true,
	"agrégée": true,
}

// parseOrdre lit l'ordre d'affichage d'une ligne, tolérant les décimales à
// virgule ("2,0"); illisible vaut null.
func parseOrdre(c Cellule) sql.NullInt64 {
	switch c.Type {
	case CelluleNombre:
		return sql.NullInt64{Int64: int64(c.Nombre), Valid: true}
	case CelluleTexte:
		s := strings.TrimSpace(strings.ReplaceAll(c.Texte, ",", "."))
		if s == "" {
			return sql.NullInt64{}
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return sql.NullInt64{}
		}
		return sql.NullInt64{Int64: int64(v), Valid: true}
	default:
		return sql.NullInt64{}
	}
}

// chercheNote renvoie le renvoi global de la feuille: la première ligne dont
// la première cellule commence par '*', astérisque de tête retiré.
func chercheNote(lignes [][]Cellule) string {
	for _, row := range lignes {
		txt := strings.TrimSpace(cellAt(row, 0).Texte)
		if strings.HasPrefix(txt, "*") {
			return strings.TrimSpace(strings.TrimPrefix(txt, "*"))
		}
	}
	return ""
}

// ImporterStructure extrait une feuille au format structuré: en-tête à six
// sentinelles, hiérarchie code/parent/ordre portée par les colonnes, colonnes
// de périodes après des_fr.
func ImporterStructure(nomFeuille string, lignes [][]Cellule, themeID, categorieID int) (*db.FeuilleImport, error) {
	entete := lignes[0]

	idx := make(map[string]int, len(sentinelles))
	for j, c := range entete {
		token := strings.ToLower(strings.TrimSpace(c.Texte))
		if _, deja := idx[token]; !deja {
			idx[token] = j
		}
	}
	var manquantes []string
	for _, s := range sentinelles {
		if _, ok := idx[s]; !ok {
			manquantes = append(manquantes, s)
		}
	}
	if len(manquantes) > 0 {
		return nil, fmt.Errorf("feuille %q: colonnes manquantes: %s", nomFeuille, strings.Join(manquantes, ", "))
	}
	if len(lignes) < 2 {
		return nil, fmt.Errorf("feuille %q: aucune ligne de données", nomFeuille)
	}

	idxDes := idx["des_fr"]
	var colsPeriodes []int
	for j := idxDes + 1; j < len(entete); j++ {
		token := strings.ToLower(strings.TrimSpace(entete[j].Texte))
		if colonnesIgnorees[token] {
			continue
		}
		colsPeriodes = append(colsPeriodes, j)
	}

	premiere := lignes[1]
	titre := strings.TrimSpace(cellAt(premiere, idx["titre_fr"]).Texte)
	source := strings.TrimSpace(cellAt(premiere, idx["source_fr"]).Texte)
	pourcentFeuille := strings.Contains(titre, "%")
	note := chercheNote(lignes)

	imp := &db.FeuilleImport{
		Tableau: db.Tableau{
			NomFeuille:     nomFeuille,
			Titre:          titre,
			EtiquetteLigne: "Indicateur",
			ThemeID:        themeID,
			Source:         source,
		},
	}

	for _, row := range lignes[1:] {
		label := FormatDate(cellAt(row, idxDes))
		if label == "" {
			continue
		}

		li := db.LigneImport{
			Ligne: db.LigneIndicateur{
				Label:      label,
				Code:       strings.TrimSpace(cellAt(row, idx["code"]).Texte),
				ParentCode: strings.TrimSpace(cellAt(row, idx["parent"]).Texte),
				Ordre:      parseOrdre(cellAt(row, idx["ordre"])),
			},
		}

		for _, j := range colsPeriodes {
			colonne := FormatDate(cellAt(entete, j))
			if colonne == "" {
				continue
			}
			noteColonne := ""
			if strings.Contains(colonne, "*") {
				noteColonne = note
			}
			if d, ok := construireDonnee(cellAt(row, j), colonne, source, noteColonne, pourcentFeuille, categorieID); ok {
				li.Donnees = append(li.Donnees, d)
			}
		}

		imp.Lignes = append(imp.Lignes, li)
	}

	return imp, nil
}
