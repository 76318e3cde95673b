package classeurs

import (
	"regexp"
	"strings"

	"github.com/ansadev/PortailStat/db"
)

// Bannières des feuilles héritées. Le titre est reconnu sur le mot entier
// TABLEAU ou sur une forme abrégée numérotée en tête de ligne ("TAB. 3").
var (
	reTitreMot    = regexp.MustCompile(`\bTABLEAU\b`)
	reTitreAbrege = regexp.MustCompile(`^\s*TAB(LEAU)?\s*[.:]?\s*\d+`)
	reSourceMot   = regexp.MustCompile(`\bSOURCE\b`)
	reSourceTete  = regexp.MustCompile(`(?i)^\s*source\s*:?\s*`)
)

// etatScan est l'état du balayage d'une feuille héritée.
type etatScan int

const (
	chercheTitre etatScan = iota
	chercheEntete
	litDonnees
)

// joindreLigne assemble le texte d'une ligne, cellules vides écartées.
func joindreLigne(row []Cellule) string {
	var parts []string
	for _, c := range row {
		txt := strings.TrimSpace(c.Texte)
		if txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, " ")
}

func estBanniereTitre(joint string) bool {
	maj := strings.ToUpper(joint)
	return reTitreMot.MatchString(maj) || reTitreAbrege.MatchString(maj)
}

func estBanniereSource(joint string) bool {
	return reSourceMot.MatchString(strings.ToUpper(joint))
}

// ImporterHerite extrait une feuille au format hérité par un balayage à trois
// états: recherche du titre, puis de la ligne d'en-tête, puis lecture des
// données jusqu'à la bannière de source. Sans titre ou sans en-tête la
// feuille n'est pas importable et (nil, nil) est renvoyé: les classeurs
// hérités contiennent couramment des feuilles de garde.
func ImporterHerite(nomFeuille string, lignes [][]Cellule, themeID, categorieID int) (*db.FeuilleImport, error) {
	var (
		etat    = chercheTitre
		titre   string
		source  string
		entete  []Cellule
		donnees [][]Cellule
	)

balayage:
	for _, row := range lignes {
		joint := joindreLigne(row)

		switch etat {
		case chercheTitre:
			if estBanniereSource(joint) {
				if source == "" {
					source = reSourceTete.ReplaceAllString(joint, "")
				}
				continue
			}
			if estBanniereTitre(joint) {
				titre = joint
				etat = chercheEntete
			}

		case chercheEntete:
			if estBanniereSource(joint) {
				if source == "" {
					source = reSourceTete.ReplaceAllString(joint, "")
				}
				continue
			}
			entete = row
			etat = litDonnees

		case litDonnees:
			if estBanniereSource(joint) {
				source = reSourceTete.ReplaceAllString(joint, "")
				break balayage
			}
			donnees = append(donnees, row)
		}
	}

	if titre == "" || entete == nil {
		return nil, nil
	}

	etiquette := strings.TrimSpace(cellAt(entete, 0).Texte)
	if etiquette == "" {
		etiquette = "Indicateur"
	}
	pourcentFeuille := strings.Contains(titre, "%")

	imp := &db.FeuilleImport{
		Tableau: db.Tableau{
			NomFeuille:     nomFeuille,
			Titre:          titre,
			EtiquetteLigne: etiquette,
			ThemeID:        themeID,
			Source:         source,
		},
	}

	for _, row := range donnees {
		label := FormatDate(cellAt(row, 0))
		if label == "" {
			continue
		}

		// Les feuilles héritées ne portent pas de hiérarchie explicite: toute
		// structure vient des labels composites 'principal ~ sous'.
		li := db.LigneImport{Ligne: db.LigneIndicateur{Label: label}}

		for j := 1; j < len(entete); j++ {
			colonne := FormatDate(cellAt(entete, j))
			if colonne == "" {
				continue
			}
			if d, ok := construireDonnee(cellAt(row, j), colonne, source, "", pourcentFeuille, categorieID); ok {
				li.Donnees = append(li.Donnees, d)
			}
		}

		imp.Lignes = append(imp.Lignes, li)
	}

	return imp, nil
}
