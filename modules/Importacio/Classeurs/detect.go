package classeurs

import "strings"

// Format distingue les deux dispositions de feuilles connues.
type Format int

const (
	// FormatHerite: bannière de titre libre et regroupements par '~'.
	FormatHerite Format = iota
	// FormatStructure: ligne d'en-tête explicite code/parent/ordre.
	FormatStructure
)

// Les six colonnes sentinelles qui signent une feuille structurée.
var sentinelles = []string{"titre_fr", "source_fr", "ordre", "code", "parent", "des_fr"}

// DetecterFormat classe une feuille d'après sa première ligne non vide:
// structurée si les six sentinelles sont toutes présentes (ordre libre),
// héritée sinon.
func DetecterFormat(entete []Cellule) Format {
	presents := make(map[string]bool, len(entete))
	for _, c := range entete {
		presents[strings.ToLower(strings.TrimSpace(c.Texte))] = true
	}
	for _, s := range sentinelles {
		if !presents[s] {
			return FormatHerite
		}
	}
	return FormatStructure
}
