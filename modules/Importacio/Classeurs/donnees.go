package classeurs

import (
	"database/sql"
	"math"
	"strings"

	"github.com/ansadev/PortailStat/db"
)

// seuilPourcentage sépare les pourcentages déjà exprimés en nombre entier
// (57.7 pour 57,7%) des fractions unitaires (0.577). Heuristique: aucune
// fraction légitime ne dépasse 1.5 dans ce domaine.
const seuilPourcentage = 1.5

func arrondi6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// cellAt tolère les lignes en dents de scie: hors limite, cellule vide.
func cellAt(row []Cellule, j int) Cellule {
	if j < 0 || j >= len(row) {
		return Cellule{Type: CelluleVide}
	}
	return row[j]
}

// construireDonnee transforme une cellule de données en observation.
// Échec de parse numérique + texte non vide: le texte devient code de statut
// ("N/D", "NS"...). Cellule vide: aucune observation (stockage creux).
// En pourcentage, une magnitude au-delà du seuil est ramenée en fraction
// puis arrondie à 6 décimales.
func construireDonnee(c Cellule, colonne, source, note string, pourcentFeuille bool, categorieID int) (db.Donnee, bool) {
	d := db.Donnee{Colonne: colonne, Source: source, CategorieID: categorieID}
	if note != "" {
		d.NoteColonne = sql.NullString{String: note, Valid: true}
	}

	v, ok, pourcentCellule := ParseValeur(c)
	if !ok {
		brut := strings.TrimSpace(c.Texte)
		if brut == "" {
			return db.Donnee{}, false
		}
		d.Statut = sql.NullString{String: brut, Valid: true}
		return d, true
	}

	if pourcentFeuille || pourcentCellule {
		d.Unite = "%"
		if math.Abs(v) > seuilPourcentage {
			v /= 100
		}
		v = arrondi6(v)
	}
	d.Valeur = sql.NullFloat64{Float64: v, Valid: true}
	return d, true
}
