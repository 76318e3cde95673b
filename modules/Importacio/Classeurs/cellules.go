package classeurs

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TypeCellule discrimine les quatre formes qu'une cellule peut prendre à la
// frontière d'ingestion: texte, nombre, date ou vide.
type TypeCellule int

const (
	CelluleVide TypeCellule = iota
	CelluleTexte
	CelluleNombre
	CelluleDate
)

// Cellule est l'union étiquetée d'une cellule brute de feuille de calcul.
type Cellule struct {
	Type   TypeCellule
	Texte  string
	Nombre float64
	Date   time.Time
}

// Les nombres de série Excel comptent les jours depuis cette époque.
var epoqueExcel = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Bornes de plausibilité d'un numéro de série daté: en dessous on trouve les
// années calendaires (1998, 2023...), au-dessus rien d'importable.
const (
	serieMin = 10000
	serieMax = 80000
)

// Dispositions de date produites par le rendu excelize des formats intégrés,
// plus les textes ISO rencontrés dans les classeurs sources.
var dispositionsDate = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1-2-06",
	"01/02/06",
	"1/2/06",
	"01/02/2006",
	"02/01/2006",
}

func parseDateTexte(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dispositionsDate {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NouvelleCellule construit l'union étiquetée à partir de la valeur brute et
// du rendu formaté d'excelize. Une valeur numérique dont le rendu formaté
// diffère et se lit comme une date est une cellule Date (série Excel); un
// nombre nu reste un nombre, pour que les colonnes-années comme "2020" ne
// deviennent jamais des dates.
func NouvelleCellule(brut, texte string) Cellule {
	brut = strings.TrimSpace(brut)
	texte = strings.TrimSpace(texte)
	if brut == "" && texte == "" {
		return Cellule{Type: CelluleVide}
	}

	if v, err := strconv.ParseFloat(brut, 64); err == nil {
		if texte != brut {
			if d, ok := parseDateTexte(texte); ok {
				return Cellule{Type: CelluleDate, Texte: texte, Date: d}
			}
		}
		return Cellule{Type: CelluleNombre, Texte: brut, Nombre: v}
	}

	if texte == "" {
		texte = brut
	}
	return Cellule{Type: CelluleTexte, Texte: texte}
}

// EstVide indique une cellule sans contenu exploitable.
func (c Cellule) EstVide() bool {
	return c.Type == CelluleVide
}

// ParseValeur normalise une cellule en valeur numérique. Elle est totale:
// jamais de panique, ok=false signale l'échec et laisse l'appelant retomber
// sur le traitement des codes de statut. pourcent signale un marqueur '%'
// littéral rencontré dans le texte.
func ParseValeur(c Cellule) (valeur float64, ok bool, pourcent bool) {
	switch c.Type {
	case CelluleNombre:
		return c.Nombre, true, false
	case CelluleTexte:
		s := c.Texte
		if strings.Contains(s, "%") {
			pourcent = true
			s = strings.ReplaceAll(s, "%", "")
		}
		// Séparateurs de milliers: espace ordinaire et espace fine insécable.
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, pourcent
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, pourcent
		}
		return v, true, pourcent
	default:
		// Les dates sont l'affaire de FormatDate, pas du parseur de valeurs.
		return 0, false, false
	}
}

// Abréviations françaises des douze mois, pour les étiquettes "mmm-aa".
var moisFR = [12]string{"janv", "févr", "mars", "avr", "mai", "juin", "juil", "août", "sept", "oct", "nov", "déc"}

func libelleMois(t time.Time) string {
	return moisFR[int(t.Month())-1] + "-" + padAnnee(t.Year()%100)
}

func padAnnee(a int) string {
	if a < 10 {
		return "0" + strconv.Itoa(a)
	}
	return strconv.Itoa(a)
}

// FormatDate produit l'étiquette canonique "mmm-aa" quand la cellule porte
// une date (objet date, numéro de série plausible, ou texte ISO), sinon la
// représentation textuelle nettoyée de la cellule.
func FormatDate(c Cellule) string {
	switch c.Type {
	case CelluleDate:
		return libelleMois(c.Date)
	case CelluleNombre:
		if c.Nombre >= serieMin && c.Nombre <= serieMax && c.Nombre == math.Trunc(c.Nombre) {
			return libelleMois(epoqueExcel.AddDate(0, 0, int(c.Nombre)))
		}
		return strconv.FormatFloat(c.Nombre, 'f', -1, 64)
	case CelluleTexte:
		if d, ok := parseDateTexte(c.Texte); ok {
			return libelleMois(d)
		}
		return strings.TrimSpace(c.Texte)
	default:
		return ""
	}
}
