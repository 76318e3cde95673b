package classeurs

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ansadev/PortailStat/db"
)

// ResultatImport résume l'ingestion d'un classeur: chaque feuille est un
// domaine de panne indépendant.
type ResultatImport struct {
	TableauxCrees    int      `json:"tableaux_crees"`
	TableauxIDs      []int    `json:"tableaux_ids,omitempty"`
	FeuillesIgnorees []string `json:"feuilles_ignorees,omitempty"`
	Erreurs          []string `json:"erreurs,omitempty"`
}

// lireFeuille matérialise la grille d'une feuille en cellules étiquetées,
// lignes entièrement vides écartées. La valeur brute et le rendu formaté
// sont lus séparément pour distinguer nombres, séries datées et textes.
func lireFeuille(f *excelize.File, feuille string) ([][]Cellule, error) {
	brutes, err := f.GetRows(feuille, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	formatees, err := f.GetRows(feuille)
	if err != nil {
		return nil, err
	}

	var grille [][]Cellule
	for i, ligneBrute := range brutes {
		largeur := len(ligneBrute)
		if i < len(formatees) && len(formatees[i]) > largeur {
			largeur = len(formatees[i])
		}

		row := make([]Cellule, largeur)
		vide := true
		for j := 0; j < largeur; j++ {
			var brut, texte string
			if j < len(ligneBrute) {
				brut = ligneBrute[j]
			}
			if i < len(formatees) && j < len(formatees[i]) {
				texte = formatees[i][j]
			}
			row[j] = NouvelleCellule(brut, texte)
			if !row[j].EstVide() {
				vide = false
			}
		}
		if !vide {
			grille = append(grille, row)
		}
	}
	return grille, nil
}

// ImporterClasseur ouvre un classeur binaire et ingère ses feuilles une à
// une: détection du format, extraction, puis persistance de la feuille dans
// une transaction unique. L'échec d'une feuille n'interrompt pas les autres;
// seul un classeur illisible fait échouer la requête entière.
func ImporterClasseur(database db.DB, r io.Reader, themeID, categorieID int) (*ResultatImport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("classeur illisible: %w", err)
	}
	defer f.Close()

	res := &ResultatImport{}

	for _, feuille := range f.GetSheetList() {
		grille, err := lireFeuille(f, feuille)
		if err != nil {
			res.Erreurs = append(res.Erreurs, fmt.Sprintf("feuille %q: %v", feuille, err))
			continue
		}
		if len(grille) == 0 {
			res.FeuillesIgnorees = append(res.FeuillesIgnorees, feuille)
			continue
		}

		var imp *db.FeuilleImport
		switch DetecterFormat(grille[0]) {
		case FormatStructure:
			imp, err = ImporterStructure(feuille, grille, themeID, categorieID)
		default:
			imp, err = ImporterHerite(feuille, grille, themeID, categorieID)
		}
		if err != nil {
			res.Erreurs = append(res.Erreurs, err.Error())
			continue
		}
		if imp == nil {
			res.FeuillesIgnorees = append(res.FeuillesIgnorees, feuille)
			continue
		}

		id, err := database.SaveFeuille(imp)
		if err != nil {
			res.Erreurs = append(res.Erreurs, fmt.Sprintf("feuille %q: %v", feuille, err))
			continue
		}
		res.TableauxCrees++
		res.TableauxIDs = append(res.TableauxIDs, id)
	}

	return res, nil
}

// ExtensionsAcceptees liste les formats de classeur qu'excelize sait ouvrir.
var ExtensionsAcceptees = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// ExtensionValide vérifie l'extension du fichier téléversé.
func ExtensionValide(nom string) bool {
	nom = strings.ToLower(nom)
	for _, ext := range ExtensionsAcceptees {
		if strings.HasSuffix(nom, ext) {
			return true
		}
	}
	return false
}
