package core

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/ansadev/PortailStat/db"
)

// ligneExport est une observation à plat, prête à écrire.
type ligneExport struct {
	Ligne   string
	Colonne string
	Valeur  string
	Unite   string
	Statut  string
	Source  string
	Note    string
}

func lignesExport(lignes []db.LigneIndicateur, donnees []db.Donnee) []ligneExport {
	labels := make(map[int64]string, len(lignes))
	for i := range lignes {
		labels[int64(lignes[i].ID)] = lignes[i].Label
	}

	out := make([]ligneExport, 0, len(donnees))
	for i := range donnees {
		d := &donnees[i]
		le := ligneExport{
			Colonne: d.Colonne,
			Unite:   d.Unite,
			Source:  d.Source,
		}
		if d.LigneID.Valid {
			le.Ligne = labels[d.LigneID.Int64]
		}
		if d.Valeur.Valid {
			le.Valeur = formatNombre(d.Valeur.Float64, 6)
		}
		if d.Statut.Valid {
			le.Statut = d.Statut.String
		}
		if d.NoteColonne.Valid {
			le.Note = d.NoteColonne.String
		}
		out = append(out, le)
	}
	return out
}

func exportXLSX(t *db.Tableau, lignes []ligneExport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	feuille := "Export"
	f.SetSheetName(f.GetSheetName(0), feuille)

	etiquette := t.EtiquetteLigne
	if etiquette == "" {
		etiquette = "Indicateur"
	}
	entete := []interface{}{etiquette, "Colonne", "Valeur", "Unité", "Statut", "Source", "Note"}
	if err := f.SetSheetRow(feuille, "A1", &entete); err != nil {
		return nil, err
	}
	for i, l := range lignes {
		cellule, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{l.Ligne, l.Colonne, l.Valeur, l.Unite, l.Statut, l.Source, l.Note}
		if err := f.SetSheetRow(feuille, cellule, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func exportPDF(t *db.Tableau, lignes []ligneExport) (*bytes.Buffer, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 12)
	pdf.MultiCell(0, 8, tr(t.Titre), "", "L", false)
	if t.Source != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 6, tr("Source : "+t.Source), "", "L", false)
	}
	pdf.Ln(2)

	etiquette := t.EtiquetteLigne
	if etiquette == "" {
		etiquette = "Indicateur"
	}
	largeurs := []float64{90, 40, 30, 18, 20, 50, 29}
	entetes := []string{etiquette, "Colonne", "Valeur", "Unité", "Statut", "Source", "Note"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range entetes {
		pdf.CellFormat(largeurs[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, l := range lignes {
		cellules := []string{l.Ligne, l.Colonne, l.Valeur, l.Unite, l.Statut, l.Source, l.Note}
		for i, c := range cellules {
			pdf.CellFormat(largeurs[i], 6, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// ExportTableau livre le tableau en dump tabulaire, à plat, au format xlsx
// ou pdf.
func (a *App) ExportTableau(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := idParam(ps, "id")
	if !ok {
		erreurJSON(w, http.StatusBadRequest, "identifiant de tableau invalide")
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		erreurJSON(w, http.StatusBadRequest, "format non supporté, formats acceptés: xlsx, pdf")
		return
	}

	tableau, err := a.DB.GetTableau(id)
	if err != nil {
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

	plat := lignesExport(lignes, donnees)

	var buf *bytes.Buffer
	var contentType string
	switch format {
	case "pdf":
		buf, err = exportPDF(tableau, plat)
		contentType = "application/pdf"
	default:
		buf, err = exportXLSX(tableau, plat)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		Errorf("export du tableau %d en %s: %v", id, format, err)
		erreurJSON(w, http.StatusInternalServerError, "export impossible")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=tableau_%d.%s", id, format))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		Errorf("écriture de l'export du tableau %d: %v", id, err)
	}
}
