package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func ouvreDBTest(t *testing.T) DB {
	t.Helper()
	database, err := NewDB(map[string]string{
		"DB_ENGINE": "sqlite",
		"DB_PATH":   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(database.Close)
	return database
}

func feuilleExemple(t *testing.T, database DB) (categorieID, themeID int) {
	t.Helper()
	categorieID, err := database.CreateCategorie("Démographie")
	if err != nil {
		t.Fatal(err)
	}
	themeID, err = database.CreateTheme("Population", categorieID)
	if err != nil {
		t.Fatal(err)
	}
	return categorieID, themeID
}

func TestSaveFeuilleAllerRetour(t *testing.T) {
	database := ouvreDBTest(t)
	categorieID, themeID := feuilleExemple(t, database)

	feuille := &FeuilleImport{
		Tableau: Tableau{
			NomFeuille:     "feuil1",
			Titre:          "Population résidente",
			EtiquetteLigne: "Indicateur",
			ThemeID:        themeID,
			Source:         "ONS",
		},
		Lignes: []LigneImport{
			{
				Ligne: LigneIndicateur{Label: "Population", Code: "POP", Ordre: sql.NullInt64{Int64: 1, Valid: true}},
				Donnees: []Donnee{
					{Colonne: "2020", Valeur: sql.NullFloat64{Float64: 4271.2, Valid: true}, CategorieID: categorieID},
					{Colonne: "2021", Statut: sql.NullString{String: "N/D", Valid: true}, CategorieID: categorieID},
				},
			},
			{
				Ligne: LigneIndicateur{Label: "Urbaine", Code: "POP.U", ParentCode: "POP", Ordre: sql.NullInt64{Int64: 2, Valid: true}},
				Donnees: []Donnee{
					{Colonne: "2020", Valeur: sql.NullFloat64{Float64: 2105.5, Valid: true}, CategorieID: categorieID},
				},
			},
		},
	}

	tableauID, err := database.SaveFeuille(feuille)
	if err != nil {
		t.Fatal(err)
	}

	tb, err := database.GetTableau(tableauID)
	if err != nil {
		t.Fatal(err)
	}
	if tb.Titre != "Population résidente" || tb.Source != "ONS" || tb.ThemeID != themeID {
		t.Fatalf("tableau inattendu: %+v", tb)
	}

	lignes, err := database.ListLignes(tableauID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lignes) != 2 || lignes[0].Label != "Population" || lignes[1].ParentCode != "POP" {
		t.Fatalf("lignes inattendues: %+v", lignes)
	}

	donnees, err := database.ListDonnees(tableauID)
	if err != nil {
		t.Fatal(err)
	}
	if len(donnees) != 3 {
		t.Fatalf("%d données, attendu 3", len(donnees))
	}
	if !donnees[1].Statut.Valid || donnees[1].Statut.String != "N/D" || donnees[1].Valeur.Valid {
		t.Fatalf("donnée statut inattendue: %+v", donnees[1])
	}
}

func TestSaveFeuilleAnnulee(t *testing.T) {
	database := ouvreDBTest(t)
	_, themeID := feuilleExemple(t, database)

	feuille := &FeuilleImport{
		Tableau: Tableau{NomFeuille: "f", Titre: "T", ThemeID: themeID},
		Lignes: []LigneImport{
			{
				Ligne: LigneIndicateur{Label: "A"},
				Donnees: []Donnee{
					// categorie_id inexistant: la clé étrangère fait échouer l'insertion.
					{Colonne: "2020", Valeur: sql.NullFloat64{Float64: 1, Valid: true}, CategorieID: 999},
				},
			},
		},
	}
	if _, err := database.SaveFeuille(feuille); err == nil {
		t.Fatal("import accepté, attendu une erreur de clé étrangère")
	}

	// La feuille entière est annulée: ni tableau ni ligne ne subsistent.
	tableaux, err := database.ListTableaux(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tableaux) != 0 {
		t.Fatalf("%d tableaux après annulation, attendu 0", len(tableaux))
	}
}

func TestListDonneesFiltrees(t *testing.T) {
	database := ouvreDBTest(t)
	categorieID, themeID := feuilleExemple(t, database)

	feuille := &FeuilleImport{
		Tableau: Tableau{NomFeuille: "f", Titre: "T", EtiquetteLigne: "Indicateur", ThemeID: themeID},
		Lignes: []LigneImport{
			{
				Ligne: LigneIndicateur{Label: "A"},
				Donnees: []Donnee{
					{Colonne: "2020", Valeur: sql.NullFloat64{Float64: 1, Valid: true}, CategorieID: categorieID},
					{Colonne: "2021", Valeur: sql.NullFloat64{Float64: 2, Valid: true}, CategorieID: categorieID},
				},
			},
			{
				Ligne: LigneIndicateur{Label: "B"},
				Donnees: []Donnee{
					{Colonne: "2020", Valeur: sql.NullFloat64{Float64: 3, Valid: true}, CategorieID: categorieID},
				},
			},
		},
	}
	tableauID, err := database.SaveFeuille(feuille)
	if err != nil {
		t.Fatal(err)
	}
	lignes, err := database.ListLignes(tableauID)
	if err != nil {
		t.Fatal(err)
	}

	var idA int64
	for _, l := range lignes {
		if l.Label == "A" {
			idA = int64(l.ID)
		}
	}

	t.Run("restriction ligne et colonne", func(t *testing.T) {
		donnees, err := database.ListDonneesFiltrees(tableauID, []int64{idA}, []string{"2020"})
		if err != nil {
			t.Fatal(err)
		}
		if len(donnees) != 1 || donnees[0].Colonne != "2020" || donnees[0].Valeur.Float64 != 1 {
			t.Fatalf("données %+v", donnees)
		}
	})

	t.Run("nil ne restreint pas", func(t *testing.T) {
		donnees, err := database.ListDonneesFiltrees(tableauID, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(donnees) != 3 {
			t.Fatalf("%d données, attendu 3", len(donnees))
		}
	})

	t.Run("liste vide ne correspond à rien", func(t *testing.T) {
		donnees, err := database.ListDonneesFiltrees(tableauID, []int64{}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(donnees) != 0 {
			t.Fatalf("%d données, attendu 0", len(donnees))
		}
	})
}

func TestSessions(t *testing.T) {
	database := ouvreDBTest(t)

	id, err := database.CreateUtilisateur(&Utilisateur{
		Email:        "chef@example.org",
		PasswordHash: "hash",
		Active:       true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := database.SaveSession("tok1", id, time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	u, err := database.GetSessionUtilisateur("tok1")
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "chef@example.org" {
		t.Fatalf("utilisateur %+v", u)
	}

	// Session expirée: introuvable et purgée.
	if err := database.SaveSession("tok2", id, time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, err := database.GetSessionUtilisateur("tok2"); err != ErrIntrouvable {
		t.Fatalf("err = %v, attendu ErrIntrouvable", err)
	}

	if err := database.DeleteSession("tok1"); err != nil {
		t.Fatal(err)
	}
	if _, err := database.GetSessionUtilisateur("tok1"); err != ErrIntrouvable {
		t.Fatalf("err = %v, attendu ErrIntrouvable", err)
	}
}

func TestGetTableauIntrouvable(t *testing.T) {
	database := ouvreDBTest(t)
	if _, err := database.GetTableau(999); err != ErrIntrouvable {
		t.Fatalf("err = %v, attendu ErrIntrouvable", err)
	}
}
