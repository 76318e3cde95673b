package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// formatPlaceholders convertit '?' en placeholders PostgreSQL ($1, $2...) si besoin.
func formatPlaceholders(style, query string) string {
	if strings.ToLower(style) != "postgres" {
		return query
	}
	var b strings.Builder
	idx := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			b.WriteString(fmt.Sprintf("$%d", idx))
			idx++
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

// execQueryer couvre *sql.DB et *sql.Tx pour partager les helpers d'insertion.
type execQueryer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// sqlStore implémente toute la partie domaine du contrat DB une seule fois;
// chaque moteur (sqlite, postgres, mysql) ne fournit que Connect et le schéma.
type sqlStore struct {
	conn  *sql.DB
	style string
}

func (s *sqlStore) DB() *sql.DB {
	return s.conn
}

func (s *sqlStore) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *sqlStore) exec(query string, args ...interface{}) error {
	_, err := s.conn.Exec(formatPlaceholders(s.style, query), args...)
	return err
}

// insertID insère et renvoie l'id généré; postgres passe par RETURNING.
func (s *sqlStore) insertID(eq execQueryer, query string, args ...interface{}) (int64, error) {
	if s.style == "postgres" {
		var id int64
		err := eq.QueryRow(formatPlaceholders(s.style, query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := eq.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ---------------------------------------------------------------------------
// Catégories

func (s *sqlStore) ListCategories() ([]Categorie, error) {
	rows, err := s.conn.Query(`SELECT id, nom FROM categories ORDER BY nom`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Categorie
	for rows.Next() {
		var c Categorie
		if err := rows.Scan(&c.ID, &c.Nom); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *sqlStore) GetCategorie(id int) (*Categorie, error) {
	var c Categorie
	err := s.conn.QueryRow(formatPlaceholders(s.style, `SELECT id, nom FROM categories WHERE id = ?`), id).
		Scan(&c.ID, &c.Nom)
	if err == sql.ErrNoRows {
		return nil, ErrIntrouvable
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *sqlStore) CreateCategorie(nom string) (int, error) {
	id, err := s.insertID(s.conn, `INSERT INTO categories(nom) VALUES (?)`, nom)
	return int(id), err
}

func (s *sqlStore) UpdateCategorie(c *Categorie) error {
	return s.exec(`UPDATE categories SET nom = ? WHERE id = ?`, c.Nom, c.ID)
}

func (s *sqlStore) DeleteCategorie(id int) error {
	return s.exec(`DELETE FROM categories WHERE id = ?`, id)
}

// ---------------------------------------------------------------------------
// Thèmes

func (s *sqlStore) ListThemes(categorieID int) ([]Theme, error) {
	query := `SELECT id, nom, categorie_id FROM themes`
	var args []interface{}
	if categorieID > 0 {
		query += ` WHERE categorie_id = ?`
		args = append(args, categorieID)
	}
	query += ` ORDER BY nom`

	rows, err := s.conn.Query(formatPlaceholders(s.style, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var themes []Theme
	for rows.Next() {
		var t Theme
		if err := rows.Scan(&t.ID, &t.Nom, &t.CategorieID); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

func (s *sqlStore) GetTheme(id int) (*Theme, error) {
	var t Theme
	err := s.conn.QueryRow(formatPlaceholders(s.style, `SELECT id, nom, categorie_id FROM themes WHERE id = ?`), id).
		Scan(&t.ID, &t.Nom, &t.CategorieID)
	if err == sql.ErrNoRows {
		return nil, ErrIntrouvable
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *sqlStore) CreateTheme(nom string, categorieID int) (int, error) {
	id, err := s.insertID(s.conn, `INSERT INTO themes(nom, categorie_id) VALUES (?, ?)`, nom, categorieID)
	return int(id), err
}

func (s *sqlStore) UpdateTheme(t *Theme) error {
	return s.exec(`UPDATE themes SET nom = ?, categorie_id = ? WHERE id = ?`, t.Nom, t.CategorieID, t.ID)
}

func (s *sqlStore) DeleteTheme(id int) error {
	return s.exec(`DELETE FROM themes WHERE id = ?`, id)
}

// ---------------------------------------------------------------------------
// Tableaux

const tableauCols = `id, nom_feuille, titre, etiquette_ligne, theme_id, source`

func scanTableau(sc interface{ Scan(...interface{}) error }) (Tableau, error) {
	var t Tableau
	var etiquette, source sql.NullString
	err := sc.Scan(&t.ID, &t.NomFeuille, &t.Titre, &etiquette, &t.ThemeID, &source)
	t.EtiquetteLigne = etiquette.String
	t.Source = source.String
	return t, err
}

func (s *sqlStore) listTableaux(query string, args ...interface{}) ([]Tableau, error) {
	rows, err := s.conn.Query(formatPlaceholders(s.style, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableaux []Tableau
	for rows.Next() {
		t, err := scanTableau(rows)
		if err != nil {
			return nil, err
		}
		tableaux = append(tableaux, t)
	}
	return tableaux, rows.Err()
}

func (s *sqlStore) ListTableaux(themeID int) ([]Tableau, error) {
	if themeID > 0 {
		return s.listTableaux(`SELECT `+tableauCols+` FROM tableaux WHERE theme_id = ? ORDER BY id`, themeID)
	}
	return s.listTableaux(`SELECT ` + tableauCols + ` FROM tableaux ORDER BY id`)
}

func (s *sqlStore) GetTableau(id int) (*Tableau, error) {
	row := s.conn.QueryRow(formatPlaceholders(s.style, `SELECT `+tableauCols+` FROM tableaux WHERE id = ?`), id)
	t, err := scanTableau(row)
	if err == sql.ErrNoRows {
		return nil, ErrIntrouvable
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *sqlStore) CreateTableau(t *Tableau) (int, error) {
	id, err := s.insertID(s.conn,
		`INSERT INTO tableaux(nom_feuille, titre, etiquette_ligne, theme_id, source) VALUES (?, ?, ?, ?, ?)`,
		t.NomFeuille, t.Titre, t.EtiquetteLigne, t.ThemeID, t.Source)
	return int(id), err
}

func (s *sqlStore) UpdateTableau(t *Tableau) error {
	return s.exec(`UPDATE tableaux SET nom_feuille = ?, titre = ?, etiquette_ligne = ?, theme_id = ?, source = ? WHERE id = ?`,
		t.NomFeuille, t.Titre, t.EtiquetteLigne, t.ThemeID, t.Source, t.ID)
}

func (s *sqlStore) DeleteTableau(id int) error {
	return s.exec(`DELETE FROM tableaux WHERE id = ?`, id)
}

func (s *sqlStore) ListSources() ([]string, error) {
	rows, err := s.conn.Query(`SELECT DISTINCT source FROM tableaux WHERE source IS NOT NULL AND source <> '' ORDER BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (s *sqlStore) ListTableauxBySource(source string) ([]Tableau, error) {
	return s.listTableaux(`SELECT `+tableauCols+` FROM tableaux WHERE source = ? ORDER BY id`, source)
}

// ---------------------------------------------------------------------------
// Lignes d'indicateurs

// ListLignes renvoie les lignes d'un tableau dans l'ordre d'affichage:
// ordre nul en dernier, puis valeur d'ordre, puis label.
func (s *sqlStore) ListLignes(tableauID int) ([]LigneIndicateur, error) {
	query := `SELECT id, tableau_id, label, code, parent_code, ordre
		FROM lignes_indicateurs WHERE tableau_id = ?
		ORDER BY (ordre IS NULL), ordre, label`
	rows, err := s.conn.Query(formatPlaceholders(s.style, query), tableauID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lignes []LigneIndicateur
	for rows.Next() {
		var l LigneIndicateur
		var code, parent sql.NullString
		if err := rows.Scan(&l.ID, &l.TableauID, &l.Label, &code, &parent, &l.Ordre); err != nil {
			return nil, err
		}
		l.Code = code.String
		l.ParentCode = parent.String
		lignes = append(lignes, l)
	}
	return lignes, rows.Err()
}

// ---------------------------------------------------------------------------
// Données

const donneeCols = `id, ligne_id, colonne, unite, source, valeur, statut, note_colonne, categorie_id, tableau_id`

func (s *sqlStore) listDonnees(query string, args ...interface{}) ([]Donnee, error) {
	rows, err := s.conn.Query(formatPlaceholders(s.style, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donnees []Donnee
	for rows.Next() {
		var d Donnee
		var unite, source sql.NullString
		if err := rows.Scan(&d.ID, &d.LigneID, &d.Colonne, &unite, &source,
			&d.Valeur, &d.Statut, &d.NoteColonne, &d.CategorieID, &d.TableauID); err != nil {
			return nil, err
		}
		d.Unite = unite.String
		d.Source = source.String
		donnees = append(donnees, d)
	}
	return donnees, rows.Err()
}

func (s *sqlStore) ListDonnees(tableauID int) ([]Donnee, error) {
	return s.listDonnees(`SELECT `+donneeCols+` FROM donnees WHERE tableau_id = ? ORDER BY id`, tableauID)
}

// ListDonneesFiltrees restreint aux lignes données (nil = pas de restriction,
// vide = aucune ligne ne correspond) et aux colonnes exactes demandées.
func (s *sqlStore) ListDonneesFiltrees(tableauID int, ligneIDs []int64, colonnes []string) ([]Donnee, error) {
	if ligneIDs != nil && len(ligneIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + donneeCols + ` FROM donnees WHERE tableau_id = ?`
	args := []interface{}{tableauID}

	if ligneIDs != nil {
		query += ` AND ligne_id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(ligneIDs)), ",") + `)`
		for _, id := range ligneIDs {
			args = append(args, id)
		}
	}
	if len(colonnes) > 0 {
		query += ` AND colonne IN (` + strings.TrimSuffix(strings.Repeat("?,", len(colonnes)), ",") + `)`
		for _, c := range colonnes {
			args = append(args, c)
		}
	}
	query += ` ORDER BY id`

	return s.listDonnees(query, args...)
}

// ---------------------------------------------------------------------------
// Import

// SaveFeuille persiste une feuille entière dans une transaction unique: le
// tableau, ses lignes puis leurs données. Tout échec annule la feuille
// complète; les autres feuilles du classeur ne sont pas concernées.
func (s *sqlStore) SaveFeuille(f *FeuilleImport) (int, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	tableauID, err := s.saveFeuilleTx(tx, f)
	if err != nil {
		logErrorf("feuille %q annulée: %v", f.Tableau.NomFeuille, err)
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		logErrorf("feuille %q annulée au commit: %v", f.Tableau.NomFeuille, err)
		return 0, err
	}
	logInfof("Feuille %q importée: tableau %d, %d lignes", f.Tableau.NomFeuille, tableauID, len(f.Lignes))
	return int(tableauID), nil
}

func (s *sqlStore) saveFeuilleTx(tx *sql.Tx, f *FeuilleImport) (int64, error) {
	tableauID, err := s.insertID(tx,
		`INSERT INTO tableaux(nom_feuille, titre, etiquette_ligne, theme_id, source) VALUES (?, ?, ?, ?, ?)`,
		f.Tableau.NomFeuille, f.Tableau.Titre, f.Tableau.EtiquetteLigne, f.Tableau.ThemeID, f.Tableau.Source)
	if err != nil {
		return 0, fmt.Errorf("insertion du tableau: %w", err)
	}

	for i := range f.Lignes {
		li := &f.Lignes[i]
		ligneID, err := s.insertID(tx,
			`INSERT INTO lignes_indicateurs(tableau_id, label, code, parent_code, ordre) VALUES (?, ?, ?, ?, ?)`,
			tableauID, li.Ligne.Label, li.Ligne.Code, li.Ligne.ParentCode, li.Ligne.Ordre)
		if err != nil {
			return 0, fmt.Errorf("insertion de la ligne %q: %w", li.Ligne.Label, err)
		}

		for j := range li.Donnees {
			d := &li.Donnees[j]
			_, err := tx.Exec(formatPlaceholders(s.style,
				`INSERT INTO donnees(ligne_id, colonne, unite, source, valeur, statut, note_colonne, categorie_id, tableau_id)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
				ligneID, d.Colonne, d.Unite, d.Source, d.Valeur, d.Statut, d.NoteColonne, d.CategorieID, tableauID)
			if err != nil {
				return 0, fmt.Errorf("insertion de la donnée (%q, %q): %w", li.Ligne.Label, d.Colonne, err)
			}
		}
	}
	return tableauID, nil
}

// ---------------------------------------------------------------------------
// Recherche globale

func (s *sqlStore) SearchCategories(q string) ([]Categorie, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	rows, err := s.conn.Query(formatPlaceholders(s.style,
		`SELECT id, nom FROM categories WHERE LOWER(nom) LIKE ? ORDER BY nom`), pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Categorie
	for rows.Next() {
		var c Categorie
		if err := rows.Scan(&c.ID, &c.Nom); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *sqlStore) SearchThemes(q string) ([]Theme, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	rows, err := s.conn.Query(formatPlaceholders(s.style,
		`SELECT id, nom, categorie_id FROM themes WHERE LOWER(nom) LIKE ? ORDER BY nom`), pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var themes []Theme
	for rows.Next() {
		var t Theme
		if err := rows.Scan(&t.ID, &t.Nom, &t.CategorieID); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

func (s *sqlStore) SearchTableaux(q string) ([]Tableau, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	return s.listTableaux(`SELECT `+tableauCols+` FROM tableaux
		WHERE LOWER(titre) LIKE ? OR LOWER(source) LIKE ? ORDER BY id`, pattern, pattern)
}

// ---------------------------------------------------------------------------
// Utilisateurs et sessions

const utilisateurCols = `id, email, password_hash, is_chef, categorie_id, is_active, is_staff, is_superuser, date_creation`

func scanUtilisateur(sc interface{ Scan(...interface{}) error }) (Utilisateur, error) {
	var u Utilisateur
	var dateCreation string
	err := sc.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsChef, &u.CategorieID,
		&u.Active, &u.IsStaff, &u.IsSuperuser, &dateCreation)
	if err == nil {
		u.DateCreation, _ = time.Parse(time.RFC3339, dateCreation)
	}
	return u, err
}

func (s *sqlStore) CreateUtilisateur(u *Utilisateur) (int, error) {
	if u.DateCreation.IsZero() {
		u.DateCreation = time.Now().UTC()
	}
	id, err := s.insertID(s.conn,
		`INSERT INTO utilisateurs(email, password_hash, is_chef, categorie_id, is_active, is_staff, is_superuser, date_creation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.IsChef, u.CategorieID, u.Active, u.IsStaff, u.IsSuperuser,
		u.DateCreation.Format(time.RFC3339))
	return int(id), err
}

func (s *sqlStore) GetUtilisateurByEmail(email string) (*Utilisateur, error) {
	row := s.conn.QueryRow(formatPlaceholders(s.style,
		`SELECT `+utilisateurCols+` FROM utilisateurs WHERE email = ?`), email)
	u, err := scanUtilisateur(row)
	if err == sql.ErrNoRows {
		return nil, ErrIntrouvable
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *sqlStore) GetUtilisateurByID(id int) (*Utilisateur, error) {
	row := s.conn.QueryRow(formatPlaceholders(s.style,
		`SELECT `+utilisateurCols+` FROM utilisateurs WHERE id = ?`), id)
	u, err := scanUtilisateur(row)
	if err == sql.ErrNoRows {
		return nil, ErrIntrouvable
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *sqlStore) SaveSession(token string, utilisateurID int, expiration time.Time) error {
	return s.exec(`INSERT INTO sessions(token, utilisateur_id, expiration) VALUES (?, ?, ?)`,
		token, utilisateurID, expiration.UTC().Format(time.RFC3339))
}

func (s *sqlStore) GetSessionUtilisateur(token string) (*Utilisateur, error) {
	row := s.conn.QueryRow(formatPlaceholders(s.style,
		`SELECT u.id, u.email, u.password_hash, u.is_chef, u.categorie_id, u.is_active, u.is_staff, u.is_superuser, u.date_creation, s.expiration
		 FROM sessions s JOIN utilisateurs u ON u.id = s.utilisateur_id WHERE s.token = ?`), token)

	var u Utilisateur
	var dateCreation, expiration string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsChef, &u.CategorieID,
		&u.Active, &u.IsStaff, &u.IsSuperuser, &dateCreation, &expiration)
	if err == sql.ErrNoRows {
		return nil, ErrIntrouvable
	}
	if err != nil {
		return nil, err
	}
	u.DateCreation, _ = time.Parse(time.RFC3339, dateCreation)

	exp, err := time.Parse(time.RFC3339, expiration)
	if err != nil || time.Now().UTC().After(exp) {
		_ = s.DeleteSession(token)
		return nil, ErrIntrouvable
	}
	return &u, nil
}

func (s *sqlStore) DeleteSession(token string) error {
	return s.exec(`DELETE FROM sessions WHERE token = ?`, token)
}
