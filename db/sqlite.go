package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite implémente DB au-dessus de mattn/go-sqlite3.
type SQLite struct {
	Path   string
	Recrea bool
	sqlStore
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nom TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS themes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nom TEXT NOT NULL,
		categorie_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tableaux (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nom_feuille TEXT NOT NULL,
		titre TEXT NOT NULL,
		etiquette_ligne TEXT,
		theme_id INTEGER NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
		source TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS lignes_indicateurs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tableau_id INTEGER NOT NULL REFERENCES tableaux(id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		code TEXT,
		parent_code TEXT,
		ordre INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS donnees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ligne_id INTEGER REFERENCES lignes_indicateurs(id) ON DELETE SET NULL,
		colonne TEXT NOT NULL,
		unite TEXT,
		source TEXT,
		valeur REAL,
		statut TEXT,
		note_colonne TEXT,
		categorie_id INTEGER NOT NULL REFERENCES categories(id),
		tableau_id INTEGER NOT NULL REFERENCES tableaux(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS utilisateurs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_chef INTEGER NOT NULL DEFAULT 0,
		categorie_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		is_staff INTEGER NOT NULL DEFAULT 0,
		is_superuser INTEGER NOT NULL DEFAULT 0,
		date_creation TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		utilisateur_id INTEGER NOT NULL REFERENCES utilisateurs(id) ON DELETE CASCADE,
		expiration TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lignes_tableau ON lignes_indicateurs(tableau_id)`,
	`CREATE INDEX IF NOT EXISTS idx_donnees_tableau ON donnees(tableau_id)`,
	`CREATE INDEX IF NOT EXISTS idx_donnees_ligne ON donnees(ligne_id)`,
}

func (s *SQLite) Connect() error {
	path := s.Path
	if path == "" {
		path = "./portail.db"
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("erreur de connexion SQLite: %w", err)
	}
	if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("erreur activant foreign_keys: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s.sqlStore = sqlStore{conn: conn, style: "sqlite"}

	if s.Recrea {
		if err := dropTables(conn); err != nil {
			return err
		}
	}
	for _, stmt := range sqliteSchema {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("erreur de création du schéma SQLite: %w", err)
		}
	}
	logInfof("Connecté à SQLite (%s)", path)
	return nil
}

// dropTables supprime les tables dans l'ordre inverse des dépendances.
func dropTables(conn *sql.DB) error {
	for _, table := range []string{"sessions", "utilisateurs", "donnees", "lignes_indicateurs", "tableaux", "themes", "categories"} {
		if _, err := conn.Exec(`DROP TABLE IF EXISTS ` + table); err != nil {
			return fmt.Errorf("erreur supprimant la table %s: %w", table, err)
		}
	}
	return nil
}
