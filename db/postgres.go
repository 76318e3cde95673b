package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgreSQL implémente DB au-dessus de lib/pq.
type PostgreSQL struct {
	Host   string
	Port   string
	User   string
	Pass   string
	DBName string
	Recrea bool
	sqlStore
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		nom TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS themes (
		id SERIAL PRIMARY KEY,
		nom TEXT NOT NULL,
		categorie_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tableaux (
		id SERIAL PRIMARY KEY,
		nom_feuille TEXT NOT NULL,
		titre TEXT NOT NULL,
		etiquette_ligne TEXT,
		theme_id INTEGER NOT NULL REFERENCES themes(id) ON DELETE CASCADE,
		source TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS lignes_indicateurs (
		id SERIAL PRIMARY KEY,
		tableau_id INTEGER NOT NULL REFERENCES tableaux(id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		code TEXT,
		parent_code TEXT,
		ordre INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS donnees (
		id SERIAL PRIMARY KEY,
		ligne_id INTEGER REFERENCES lignes_indicateurs(id) ON DELETE SET NULL,
		colonne TEXT NOT NULL,
		unite TEXT,
		source TEXT,
		valeur DOUBLE PRECISION,
		statut TEXT,
		note_colonne TEXT,
		categorie_id INTEGER NOT NULL REFERENCES categories(id),
		tableau_id INTEGER NOT NULL REFERENCES tableaux(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS utilisateurs (
		id SERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_chef BOOLEAN NOT NULL DEFAULT FALSE,
		categorie_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
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

func (p *PostgreSQL) Connect() error {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Pass, p.DBName)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("erreur de connexion PostgreSQL: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return fmt.Errorf("PostgreSQL injoignable: %w", err)
	}

	p.sqlStore = sqlStore{conn: conn, style: "postgres"}

	if p.Recrea {
		if err := dropTables(conn); err != nil {
			return err
		}
	}
	for _, stmt := range postgresSchema {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("erreur de création du schéma PostgreSQL: %w", err)
		}
	}
	logInfof("Connecté à PostgreSQL (%s/%s)", p.Host, p.DBName)
	return nil
}
