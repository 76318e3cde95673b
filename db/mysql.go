package db

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MySQL implémente DB au-dessus de go-sql-driver/mysql.
type MySQL struct {
	Host   string
	Port   string
	User   string
	Pass   string
	DBName string
	Recrea bool
	sqlStore
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INT AUTO_INCREMENT PRIMARY KEY,
		nom VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS themes (
		id INT AUTO_INCREMENT PRIMARY KEY,
		nom VARCHAR(255) NOT NULL,
		categorie_id INT NOT NULL,
		FOREIGN KEY (categorie_id) REFERENCES categories(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tableaux (
		id INT AUTO_INCREMENT PRIMARY KEY,
		nom_feuille VARCHAR(255) NOT NULL,
		titre VARCHAR(255) NOT NULL,
		etiquette_ligne VARCHAR(255),
		theme_id INT NOT NULL,
		source TEXT,
		FOREIGN KEY (theme_id) REFERENCES themes(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS lignes_indicateurs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		tableau_id INT NOT NULL,
		label TEXT NOT NULL,
		code VARCHAR(100),
		parent_code VARCHAR(100),
		ordre INT,
		FOREIGN KEY (tableau_id) REFERENCES tableaux(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS donnees (
		id INT AUTO_INCREMENT PRIMARY KEY,
		ligne_id INT,
		colonne VARCHAR(255) NOT NULL,
		unite VARCHAR(50),
		source TEXT,
		valeur DOUBLE,
		statut VARCHAR(50),
		note_colonne VARCHAR(255),
		categorie_id INT NOT NULL,
		tableau_id INT NOT NULL,
		FOREIGN KEY (ligne_id) REFERENCES lignes_indicateurs(id) ON DELETE SET NULL,
		FOREIGN KEY (categorie_id) REFERENCES categories(id),
		FOREIGN KEY (tableau_id) REFERENCES tableaux(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS utilisateurs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		is_chef BOOLEAN NOT NULL DEFAULT FALSE,
		categorie_id INT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
		date_creation VARCHAR(40) NOT NULL,
		FOREIGN KEY (categorie_id) REFERENCES categories(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token VARCHAR(64) PRIMARY KEY,
		utilisateur_id INT NOT NULL,
		expiration VARCHAR(40) NOT NULL,
		FOREIGN KEY (utilisateur_id) REFERENCES utilisateurs(id) ON DELETE CASCADE
	)`,
}

func (d *MySQL) Connect() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", d.User, d.Pass, d.Host, d.Port, d.DBName)
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("erreur de connexion MySQL: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return fmt.Errorf("MySQL injoignable: %w", err)
	}

	d.sqlStore = sqlStore{conn: conn, style: "mysql"}

	if d.Recrea {
		if err := dropTables(conn); err != nil {
			return err
		}
	}
	for _, stmt := range mysqlSchema {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("erreur de création du schéma MySQL: %w", err)
		}
	}
	logInfof("Connecté à MySQL (%s/%s)", d.Host, d.DBName)
	return nil
}
