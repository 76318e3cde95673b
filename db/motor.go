package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrIntrouvable est renvoyée quand l'entité demandée n'existe pas.
var ErrIntrouvable = errors.New("entité introuvable")

// DB est le contrat du magasin relationnel du portail.
type DB interface {
	Connect() error
	Close()
	DB() *sql.DB

	// Catégories
	ListCategories() ([]Categorie, error)
	GetCategorie(id int) (*Categorie, error)
	CreateCategorie(nom string) (int, error)
	UpdateCategorie(c *Categorie) error
	DeleteCategorie(id int) error

	// Thèmes
	ListThemes(categorieID int) ([]Theme, error)
	GetTheme(id int) (*Theme, error)
	CreateTheme(nom string, categorieID int) (int, error)
	UpdateTheme(t *Theme) error
	DeleteTheme(id int) error

	// Tableaux
	ListTableaux(themeID int) ([]Tableau, error)
	GetTableau(id int) (*Tableau, error)
	CreateTableau(t *Tableau) (int, error)
	UpdateTableau(t *Tableau) error
	DeleteTableau(id int) error
	ListSources() ([]string, error)
	ListTableauxBySource(source string) ([]Tableau, error)

	// Lignes d'indicateurs (triées ordre nul en dernier, puis ordre, puis label)
	ListLignes(tableauID int) ([]LigneIndicateur, error)

	// Données
	ListDonnees(tableauID int) ([]Donnee, error)
	ListDonneesFiltrees(tableauID int, ligneIDs []int64, colonnes []string) ([]Donnee, error)

	// Import d'une feuille: tableau + lignes + données dans une transaction unique.
	SaveFeuille(f *FeuilleImport) (int, error)

	// Recherche globale
	SearchCategories(q string) ([]Categorie, error)
	SearchThemes(q string) ([]Theme, error)
	SearchTableaux(q string) ([]Tableau, error)

	// Utilisateurs et sessions
	CreateUtilisateur(u *Utilisateur) (int, error)
	GetUtilisateurByEmail(email string) (*Utilisateur, error)
	GetUtilisateurByID(id int) (*Utilisateur, error)
	SaveSession(token string, utilisateurID int, expiration time.Time) error
	GetSessionUtilisateur(token string) (*Utilisateur, error)
	DeleteSession(token string) error
}

// Categorie classe les thèmes et porte le périmètre d'accès des chefs de section.
type Categorie struct {
	ID  int
	Nom string
}

type Theme struct {
	ID          int
	Nom         string
	CategorieID int
}

// Tableau correspond à une feuille de calcul ingérée.
type Tableau struct {
	ID             int
	NomFeuille     string
	Titre          string
	EtiquetteLigne string
	ThemeID        int
	Source         string
}

// LigneIndicateur est une entrée de l'axe des lignes d'un tableau.
// ParentCode est une référence faible: une simple égalité de chaîne avec le
// Code d'une autre ligne du même tableau, jamais une clé étrangère.
type LigneIndicateur struct {
	ID         int
	TableauID  int
	Label      string
	Code       string
	ParentCode string
	Ordre      sql.NullInt64
}

// Donnee est une cellule (ligne, colonne): valeur numérique ou code de statut.
// Valeur et Statut restent indépendamment nullables; l'ingestion ne produit
// jamais les deux à la fois.
type Donnee struct {
	ID          int
	LigneID     sql.NullInt64
	Colonne     string
	Unite       string
	Source      string
	Valeur      sql.NullFloat64
	Statut      sql.NullString
	NoteColonne sql.NullString
	CategorieID int
	TableauID   int
}

type Utilisateur struct {
	ID           int
	Email        string
	PasswordHash string
	IsChef       bool
	CategorieID  sql.NullInt64
	Active       bool
	IsStaff      bool
	IsSuperuser  bool
	DateCreation time.Time
}

// LigneImport attache à une ligne ses données, avant affectation des ids.
type LigneImport struct {
	Ligne   LigneIndicateur
	Donnees []Donnee
}

// FeuilleImport est l'unité transactionnelle d'ingestion: une feuille entière.
type FeuilleImport struct {
	Tableau Tableau
	Lignes  []LigneImport
}

// NewDB instancie le moteur demandé et ouvre la connexion.
func NewDB(config map[string]string) (DB, error) {
	var dbInstance DB
	engine := config["DB_ENGINE"]

	switch engine {
	case "sqlite", "":
		dbInstance = &SQLite{Path: config["DB_PATH"], Recrea: config["RECREADB"] == "true"}
	case "postgres":
		dbInstance = &PostgreSQL{
			Host:   config["DB_HOST"],
			Port:   config["DB_PORT"],
			User:   config["DB_USR"],
			Pass:   config["DB_PASS"],
			DBName: config["DB_NAME"],
			Recrea: config["RECREADB"] == "true",
		}
	case "mysql":
		dbInstance = &MySQL{
			Host:   config["DB_HOST"],
			Port:   config["DB_PORT"],
			User:   config["DB_USR"],
			Pass:   config["DB_PASS"],
			DBName: config["DB_NAME"],
			Recrea: config["RECREADB"] == "true",
		}
	default:
		return nil, fmt.Errorf("moteur de BD inconnu: %s", engine)
	}

	if err := dbInstance.Connect(); err != nil {
		return nil, err
	}

	return dbInstance, nil
}
