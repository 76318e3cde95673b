package cnf

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config – variable publique avec les options de configuration chargées.
var Config map[string]string

// AppConfig regroupe la configuration typée du portail.
type AppConfig struct {
	DBEngine     string
	DBPath       string
	DBHost       string
	DBUser       string
	DBPass       string
	DBPort       string
	DBName       string
	HTTPPort     string
	LogLevel     string
	Env          string
	RecreaDB     bool
	SessionHours int
}

// LoadConfig charge un fichier clé=valeur en ignorant lignes vides et commentaires.
// Un fichier .yaml ou .yml est délégué au loader YAML (config.go).
func LoadConfig(path string) (map[string]string, error) {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return loadYAMLConfig(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("impossible d'ouvrir le fichier de configuration: %w", err)
	}
	defer file.Close()

	config := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if !strings.Contains(line, "=") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if value != "" {
			commentIdx := -1
			for _, marker := range []string{" #", "\t#", " ;", "\t;"} {
				if idx := strings.Index(value, marker); idx >= 0 && (commentIdx == -1 || idx < commentIdx) {
					commentIdx = idx
				}
			}
			if commentIdx >= 0 {
				value = strings.TrimSpace(value[:commentIdx])
			}
		}
		config[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("erreur de lecture de la configuration: %w", err)
	}

	Config = config
	return config, nil
}

// ParseConfig convertit map[string]string en AppConfig avec valeurs par défaut.
func ParseConfig(cfg map[string]string) (AppConfig, error) {
	ac := AppConfig{
		DBEngine: strings.TrimSpace(cfg["DB_ENGINE"]),
		DBPath:   cfg["DB_PATH"],
		DBHost:   cfg["DB_HOST"],
		DBUser:   cfg["DB_USR"],
		DBPass:   cfg["DB_PASS"],
		DBPort:   cfg["DB_PORT"],
		DBName:   cfg["DB_NAME"],
		HTTPPort: strings.TrimSpace(cfg["HTTP_PORT"]),
		LogLevel: strings.TrimSpace(cfg["LOG_LEVEL"]),
		Env:      strings.TrimSpace(cfg["ENVIRONMENT"]),
	}

	if ac.DBEngine == "" {
		ac.DBEngine = "sqlite"
	}
	if ac.DBPath == "" {
		ac.DBPath = "./portail.db"
	}
	if ac.HTTPPort == "" {
		ac.HTTPPort = "8080"
	}
	if ac.LogLevel == "" {
		ac.LogLevel = "info"
	}
	if ac.Env == "" {
		ac.Env = os.Getenv("ENVIRONMENT")
		if ac.Env == "" {
			ac.Env = "development"
		}
	}

	if v, ok := cfg["RECREADB"]; ok {
		ac.RecreaDB, _ = strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	}

	ac.SessionHours = 24
	if v, ok := cfg["SESSION_DUREE_HORES"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			ac.SessionHours = n
		}
	}

	return ac, nil
}
