package cnf

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type yamlConfig struct {
	Database struct {
		Engine   string `yaml:"engine"`
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
		} `yaml:"postgresql"`
		MySQL struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
		} `yaml:"mysql"`
		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
	} `yaml:"database"`
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	LogLevel     string `yaml:"log_level"`
	Environment  string `yaml:"environment"`
	RecreaDB     bool   `yaml:"recreadb"`
	SessionHours int    `yaml:"session_duree_hores"`
}

// loadYAMLConfig lit la variante YAML et l'aplatit vers les mêmes clés
// que le format clé=valeur, pour que ParseConfig reste l'unique point de vérité.
func loadYAMLConfig(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("impossible d'ouvrir le fichier de configuration: %w", err)
	}
	defer file.Close()

	var yc yamlConfig
	if err := yaml.NewDecoder(file).Decode(&yc); err != nil {
		return nil, fmt.Errorf("erreur de décodage YAML: %w", err)
	}

	config := make(map[string]string)
	config["DB_ENGINE"] = yc.Database.Engine
	config["DB_PATH"] = yc.Database.SQLite.Path
	switch yc.Database.Engine {
	case "postgres":
		config["DB_HOST"] = yc.Database.Postgres.Host
		config["DB_PORT"] = strconv.Itoa(yc.Database.Postgres.Port)
		config["DB_USR"] = yc.Database.Postgres.User
		config["DB_PASS"] = yc.Database.Postgres.Password
		config["DB_NAME"] = yc.Database.Postgres.DBName
	case "mysql":
		config["DB_HOST"] = yc.Database.MySQL.Host
		config["DB_PORT"] = strconv.Itoa(yc.Database.MySQL.Port)
		config["DB_USR"] = yc.Database.MySQL.User
		config["DB_PASS"] = yc.Database.MySQL.Password
		config["DB_NAME"] = yc.Database.MySQL.DBName
	}
	config["HTTP_PORT"] = yc.HTTP.Port
	config["LOG_LEVEL"] = yc.LogLevel
	config["ENVIRONMENT"] = yc.Environment
	if yc.RecreaDB {
		config["RECREADB"] = "true"
	}
	if yc.SessionHours > 0 {
		config["SESSION_DUREE_HORES"] = strconv.Itoa(yc.SessionHours)
	}

	Config = config
	return config, nil
}
