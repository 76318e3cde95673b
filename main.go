package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/julienschmidt/httprouter"

	"github.com/ansadev/PortailStat/cnf"
	"github.com/ansadev/PortailStat/core"
	"github.com/ansadev/PortailStat/db"
	"github.com/ansadev/PortailStat/web/handlers"
)

func main() {
	cheminConfig := "cnf/config.cfg"
	if len(os.Args) > 1 {
		cheminConfig = os.Args[1]
	}

	config, err := cnf.LoadConfig(cheminConfig)
	if err != nil {
		log.Fatal(err)
	}
	appCfg, err := cnf.ParseConfig(config)
	if err != nil {
		log.Fatal(err)
	}
	core.SetLogLevel(appCfg.LogLevel)

	// Réinjecte les valeurs par défaut typées dans la map brute.
	config["DB_ENGINE"] = appCfg.DBEngine
	config["DB_PATH"] = appCfg.DBPath

	database, err := db.NewDB(config)
	if err != nil {
		log.Fatal(err)
	}

	app := core.NewApp(config, database, appCfg.SessionHours)
	defer app.Close()

	if err := app.EnsureAdmin(); err != nil {
		log.Fatal(err)
	}

	router := httprouter.New()
	handlers.RegisterAPI(router, app)

	fmt.Printf("Portail statistique sur http://localhost:%s\n", appCfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+appCfg.HTTPPort, router))
}
