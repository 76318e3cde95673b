package core

import (
	"github.com/ansadev/PortailStat/db"
)

// App encapsule les dépendances partagées entre handlers. Aucune couche de
// cache: chaque lecture recalcule le pivot depuis les observations stockées.
type App struct {
	Config       map[string]string
	DB           db.DB
	SessionHours int
}

func NewApp(cfg map[string]string, database db.DB, sessionHours int) *App {
	if sessionHours <= 0 {
		sessionHours = 24
	}
	return &App{
		Config:       cfg,
		DB:           database,
		SessionHours: sessionHours,
	}
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
