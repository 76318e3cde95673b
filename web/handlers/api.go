package handlers

import (
	"github.com/julienschmidt/httprouter"

	"github.com/ansadev/PortailStat/core"
)

// RegisterAPI branche toutes les routes JSON du portail sur le routeur.
func RegisterAPI(router *httprouter.Router, app *core.App) {
	// Sessions
	router.POST("/api/login", app.Login)
	router.POST("/api/logout", app.Logout)
	router.GET("/api/user-info", app.UserInfo)

	// Référentiel
	router.GET("/api/categories", app.ListCategories)
	router.POST("/api/categories", app.CreateCategorie)
	router.GET("/api/categories/:id", app.GetCategorie)
	router.PUT("/api/categories/:id", app.UpdateCategorie)
	router.DELETE("/api/categories/:id", app.DeleteCategorie)

	router.GET("/api/themes", app.ListThemes)
	router.POST("/api/themes", app.CreateTheme)
	router.GET("/api/themes/:id", app.GetTheme)
	router.PUT("/api/themes/:id", app.UpdateTheme)
	router.DELETE("/api/themes/:id", app.DeleteTheme)

	router.GET("/api/tableaux", app.ListTableaux)
	router.POST("/api/tableaux", app.CreateTableau)
	router.GET("/api/tableaux/:id", app.GetTableauHandler)
	router.PUT("/api/tableaux/:id", app.UpdateTableau)
	router.DELETE("/api/tableaux/:id", app.DeleteTableau)

	router.GET("/api/donnees", app.ListDonnees)

	// Ingestion
	router.POST("/api/import-excel", app.ImportExcel)

	// Consultation
	router.GET("/api/tableaux/:id/structure", app.TableauStructure)
	router.GET("/api/tableaux/:id/filtres-options", app.FiltresOptions)
	router.POST("/api/tableaux/:id/filtrer", app.Filtrer)
	router.POST("/api/tableaux/:id/filtrer-structure", app.FiltrerStructure)
	router.GET("/api/tableaux/:id/analyse", app.TableauAnalyse)
	router.GET("/api/tableaux/:id/carte", app.TableauCarte)

	router.GET("/api/sources", app.ListSources)
	router.GET("/api/sources/:source/tableaux", app.TableauxParSource)
	router.GET("/api/recherche-globale", app.RechercheGlobale)

	// Export
	router.GET("/api/export/tableaux/:id", app.ExportTableau)
}
