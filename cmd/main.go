package main

import (
	"log"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tinkertanker/bitvibe-extension/config"
	"github.com/tinkertanker/bitvibe-extension/database"
	"github.com/tinkertanker/bitvibe-extension/handlers"
	"github.com/tinkertanker/bitvibe-extension/routes"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	// Fails fast if the DB is not up.
	db := database.Connect(cfg)
	store := database.NewStore(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	routes.Register(e, store, cfg)

	addr := ":" + cfg.AppPort
	log.Printf("server listening at %s (provider=%s)", addr, cfg.LLMProvider)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
