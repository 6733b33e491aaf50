package main

import (
	"flag"
	"fmt"

	"github.com/pynezz/nauthiz/internal/api"
	"github.com/pynezz/nauthiz/internal/config"
	"github.com/pynezz/nauthiz/internal/database"
	"github.com/pynezz/nauthiz/internal/database/stores"
	"github.com/pynezz/nauthiz/internal/enrich"
	"github.com/pynezz/nauthiz/internal/fswatcher"

	"github.com/joho/godotenv"
	"github.com/pynezz/pynezzentials/ansi"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	port := flag.Int("port", 0, "Listen port (overrides the configured one)")
	flag.Parse()

	// Secrets live in .env; absence is fine, the environment may be set
	// some other way.
	if err := godotenv.Load(); err == nil {
		ansi.PrintInfo("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Println(err)
		fmt.Println("Exiting...")
		return
	}
	if *port != 0 {
		cfg.Network.Port = *port
	}

	// The store is fully initialized before the listener starts. No
	// per-request lazy setup anywhere downstream.
	db, err := database.InitAssessmentsDB(cfg.Database.Path)
	if err != nil {
		ansi.PrintError("Failed to initialize database: " + err.Error())
		return
	}
	store, err := stores.NewAssessmentStore(db)
	if err != nil {
		ansi.PrintError("Failed to initialize assessment store: " + err.Error())
		return
	}
	ansi.PrintSuccess("Database initialized")

	orch := enrich.NewOrchestrator(cfg)

	app := api.NewServer(cfg, store, orch)

	go func() {
		err := fswatcher.Watch(*configPath, func() {
			if err := cfg.Reload(*configPath); err != nil {
				ansi.PrintError("Config reload failed: " + err.Error())
			}
		})
		if err != nil {
			ansi.PrintWarning("Config watcher unavailable: " + err.Error())
		}
	}()

	if err := app.Listen(fmt.Sprintf(":%d", cfg.Network.Port)); err != nil {
		ansi.PrintError(err.Error())
	}
}
