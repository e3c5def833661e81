package main

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/hackboard/hackboard/internal/config"
	"github.com/hackboard/hackboard/internal/db"
	"github.com/hackboard/hackboard/internal/metrics"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalln("Failed to connect to DB:", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsDir); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	metrics.Register()

	sessionManager := scs.New()
	sessionManager.Lifetime = 24 * time.Hour
	sessionManager.Store = sqlite3store.New(database.DB)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	router := newRouter(database, sessionManager, rng)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Println("Server starting on http://localhost:" + cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, corsMiddleware.Handler(router)); err != nil {
		log.Fatal(err)
	}
}
