package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/lanehall/celebbackend/config"
	"github.com/lanehall/celebbackend/database"
	"github.com/lanehall/celebbackend/handlers"
	"github.com/lanehall/celebbackend/realtime"
	"github.com/lanehall/celebbackend/repository"
	"github.com/lanehall/celebbackend/session"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	dsn := cfg.DatabaseDSN
	if dsn == "" {
		dsn = database.InMemoryDSN
	}
	db, err := database.InitGormDB(dsn)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}
	if err := database.SeedRecords(db, cfg.SeedPath); err != nil {
		log.Fatalf("FATAL: Failed to seed records: %v", err)
	}

	hub := realtime.NewHub()
	go hub.Run()

	recordRepo := repository.NewRecordRepository(db)
	sessions := session.NewManager(recordRepo, hub, cfg.AdultAge)
	deletions := session.NewDeletionWorkflow(recordRepo, hub)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	recordHandler := &handlers.RecordHandler{Repo: recordRepo, Sessions: sessions}
	sessionHandler := &handlers.SessionHandler{Sessions: sessions}
	deletionHandler := &handlers.DeletionHandler{Deletions: deletions}

	r.Route("/api", func(r chi.Router) {
		r.Get("/genders", recordHandler.ListGenders)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", recordHandler.ListRecords)
			r.Route("/{record_id}", func(r chi.Router) {
				r.Get("/", recordHandler.GetRecord)
				r.Post("/edit", sessionHandler.StartEdit)
				r.Get("/edit", sessionHandler.GetSession)
				r.Put("/fields/{field_name}", sessionHandler.StageField)
				r.Post("/commit", sessionHandler.Commit)
				r.Post("/cancel", sessionHandler.Cancel)
				r.Post("/delete-request", deletionHandler.RequestDelete)
			})
		})

		r.Route("/deletion", func(r chi.Router) {
			r.Get("/", deletionHandler.GetDeletion)
			r.Post("/confirm", deletionHandler.ConfirmDelete)
			r.Post("/cancel", deletionHandler.CancelDelete)
		})
	})

	r.Get("/ws", hub.ServeWS)

	serverAddr := ":" + cfg.Port
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
