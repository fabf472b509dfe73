package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/rs/cors"

	"github.com/expenseflow/backend/internal/categorize"
	"github.com/expenseflow/backend/internal/config"
	"github.com/expenseflow/backend/internal/ingest"
	"github.com/expenseflow/backend/internal/service"
	"github.com/expenseflow/backend/internal/session"
	"github.com/expenseflow/backend/internal/store"
	"github.com/expenseflow/backend/internal/template"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var storeImpl store.Store
	if cfg.UseMemoryStore {
		log.Println("Using in-memory store for local development")
		storeImpl = store.NewMemoryStore()
	} else {
		projectID := cfg.GoogleCloudProject
		if projectID == "" {
			log.Fatalf("GOOGLE_CLOUD_PROJECT must be set when not using the memory store")
		}
		firestoreClient, err := firestore.NewClient(ctx, projectID)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		storeImpl = store.NewFirestoreStore(firestoreClient)
		log.Printf("Using Firestore store (project %s)", projectID)
	}

	var catalog *template.Catalog
	if _, statErr := os.Stat(cfg.TemplatesPath); statErr == nil {
		catalog, err = template.LoadCatalogFile(cfg.TemplatesPath, template.WithAcceptThreshold(cfg.AcceptThreshold))
		if err != nil {
			log.Fatalf("Failed to load bank templates: %v", err)
		}
		log.Printf("Loaded %d bank templates from %s", catalog.Len(), cfg.TemplatesPath)
	} else {
		log.Printf("No bank templates at %s, PDF parsing will use generic table extraction", cfg.TemplatesPath)
	}

	var oracle categorize.Oracle
	if cfg.GroqAPIKey != "" {
		oracle = categorize.NewHTTPOracle(cfg.GroqAPIURL, cfg.GroqAPIKey, cfg.GroqModel)
		log.Printf("AI categorization enabled (model %s)", cfg.GroqModel)
	}

	sessions := session.NewStore(cfg.SessionTTL)
	defer sessions.Close()

	parser := ingest.NewParser(catalog, ingest.WithMaxUploadBytes(int(cfg.MaxUploadBytes)))
	engine := categorize.NewEngine(storeImpl, oracle)
	svc := service.NewStatementService(parser, sessions, engine)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	registerRoutes(mux, svc, cfg.MaxUploadBytes)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: corsHandler.Handler(mux),
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
