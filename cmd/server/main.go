package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/avivlab/stressexp/internal/api"
	"github.com/avivlab/stressexp/internal/db"
	"github.com/avivlab/stressexp/internal/middleware"
	"github.com/avivlab/stressexp/internal/utils"
)

func main() {
	// Best-effort .env for local runs; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	addr := utils.SafeEnv("STRESSEXP_ADDR", ":8080")
	dbPath := utils.SafeEnv("STRESSEXP_DB_PATH", "experiment.db")
	schema := utils.SafeEnv("STRESSEXP_SCHEMA", db.SchemaFixed)
	demographics := utils.SafeEnv("STRESSEXP_DEMOGRAPHICS", "basic")
	migrationsDir := os.Getenv("STRESSEXP_MIGRATIONS_DIR")
	commit := os.Getenv("STRESSEXP_COMMIT")
	buildTime := os.Getenv("STRESSEXP_BUILD_TIME")

	sqliteDB, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() {
		if cerr := sqliteDB.Close(); cerr != nil {
			log.Printf("close database: %v", cerr)
		}
	}()

	if err := db.RunMigrations(sqliteDB, migrationsDir, schema); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	store, err := db.NewStore(sqliteDB, schema)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}

	mux := http.NewServeMux()
	api.NewRouter(store, api.Config{
		Freeform:             schema == db.SchemaJournal,
		ExtendedDemographics: demographics == "extended",
	}).Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "stressexp API",
			"schema":     schema,
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// The experiment page is a static bundle; everything else is API.
	if staticDir := os.Getenv("STRESSEXP_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.CORS(middleware.SecureHeaders(middleware.NoStore(middleware.WithAuth(mux))))

	log.Printf("stressexp server listening on %s (schema=%s)", addr, schema)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
