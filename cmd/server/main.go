package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/propeval/propeval/internal/api"
	"github.com/propeval/propeval/internal/db"
	"github.com/propeval/propeval/internal/middleware"
	"github.com/propeval/propeval/internal/utils"
)

func main() {
	addr := utils.SafeEnv("PROPEVAL_ADDR", ":8080")
	commit := os.Getenv("PROPEVAL_COMMIT")
	buildTime := os.Getenv("PROPEVAL_BUILD_TIME")

	store, err := openStore()
	if err != nil {
		log.Fatalf("store init: %v", err)
	}

	mux := http.NewServeMux()
	api.NewRouter(store).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "PropEval API",
			"commit":     commit,
			"build_time": buildTime,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Static frontend if PROPEVAL_STATIC_DIR is set (fullstack image).
	if staticDir := os.Getenv("PROPEVAL_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.NoStore(middleware.SecureHeaders(middleware.CORS(middleware.WithAuth(mux))))

	log.Printf("PropEval server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore selects sqlite persistence when PROPEVAL_SQLITE_PATH is set,
// otherwise the in-memory store.
func openStore() (api.Store, error) {
	path := os.Getenv("PROPEVAL_SQLITE_PATH")
	if path == "" {
		log.Printf("PROPEVAL_SQLITE_PATH not set, using in-memory store")
		return api.NewMemoryStore(), nil
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(conn, os.Getenv("PROPEVAL_MIGRATIONS_DIR")); err != nil {
		return nil, err
	}
	return db.NewStore(conn)
}
