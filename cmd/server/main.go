package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/festivelab/giftwhisper/internal/api"
	"github.com/festivelab/giftwhisper/internal/db"
	"github.com/festivelab/giftwhisper/internal/middleware"
	"github.com/festivelab/giftwhisper/internal/utils"
)

func main() {
	addr := utils.SafeEnv("GIFTWHISPER_ADDR", ":8080")
	commit := os.Getenv("GIFTWHISPER_COMMIT")
	buildTime := os.Getenv("GIFTWHISPER_BUILD_TIME")

	store, err := openStore()
	if err != nil {
		log.Fatalf("store init: %v", err)
	}

	tokenSecret := os.Getenv("GIFTWHISPER_TOKEN_SECRET")
	if tokenSecret == "" {
		log.Printf("GIFTWHISPER_TOKEN_SECRET not set; assignment tokens use the development secret")
	}

	mux := http.NewServeMux()
	api.NewRouter(store, api.Config{
		TokenSecret: tokenSecret,
		ClueTarget:  utils.SafeIntEnv("GIFTWHISPER_CLUE_COUNT", 0),
	}).Register(mux)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "GiftWhisper API",
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

	// Organizer UI, when bundled into the image.
	if staticDir := os.Getenv("GIFTWHISPER_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.SecureHeaders(middleware.CORS(middleware.NoStore(middleware.WithAuth(mux))))

	log.Printf("GiftWhisper server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore picks sqlite when GIFTWHISPER_SQLITE_PATH is set, otherwise the
// in-memory store. Migrations run on every start; they are idempotent.
func openStore() (api.Store, error) {
	path := os.Getenv("GIFTWHISPER_SQLITE_PATH")
	if path == "" {
		log.Printf("GIFTWHISPER_SQLITE_PATH not set; using in-memory store (data is lost on restart)")
		return api.NewMemoryStore(), nil
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(conn, os.Getenv("GIFTWHISPER_MIGRATIONS_DIR")); err != nil {
		return nil, err
	}
	return db.NewStore(conn)
}
