package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cognicore/spendql/internal/embed"
	"github.com/cognicore/spendql/pkg/spendql"
	"github.com/cognicore/spendql/pkg/spendql/config"
	"github.com/cognicore/spendql/pkg/spendql/intent"
	"github.com/cognicore/spendql/pkg/spendql/store"
	"github.com/cognicore/spendql/pkg/spendql/store/memstore"
	"github.com/cognicore/spendql/pkg/spendql/store/sqlite"
)

// requestTimeout bounds one pipeline invocation. The pipeline itself
// has no timeout semantics; the service layer owns cancellation and
// treats an invocation as atomic.
const requestTimeout = 15 * time.Second

func main() {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	port := getenv("PORT", "8080")

	ctx := context.Background()
	pipeline, err := buildPipeline(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pipeline.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /query", handleQuery(pipeline))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
	}

	log.Printf("spendql-server listening on :%s", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func handleQuery(pipeline *spendql.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter q")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		res, err := pipeline.Ask(ctx, spendql.Request{Query: q})
		if err != nil {
			log.Printf("query %q failed: %v", q, err)
			writeError(w, http.StatusInternalServerError, "query failed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			log.Printf("encode response: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func buildPipeline(ctx context.Context) (*spendql.Pipeline, error) {
	loader := config.Loader{
		CategoriesPath: getenv("CATEGORIES_PATH", "configs/categories.yaml"),
		MerchantsPath:  getenv("MERCHANTS_PATH", "configs/merchants.yaml"),
		IntentsPath:    getenv("INTENTS_PATH", "configs/intents.yaml"),
	}
	components, err := loader.Load()
	if err != nil {
		return nil, err
	}

	embedder := &embed.Client{
		BaseURL: getenv("EMBED_BASE_URL", "http://localhost:11434"),
		Model:   getenv("EMBED_MODEL", "nomic-embed-text"),
	}
	classifier, err := intent.NewClassifier(ctx, embedder, components.Templates)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}

	dataset, err := openDataset(ctx)
	if err != nil {
		return nil, err
	}

	return spendql.New(spendql.Options{
		Lexicon:    components.Lexicon,
		Classifier: classifier,
		Dataset:    dataset,
	})
}

func openDataset(ctx context.Context) (store.Dataset, error) {
	switch backend := getenv("DATA_BACKEND", "csv"); backend {
	case "csv":
		path := getenv("TRANSACTIONS_CSV", "data/transactions.csv")
		txs, err := store.LoadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("load transactions: %w", err)
		}
		log.Printf("loaded %d transactions from %s", len(txs), path)
		return memstore.New(txs...), nil
	case "sqlite":
		path := getenv("SQLITE_DB_PATH", "data/spendql.db")
		return sqlite.Open(ctx, path)
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q", backend)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
