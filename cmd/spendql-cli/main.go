package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/cognicore/spendql/internal/embed"
	"github.com/cognicore/spendql/pkg/spendql"
	"github.com/cognicore/spendql/pkg/spendql/config"
	"github.com/cognicore/spendql/pkg/spendql/executor"
	"github.com/cognicore/spendql/pkg/spendql/intent"
	"github.com/cognicore/spendql/pkg/spendql/store"
	"github.com/cognicore/spendql/pkg/spendql/store/memstore"
)

func main() {
	var (
		csvPath        = flag.String("csv", "data/transactions.csv", "Transactions CSV file")
		categoriesPath = flag.String("categories", "configs/categories.yaml", "Category keyword config")
		merchantsPath  = flag.String("merchants", "configs/merchants.yaml", "Merchant list config")
		intentsPath    = flag.String("intents", "configs/intents.yaml", "Intent template config")
		embedURL       = flag.String("embed-url", "http://localhost:11434", "Embeddings endpoint base URL")
		embedModel     = flag.String("embed-model", "nomic-embed-text", "Embedding model name")
		query          = flag.String("query", "", "One-shot query (non-interactive mode)")
	)
	flag.Parse()

	ctx := context.Background()

	pipeline, err := buildPipeline(ctx, *csvPath, *categoriesPath, *merchantsPath, *intentsPath, *embedURL, *embedModel)
	if err != nil {
		log.Fatal(err)
	}
	defer pipeline.Close()

	// One-shot query mode
	if *query != "" {
		if err := executeQuery(ctx, pipeline, *query); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  SpendQL CLI")
	fmt.Println("  Ask questions about your expenses")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type your question (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}

		if err := executeQuery(ctx, pipeline, q); err != nil {
			fmt.Println("Error:", err)
		}
	}

	fmt.Println("\nGoodbye!")
}

func executeQuery(ctx context.Context, pipeline *spendql.Pipeline, query string) error {
	res, err := pipeline.Ask(ctx, spendql.Request{Query: query})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Printf("\nIntent: %s (score %.3f)\n", res.Intent.Intent, res.Intent.Score)

	fmt.Print("Entities:")
	if res.Entities.Category == "" && res.Entities.Merchant == "" && res.Entities.Amount == nil {
		fmt.Print(" none")
	}
	if res.Entities.Category != "" {
		fmt.Printf(" category=%s", res.Entities.Category)
	}
	if res.Entities.Merchant != "" {
		fmt.Printf(" merchant=%s", res.Entities.Merchant)
	}
	if res.Entities.Amount != nil {
		fmt.Printf(" amount>=%d", *res.Entities.Amount)
	}
	fmt.Println()

	if res.StartDate != nil && res.EndDate != nil {
		fmt.Printf("Date range: %s .. %s\n",
			res.StartDate.Format("2006-01-02"), res.EndDate.Format("2006-01-02"))
	} else {
		fmt.Println("Date range: none")
	}

	fmt.Println("Result:")
	printResult(res.Result)
	fmt.Println()
	return nil
}

func printResult(result any) {
	switch v := result.(type) {
	case []executor.Row:
		if len(v) == 0 {
			fmt.Println("  no matching transactions")
			return
		}
		for _, row := range v {
			fmt.Printf("  %s  %8.2f  %-14s %s\n",
				row.Date.Format("2006-01-02"), row.Amount, row.Category, row.Merchant)
		}
	case map[string]int64:
		months := make([]string, 0, len(v))
		for m := range v {
			months = append(months, m)
		}
		sort.Strings(months)
		for _, m := range months {
			fmt.Printf("  %s: %d\n", m, v[m])
		}
	case nil:
		fmt.Println("  (no data)")
	default:
		fmt.Printf("  %v\n", v)
	}
}

func buildPipeline(ctx context.Context, csvPath, categoriesPath, merchantsPath, intentsPath, embedURL, embedModel string) (*spendql.Pipeline, error) {
	loader := config.Loader{
		CategoriesPath: categoriesPath,
		MerchantsPath:  merchantsPath,
		IntentsPath:    intentsPath,
	}
	components, err := loader.Load()
	if err != nil {
		return nil, err
	}

	embedder := &embed.Client{BaseURL: embedURL, Model: embedModel}
	classifier, err := intent.NewClassifier(ctx, embedder, components.Templates)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}

	txs, err := store.LoadCSV(csvPath)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	log.Printf("loaded %d transactions from %s", len(txs), csvPath)

	return spendql.New(spendql.Options{
		Lexicon:    components.Lexicon,
		Classifier: classifier,
		Dataset:    memstore.New(txs...),
	})
}
