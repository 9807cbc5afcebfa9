// Command bootstrap imports a transactions CSV into a SQLite dataset
// so the server can run with DATA_BACKEND=sqlite.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/cognicore/spendql/pkg/spendql/store"
	"github.com/cognicore/spendql/pkg/spendql/store/sqlite"
)

func main() {
	var (
		csvPath = flag.String("csv", "", "Transactions CSV file (required)")
		dbPath  = flag.String("db", "", "SQLite database path (required)")
	)
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("--csv required")
	}
	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()

	txs, err := store.LoadCSV(*csvPath)
	if err != nil {
		log.Fatal(err)
	}
	if len(txs) == 0 {
		log.Fatal("no parseable transactions in input")
	}

	dataset, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer dataset.Close()

	if err := dataset.Add(ctx, txs...); err != nil {
		log.Fatal(err)
	}

	log.Printf("imported %d transactions into %s", len(txs), *dbPath)
}
