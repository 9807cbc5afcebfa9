package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/cognicore/spendql/pkg/spendql/internalerr"
)

// RequiredColumns are the columns a transactions table must provide.
var RequiredColumns = []string{"date", "amount", "category", "merchant", "description"}

// LoadCSV reads a transactions CSV file. The header may order the
// required columns freely; extra columns are ignored. Rows whose date
// or amount cannot be parsed are dropped here so the executor never
// sees raw unparsed data. Merchant and category are lowercased.
func LoadCSV(path string) ([]Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses transactions from r. See LoadCSV.
func ReadCSV(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", internalerr.ErrSchema, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range RequiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", internalerr.ErrSchema, required)
		}
	}

	var txs []Transaction
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rawDate := strings.TrimSpace(record[cols["date"]])
		if rawDate == "" || strings.EqualFold(rawDate, "date") {
			// Blank line or a repeated header mid-file.
			continue
		}

		date, err := dateparse.ParseLocal(rawDate)
		if err != nil {
			continue
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(record[cols["amount"]]), 64)
		if err != nil || amount < 0 {
			continue
		}

		txs = append(txs, Transaction{
			Date:        date,
			Amount:      amount,
			Category:    strings.ToLower(strings.TrimSpace(record[cols["category"]])),
			Merchant:    strings.ToLower(strings.TrimSpace(record[cols["merchant"]])),
			Description: strings.TrimSpace(record[cols["description"]]),
		})
	}

	return txs, nil
}
