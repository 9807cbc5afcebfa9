package spendql

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/spendql/pkg/spendql/intent"
	"github.com/cognicore/spendql/pkg/spendql/internalerr"
	"github.com/cognicore/spendql/pkg/spendql/lexicon"
	"github.com/cognicore/spendql/pkg/spendql/store"
	"github.com/cognicore/spendql/pkg/spendql/store/memstore"
)

// mapEmbedder serves canned vectors for exact lowercase texts, so the
// classifier's choice is fully controlled by the test.
type mapEmbedder map[string][]float32

func (m mapEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, ok := m[text]
	if !ok {
		return nil, fmt.Errorf("no canned vector for %q", text)
	}
	return v, nil
}

func (m mapEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func testEmbedder() mapEmbedder {
	return mapEmbedder{
		"how much did i spend":                         {1, 0, 0},
		"show my transactions":                         {0, 1, 0},
		"compare my spending":                          {0, 0, 1},
		"how much did i spend on food last month?":     {1, 0, 0},
		"show my starbucks transactions":               {0, 1, 0},
		"compare my spending in january and february 2025": {0, 0, 1},
	}
}

func testLexicon() *lexicon.Lexicon {
	lex := lexicon.New()
	lex.AddCategory("food", []string{"food", "meal", "swiggy"})
	lex.AddCategory("cafe", []string{"coffee", "cafe"})
	lex.SetMerchantCategory("starbucks", "cafe")
	return lex
}

func testClassifier(t *testing.T) *intent.Classifier {
	t.Helper()
	c, err := intent.NewClassifier(context.Background(), testEmbedder(), []intent.Template{
		{Intent: intent.TotalSpend, Phrases: []string{"how much did i spend"}},
		{Intent: intent.ListTransactions, Phrases: []string{"show my transactions"}},
		{Intent: intent.ComparePeriods, Phrases: []string{"compare my spending"}},
	})
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func testTransactions() []store.Transaction {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
	}
	return []store.Transaction{
		{Date: day(2025, time.January, 10), Amount: 100, Category: "food", Merchant: "swiggy"},
		{Date: day(2025, time.January, 15), Amount: 120, Category: "cafe", Merchant: "starbucks"},
		{Date: day(2025, time.February, 5), Amount: 340, Category: "food", Merchant: "swiggy"},
		{Date: day(2025, time.February, 20), Amount: 60, Category: "cafe", Merchant: "starbucks"},
	}
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(Options{
		Lexicon:    testLexicon(),
		Classifier: testClassifier(t),
		Dataset:    memstore.New(testTransactions()...),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestAskTotalLastMonth(t *testing.T) {
	p := testPipeline(t)

	resp, err := p.Ask(context.Background(), Request{
		Query: "How much did I spend on food last month?",
		Now:   time.Date(2025, time.March, 15, 10, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if resp.Intent.Intent != intent.TotalSpend {
		t.Errorf("intent = %v", resp.Intent.Intent)
	}
	if resp.Entities.Category != "food" {
		t.Errorf("category = %q", resp.Entities.Category)
	}
	if resp.StartDate == nil || resp.EndDate == nil {
		t.Fatal("expected a bounded range")
	}
	if resp.StartDate.Month() != time.February || resp.EndDate.Month() != time.February {
		t.Errorf("range = %v .. %v, want February", resp.StartDate, resp.EndDate)
	}
	if got := resp.Result; got != int64(340) {
		t.Errorf("result = %v (%T), want 340", got, got)
	}
	if resp.ID == "" {
		t.Error("response ID missing")
	}
	if resp.Query != "How much did I spend on food last month?" {
		t.Errorf("query echoed wrong: %q", resp.Query)
	}
}

func TestAskListByMerchant(t *testing.T) {
	p := testPipeline(t)

	resp, err := p.Ask(context.Background(), Request{
		Query: "Show my Starbucks transactions",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if resp.Intent.Intent != intent.ListTransactions {
		t.Errorf("intent = %v", resp.Intent.Intent)
	}
	if resp.Entities.Merchant != "starbucks" {
		t.Errorf("merchant = %q", resp.Entities.Merchant)
	}
	if resp.Entities.Category != "cafe" {
		t.Errorf("inferred category = %q", resp.Entities.Category)
	}
	if resp.StartDate != nil || resp.EndDate != nil {
		t.Error("dateless query should resolve unbounded")
	}

	rows := reflect.ValueOf(resp.Result)
	if rows.Kind() != reflect.Slice || rows.Len() != 2 {
		t.Fatalf("result = %v, want 2 rows", resp.Result)
	}
}

func TestAskComparePeriods(t *testing.T) {
	p := testPipeline(t)

	resp, err := p.Ask(context.Background(), Request{
		Query: "Compare my spending in January and February 2025",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	want := map[string]int64{"2025-01": 220, "2025-02": 400}
	if !reflect.DeepEqual(resp.Result, want) {
		t.Errorf("result = %v, want %v", resp.Result, want)
	}
}

func TestAskDatasetOverride(t *testing.T) {
	p := testPipeline(t)

	override := []store.Transaction{
		{Date: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.Local), Amount: 7, Category: "food"},
	}
	resp, err := p.Ask(context.Background(), Request{
		Query:   "How much did I spend on food last month?",
		Dataset: override,
		Now:     time.Date(2025, time.March, 15, 10, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if resp.Result != int64(7) {
		t.Errorf("result = %v, want override dataset total 7", resp.Result)
	}
}

func TestAskWithoutDataset(t *testing.T) {
	p, err := New(Options{
		Lexicon:    testLexicon(),
		Classifier: testClassifier(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Ask(context.Background(), Request{Query: "show my transactions"})
	if !errors.Is(err, internalerr.ErrNoDataset) {
		t.Errorf("expected ErrNoDataset, got %v", err)
	}
}

func TestInterpretThenExecute(t *testing.T) {
	p := testPipeline(t)

	interp, err := p.interpret(context.Background(),
		"How much did I spend on food last month?",
		time.Date(2025, time.March, 15, 10, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}

	res, err := p.Execute(interp, testTransactions())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Total != 340 {
		t.Errorf("total = %d, want 340", res.Total)
	}
}

func TestResponseIDsUnique(t *testing.T) {
	p := testPipeline(t)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		resp, err := p.Ask(context.Background(), Request{Query: "show my transactions"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[resp.ID] {
			t.Fatalf("duplicate response ID %q", resp.ID)
		}
		seen[resp.ID] = true
	}
}

func TestNewRequiresClassifier(t *testing.T) {
	if _, err := New(Options{Lexicon: testLexicon()}); err == nil {
		t.Error("expected error without classifier")
	}
	if _, err := New(Options{Classifier: testClassifier(t)}); err == nil {
		t.Error("expected error without lexicon or extractor")
	}
}
