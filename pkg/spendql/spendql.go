// Package spendql answers natural-language questions about a personal
// expense ledger. A Pipeline interprets the query text (intent,
// entities, date range) and executes the resulting structured query
// against a read-only transaction table.
package spendql

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/spendql/pkg/spendql/daterange"
	"github.com/cognicore/spendql/pkg/spendql/entities"
	"github.com/cognicore/spendql/pkg/spendql/executor"
	"github.com/cognicore/spendql/pkg/spendql/intent"
	"github.com/cognicore/spendql/pkg/spendql/internalerr"
	"github.com/cognicore/spendql/pkg/spendql/lexicon"
	"github.com/cognicore/spendql/pkg/spendql/store"
)

// Options configures a Pipeline. Lexicon and Classifier are required;
// the extractor and resolver are built with defaults when omitted.
type Options struct {
	Lexicon    *lexicon.Lexicon
	Classifier *intent.Classifier
	Dataset    store.Dataset

	Extractor *entities.Extractor
	Resolver  *daterange.Resolver
	Now       func() time.Time
}

// Pipeline is the query-understanding-and-execution facade. It holds
// only read-only state after construction and is safe for concurrent
// use.
type Pipeline struct {
	classifier *intent.Classifier
	extractor  *entities.Extractor
	resolver   *daterange.Resolver
	dataset    store.Dataset
	now        func() time.Time

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// New creates a Pipeline with the given dependencies.
func New(opts Options) (*Pipeline, error) {
	if opts.Classifier == nil {
		return nil, errors.New("spendql: classifier required")
	}
	if opts.Extractor == nil {
		if opts.Lexicon == nil {
			return nil, errors.New("spendql: lexicon or extractor required")
		}
		opts.Extractor = entities.New(opts.Lexicon, entities.Options{})
	}
	if opts.Resolver == nil {
		opts.Resolver = daterange.NewResolver()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Pipeline{
		classifier: opts.Classifier,
		extractor:  opts.Extractor,
		resolver:   opts.Resolver,
		dataset:    opts.Dataset,
		now:        opts.Now,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close releases the underlying dataset, if any.
func (p *Pipeline) Close() error {
	if p.dataset == nil {
		return nil
	}
	return p.dataset.Close()
}

// Interpretation is the intermediate analysis of one query. It is
// produced fresh per query and consumed once by Execute.
type Interpretation struct {
	Intent   intent.Prediction
	Entities entities.Set
	Range    daterange.Range
}

// Interpret runs the three analyses over the query text.
func (p *Pipeline) Interpret(ctx context.Context, query string) (Interpretation, error) {
	return p.interpret(ctx, query, p.now())
}

func (p *Pipeline) interpret(ctx context.Context, query string, now time.Time) (Interpretation, error) {
	prediction, err := p.classifier.Classify(ctx, query)
	if err != nil {
		return Interpretation{}, err
	}

	return Interpretation{
		Intent:   prediction,
		Entities: p.extractor.Extract(query),
		Range:    p.resolver.Resolve(query, now),
	}, nil
}

// Execute runs an interpretation against a transaction table.
func (p *Pipeline) Execute(interp Interpretation, dataset []store.Transaction) (executor.Result, error) {
	return executor.Execute(interp.Intent.Intent, interp.Entities, interp.Range, dataset)
}

// Request is one pipeline invocation. Dataset overrides the pipeline's
// own dataset for this call; Now overrides the reference time, which
// keeps relative date expressions deterministic under test.
type Request struct {
	Query   string
	Dataset []store.Transaction
	Now     time.Time
}

// Response is the shaped output of one invocation. Result's concrete
// type depends on the intent (see executor.Result.Value).
type Response struct {
	ID        string            `json:"id"`
	Query     string            `json:"query"`
	Intent    intent.Prediction `json:"intent"`
	Entities  entities.Set      `json:"entities"`
	StartDate *time.Time        `json:"start_date"`
	EndDate   *time.Time        `json:"end_date"`
	Result    any               `json:"result"`
}

// Ask interprets and executes a query in one call.
func (p *Pipeline) Ask(ctx context.Context, req Request) (Response, error) {
	now := req.Now
	if now.IsZero() {
		now = p.now()
	}

	interp, err := p.interpret(ctx, req.Query, now)
	if err != nil {
		return Response{}, err
	}

	dataset := req.Dataset
	if dataset == nil {
		if p.dataset == nil {
			return Response{}, internalerr.ErrNoDataset
		}
		dataset, err = p.dataset.Transactions(ctx)
		if err != nil {
			return Response{}, err
		}
	}

	result, err := p.Execute(interp, dataset)
	if err != nil {
		return Response{}, err
	}

	return Response{
		ID:        p.newID(),
		Query:     req.Query,
		Intent:    interp.Intent,
		Entities:  interp.Entities,
		StartDate: interp.Range.Start,
		EndDate:   interp.Range.End,
		Result:    result.Value(),
	}, nil
}

func (p *Pipeline) newID() string {
	p.entropyMu.Lock()
	defer p.entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), p.entropy).String()
}
