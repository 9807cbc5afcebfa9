package intent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// listScoreFloor is the minimum reported confidence for a query that
// already won list_transactions and contains an imperative listing
// word. Phrase similarity alone under-ranks "show ..." / "list ..."
// queries; the floor only raises the score, never changes the winner.
const listScoreFloor = 0.55

// Embedder turns text into a fixed-length vector. It must be
// deterministic: the same text always yields the same vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Classifier predicts query intent by nearest-neighbor search over
// embedded example phrases. The template index is built once at
// construction and is immutable afterwards, so a classifier is safe
// for concurrent use.
type Classifier struct {
	embedder Embedder
	phrases  []string
	labels   []Intent    // parallel to phrases
	vectors  [][]float32 // parallel to phrases
}

// NewClassifier embeds every template phrase once and caches the
// vectors for the lifetime of the classifier.
func NewClassifier(ctx context.Context, embedder Embedder, templates []Template) (*Classifier, error) {
	if embedder == nil {
		return nil, errors.New("intent: embedder required")
	}

	c := &Classifier{embedder: embedder}
	for _, tmpl := range templates {
		for _, phrase := range tmpl.Phrases {
			phrase = strings.ToLower(strings.TrimSpace(phrase))
			if phrase == "" {
				continue
			}
			c.phrases = append(c.phrases, phrase)
			c.labels = append(c.labels, tmpl.Intent)
		}
	}
	if len(c.phrases) == 0 {
		return nil, errors.New("intent: no template phrases")
	}

	vectors, err := embedder.EmbedBatch(ctx, c.phrases)
	if err != nil {
		return nil, fmt.Errorf("embed templates: %w", err)
	}
	if len(vectors) != len(c.phrases) {
		return nil, fmt.Errorf("embed templates: got %d vectors for %d phrases", len(vectors), len(c.phrases))
	}
	c.vectors = vectors

	return c, nil
}

// Classify embeds the case-folded query and returns the intent of the
// most similar template phrase. Ties resolve to the earliest phrase in
// template order. The score is cosine similarity rounded to 3 decimals.
func (c *Classifier) Classify(ctx context.Context, query string) (Prediction, error) {
	q := strings.ToLower(query)

	vec, err := c.embedder.Embed(ctx, q)
	if err != nil {
		return Prediction{}, fmt.Errorf("embed query: %w", err)
	}

	bestIdx := 0
	bestSim := cosineSimilarity(vec, c.vectors[0])
	for i := 1; i < len(c.vectors); i++ {
		if sim := cosineSimilarity(vec, c.vectors[i]); sim > bestSim {
			bestSim = sim
			bestIdx = i
		}
	}

	best := Prediction{
		Intent: c.labels[bestIdx],
		Score:  math.Round(bestSim*1000) / 1000,
	}

	if best.Intent == ListTransactions &&
		(strings.Contains(q, "show") || strings.Contains(q, "list")) &&
		best.Score < listScoreFloor {
		best.Score = listScoreFloor
	}

	return best, nil
}

// Phrases returns the flattened template phrases in index order.
func (c *Classifier) Phrases() []string {
	out := make([]string, len(c.phrases))
	copy(out, c.phrases)
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
