package entities

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/cognicore/spendql/pkg/spendql/lexicon"
)

var (
	tokenPattern  = regexp.MustCompile(`[a-zA-Z]+`)
	amountPattern = regexp.MustCompile(`(?:above|over|greater than|>=)\s*(\d+)`)
)

// Set holds the structured values extracted from one query. Empty
// string / nil means the entity was absent; the executor treats absent
// entities as "no filter on this dimension".
type Set struct {
	Category string `json:"category,omitempty"`
	Merchant string `json:"merchant,omitempty"`
	Amount   *int64 `json:"amount,omitempty"`
}

// Options configures an Extractor. Zero values get defaults.
type Options struct {
	// FuzzyThreshold is the minimum similarity score (0-100) for a
	// fuzzy merchant match. The default of 88 keeps short, common
	// words from matching unrelated merchants; lowering it trades
	// precision for recall.
	FuzzyThreshold float64

	// MinFuzzyTokenLen is the minimum token length considered for
	// fuzzy matching. Defaults to 6.
	MinFuzzyTokenLen int
}

// Extractor derives category, merchant, and amount threshold from raw
// query text. It is a pure function of the query and the lexicon; safe
// for concurrent use.
type Extractor struct {
	lex       *lexicon.Lexicon
	metric    *metrics.Levenshtein
	threshold float64
	minToken  int
}

// New creates an extractor over the given lexicon.
func New(lex *lexicon.Lexicon, opts Options) *Extractor {
	if opts.FuzzyThreshold == 0 {
		opts.FuzzyThreshold = 88
	}
	if opts.MinFuzzyTokenLen == 0 {
		opts.MinFuzzyTokenLen = 6
	}

	metric := metrics.NewLevenshtein()
	metric.CaseSensitive = false

	return &Extractor{
		lex:       lex,
		metric:    metric,
		threshold: opts.FuzzyThreshold,
		minToken:  opts.MinFuzzyTokenLen,
	}
}

// Extract analyzes the query and returns whatever entities it finds.
// Extraction failures are soft: a field that cannot be resolved is
// simply absent, never an error.
func (e *Extractor) Extract(query string) Set {
	q := strings.ToLower(query)

	var set Set
	set.Category = e.detectCategory(q)
	set.Merchant = e.detectMerchant(q)

	// A resolved merchant can fill an empty category slot, never
	// override a detected one.
	if set.Merchant != "" && set.Category == "" {
		if cat, ok := e.lex.MerchantCategory(set.Merchant); ok {
			set.Category = cat
		}
	}

	if set.Category != "" {
		set.Category = e.lex.Canonical(set.Category)
	}

	if m := amountPattern.FindStringSubmatch(q); m != nil {
		// A numeral too large for int64 is not a usable threshold;
		// extraction failures stay soft.
		if amount, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			set.Amount = &amount
		}
	}

	return set
}

// categoryScore is the ordered tie-break tuple for category detection:
// exact label match beats keyword hit count beats longest keyword.
type categoryScore struct {
	exact      int
	hits       int
	longestKey int
}

func (s categoryScore) zero() bool {
	return s.exact == 0 && s.hits == 0
}

func (s categoryScore) greater(o categoryScore) bool {
	if s.exact != o.exact {
		return s.exact > o.exact
	}
	if s.hits != o.hits {
		return s.hits > o.hits
	}
	return s.longestKey > o.longestKey
}

// detectCategory scores every candidate category against the query and
// picks the lexicographically greatest score tuple. Ties resolve to
// the first-registered category.
func (e *Extractor) detectCategory(q string) string {
	var best string
	var bestScore categoryScore

	for _, label := range e.lex.Categories() {
		var score categoryScore
		if strings.Contains(q, label) {
			score.exact = 1
		}
		for _, kw := range e.lex.Keywords(label) {
			if strings.Contains(q, kw) {
				score.hits++
				if len(kw) > score.longestKey {
					score.longestKey = len(kw)
				}
			}
		}

		if score.zero() {
			continue
		}
		if best == "" || score.greater(bestScore) {
			best = label
			bestScore = score
		}
	}

	return best
}

// detectMerchant resolves a merchant in two tiers: exact substring
// match in lexicon order, then fuzzy matching of long query tokens
// against the full merchant list.
func (e *Extractor) detectMerchant(q string) string {
	for _, m := range e.lex.Merchants() {
		if strings.Contains(q, m) {
			return m
		}
	}

	for _, token := range tokenPattern.FindAllString(q, -1) {
		if len(token) < e.minToken {
			continue
		}

		var bestMerchant string
		var bestScore float64
		for _, m := range e.lex.Merchants() {
			score := strutil.Similarity(token, m, e.metric) * 100
			if score > bestScore {
				bestScore = score
				bestMerchant = m
			}
		}

		// First token with an accepting match wins.
		if bestScore >= e.threshold {
			return bestMerchant
		}
	}

	return ""
}
