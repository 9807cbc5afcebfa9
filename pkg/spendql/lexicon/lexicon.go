package lexicon

import "strings"

// Lexicon stores the domain vocabulary the extractor works from:
// - category keyword table: category label -> trigger substrings
// - merchant list: normalized merchant names
// - merchant->category map: inference when a merchant implies a category
// - category aliases: labels that fold into a canonical label
//
// Design principles:
// - Registration order is meaningful: category score ties and exact
//   merchant substring matches resolve to the first-registered entry.
// - Everything is lowercase-normalized on the way in; lookups lowercase
//   their input so callers never have to.
// - Immutable after startup: built once from configuration and shared
//   read-only across queries.
type Lexicon struct {
	categories []string            // registration order
	keywords   map[string][]string // category -> keywords

	merchants        []string            // registration order
	merchantSeen     map[string]struct{} // dedupe
	merchantCategory map[string]string   // merchant -> implied category

	aliases map[string]string // label -> canonical label
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		keywords:         make(map[string][]string),
		merchantSeen:     make(map[string]struct{}),
		merchantCategory: make(map[string]string),
		aliases:          make(map[string]string),
	}
}

// AddCategory registers a category with its trigger keywords. Adding an
// existing category replaces its keywords but keeps its original
// position in registration order.
func (l *Lexicon) AddCategory(label string, keywords []string) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return
	}

	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			normalized = append(normalized, kw)
		}
	}

	if _, exists := l.keywords[label]; !exists {
		l.categories = append(l.categories, label)
	}
	l.keywords[label] = normalized
}

// AddMerchant registers a merchant name. Duplicates are ignored.
func (l *Lexicon) AddMerchant(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	if _, ok := l.merchantSeen[name]; ok {
		return
	}
	l.merchantSeen[name] = struct{}{}
	l.merchants = append(l.merchants, name)
}

// SetMerchantCategory records that a merchant implies a category. The
// merchant is registered if it was not already.
func (l *Lexicon) SetMerchantCategory(merchant, category string) {
	merchant = strings.ToLower(strings.TrimSpace(merchant))
	category = strings.ToLower(strings.TrimSpace(category))
	if merchant == "" || category == "" {
		return
	}
	l.AddMerchant(merchant)
	l.merchantCategory[merchant] = category
}

// AddAlias folds a category label into a canonical one.
func (l *Lexicon) AddAlias(label, canonical string) {
	label = strings.ToLower(strings.TrimSpace(label))
	canonical = strings.ToLower(strings.TrimSpace(canonical))
	if label == "" || canonical == "" || label == canonical {
		return
	}
	l.aliases[label] = canonical
}

// Categories returns category labels in registration order.
func (l *Lexicon) Categories() []string {
	out := make([]string, len(l.categories))
	copy(out, l.categories)
	return out
}

// Keywords returns the trigger keywords for a category.
func (l *Lexicon) Keywords(label string) []string {
	return l.keywords[strings.ToLower(label)]
}

// Merchants returns merchant names in registration order.
func (l *Lexicon) Merchants() []string {
	out := make([]string, len(l.merchants))
	copy(out, l.merchants)
	return out
}

// MerchantCategory returns the category a merchant implies, if any.
func (l *Lexicon) MerchantCategory(merchant string) (string, bool) {
	cat, ok := l.merchantCategory[strings.ToLower(merchant)]
	return cat, ok
}

// Canonical resolves a category label through the alias table. Labels
// without an alias are returned unchanged.
func (l *Lexicon) Canonical(label string) string {
	label = strings.ToLower(label)
	if canonical, ok := l.aliases[label]; ok {
		return canonical
	}
	return label
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	totalKeywords := 0
	for _, kws := range l.keywords {
		totalKeywords += len(kws)
	}
	return Stats{
		Categories:    len(l.categories),
		TotalKeywords: totalKeywords,
		Merchants:     len(l.merchants),
		MerchantLinks: len(l.merchantCategory),
		Aliases:       len(l.aliases),
	}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Categories    int
	TotalKeywords int
	Merchants     int
	MerchantLinks int
	Aliases       int
}
