// Package daterange resolves natural-language date expressions to an
// inclusive [start, end] range. The resolver is an ordered cascade of
// mutually exclusive rules: the first rule whose pattern matches and
// parses wins, and no further rules are tried. Order matters, since a
// looser rule would shadow a more specific one placed after it.
package daterange

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Range is an inclusive date range. Both bounds present or both
// absent; an unbounded range means "no date filter".
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Bounded reports whether both bounds are present.
func (r Range) Bounded() bool {
	return r.Start != nil && r.End != nil
}

// Rule is one step of the cascade. Resolve reports whether the rule
// claimed the query; a claimed query stops the cascade.
type Rule struct {
	Name    string
	Resolve func(q string, now time.Time) (Range, bool)
}

// Resolver evaluates the rule cascade. The reference time is passed in
// per call so resolution stays deterministic under test.
type Resolver struct {
	rules []Rule
}

// NewResolver creates a resolver with the standard rule cascade.
func NewResolver() *Resolver {
	return &Resolver{rules: standardRules()}
}

// Resolve runs the cascade over the case-folded query. Queries with no
// recognizable date expression resolve to an unbounded range, never an
// error.
func (r *Resolver) Resolve(query string, now time.Time) Range {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return Range{}
	}

	for _, rule := range r.rules {
		if rng, ok := rule.Resolve(q, now); ok {
			return rng
		}
	}
	return Range{}
}

// RuleNames returns the cascade's rule names in evaluation order.
func (r *Resolver) RuleNames() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

const monthAlt = `january|february|march|april|may|june|july|august|september|october|november|december`

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var (
	betweenPattern   = regexp.MustCompile(`between\s+(.+?)\s+and\s+(.+)`)
	lastDaysPattern  = regexp.MustCompile(`last\s+(\d+)\s+days`)
	sincePattern     = regexp.MustCompile(`since\s+(` + monthAlt + `)`)
	onDayPattern     = regexp.MustCompile(`on\s+([a-z]+)\s+(\d{1,2}),?\s*(\d{4})`)
	monthSpanPattern = regexp.MustCompile(`(` + monthAlt + `)\s+and\s+(` + monthAlt + `)(?:,?\s+(\d{4}))?`)
	inMonthPattern   = regexp.MustCompile(`in\s+(` + monthAlt + `)`)
	bareYearPattern  = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

func standardRules() []Rule {
	return []Rule{
		{Name: "between", Resolve: resolveBetween},
		{Name: "yesterday", Resolve: resolveYesterday},
		{Name: "last week", Resolve: resolveLastWeek},
		{Name: "last n days", Resolve: resolveLastDays},
		{Name: "since month", Resolve: resolveSinceMonth},
		{Name: "on day", Resolve: resolveOnDay},
		{Name: "last month", Resolve: resolveLastMonth},
		{Name: "this month", Resolve: resolveThisMonth},
		{Name: "this year", Resolve: resolveThisYear},
		{Name: "last year", Resolve: resolveLastYear},
		{Name: "month span", Resolve: resolveMonthSpan},
		{Name: "in month", Resolve: resolveInMonth},
		{Name: "bare year", Resolve: resolveBareYear},
		{Name: "free text", Resolve: resolveFreeText},
	}
}

func resolveBetween(q string, now time.Time) (Range, bool) {
	m := betweenPattern.FindStringSubmatch(q)
	if m == nil {
		return Range{}, false
	}
	d1, ok1 := parseFree(m[1])
	d2, ok2 := parseFree(m[2])
	if !ok1 || !ok2 {
		return Range{}, false
	}
	// The bounds may arrive in either order; start must not exceed end.
	if d2.Before(d1) {
		d1, d2 = d2, d1
	}
	return span(startOfDay(d1), endOfDay(d2)), true
}

func resolveYesterday(q string, now time.Time) (Range, bool) {
	if !strings.Contains(q, "yesterday") {
		return Range{}, false
	}
	d := now.AddDate(0, 0, -1)
	return span(startOfDay(d), endOfDay(d)), true
}

// resolveLastWeek returns Monday through Sunday of the calendar week
// preceding the current one.
func resolveLastWeek(q string, now time.Time) (Range, bool) {
	if !strings.Contains(q, "last week") {
		return Range{}, false
	}
	weekday := (int(now.Weekday()) + 6) % 7 // Monday = 0
	start := now.AddDate(0, 0, -(weekday + 7))
	end := start.AddDate(0, 0, 6)
	return span(startOfDay(start), endOfDay(end)), true
}

func resolveLastDays(q string, now time.Time) (Range, bool) {
	m := lastDaysPattern.FindStringSubmatch(q)
	if m == nil {
		return Range{}, false
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return Range{}, false
	}
	return span(startOfDay(now.AddDate(0, 0, -days)), endOfDay(now)), true
}

func resolveSinceMonth(q string, now time.Time) (Range, bool) {
	m := sincePattern.FindStringSubmatch(q)
	if m == nil {
		return Range{}, false
	}
	start := time.Date(now.Year(), months[m[1]], 1, 0, 0, 0, 0, now.Location())
	// A month name later in the calendar than now refers to its most
	// recent past occurrence; start must not exceed end.
	if start.After(now) {
		start = start.AddDate(-1, 0, 0)
	}
	return span(start, endOfDay(now)), true
}

// resolveOnDay handles a single specific calendar day, e.g.
// "on september 2, 2025".
func resolveOnDay(q string, now time.Time) (Range, bool) {
	m := onDayPattern.FindStringSubmatch(q)
	if m == nil {
		return Range{}, false
	}
	month, ok := months[m[1]]
	if !ok {
		return Range{}, false
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if day < 1 || day > daysIn(year, month) {
		return Range{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	return span(d, endOfDay(d)), true
}

func resolveLastMonth(q string, now time.Time) (Range, bool) {
	if !strings.Contains(q, "last month") {
		return Range{}, false
	}
	year, month := now.Year(), now.Month()-1
	if month == 0 {
		year--
		month = time.December
	}
	return fullMonth(year, month, now.Location()), true
}

func resolveThisMonth(q string, now time.Time) (Range, bool) {
	if !strings.Contains(q, "this month") {
		return Range{}, false
	}
	return fullMonth(now.Year(), now.Month(), now.Location()), true
}

func resolveThisYear(q string, now time.Time) (Range, bool) {
	if !strings.Contains(q, "this year") {
		return Range{}, false
	}
	return fullYear(now.Year(), now.Location()), true
}

func resolveLastYear(q string, now time.Time) (Range, bool) {
	if !strings.Contains(q, "last year") {
		return Range{}, false
	}
	return fullYear(now.Year()-1, now.Location()), true
}

// resolveMonthSpan handles "<month> and <month> [year]", the shape
// period-comparison queries take ("compare january and february 2025").
// It must run before the single-month rule, which would otherwise
// claim the first month and drop the second.
func resolveMonthSpan(q string, now time.Time) (Range, bool) {
	m := monthSpanPattern.FindStringSubmatch(q)
	if m == nil {
		return Range{}, false
	}
	year := now.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	}
	first, second := months[m[1]], months[m[2]]
	if second < first {
		first, second = second, first
	}
	start := time.Date(year, first, 1, 0, 0, 0, 0, now.Location())
	end := time.Date(year, second, daysIn(year, second), 0, 0, 0, 0, now.Location())
	return span(start, endOfDay(end)), true
}

func resolveInMonth(q string, now time.Time) (Range, bool) {
	m := inMonthPattern.FindStringSubmatch(q)
	if m == nil {
		return Range{}, false
	}
	return fullMonth(now.Year(), months[m[1]], now.Location()), true
}

func resolveBareYear(q string, now time.Time) (Range, bool) {
	m := bareYearPattern.FindString(q)
	if m == "" {
		return Range{}, false
	}
	year, _ := strconv.Atoi(m)
	return fullYear(year, now.Location()), true
}

func resolveFreeText(q string, now time.Time) (Range, bool) {
	d, ok := parseFree(q)
	if !ok {
		return Range{}, false
	}
	return span(startOfDay(d), endOfDay(d)), true
}

// parseFree runs the general free-text date parser. The cascade works
// on case-folded text but the parser expects month names capitalized,
// so a failed parse is retried with each word title-cased.
func parseFree(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if d, err := dateparse.ParseLocal(s); err == nil {
		return d, true
	}
	if d, err := dateparse.ParseLocal(titleWords(s)); err == nil {
		return d, true
	}
	return time.Time{}, false
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay is second-granularity, matching the rest of the system.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func fullMonth(year int, month time.Month, loc *time.Location) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := time.Date(year, month, daysIn(year, month), 23, 59, 59, 0, loc)
	return span(start, end)
}

func fullYear(year int, loc *time.Location) Range {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, loc)
	return span(start, end)
}

func span(start, end time.Time) Range {
	return Range{Start: &start, End: &end}
}
