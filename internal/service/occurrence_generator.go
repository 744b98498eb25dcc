package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/workforce-api/internal/models"
	"github.com/noah-isme/workforce-api/pkg/dateutil"
	appErrors "github.com/noah-isme/workforce-api/pkg/errors"
)

const descriptionDateLayout = "Jan 2, 2006"

type occurrenceCacheRecorder interface {
	RecordOccurrenceCache(hit bool)
}

// OccurrenceGenerator expands recurrence patterns into concrete dates and memoizes the
// result per pattern signature. The cache is unbounded and lives until ClearCache.
type OccurrenceGenerator struct {
	cache   *occurrenceCache
	metrics occurrenceCacheRecorder
}

// NewOccurrenceGenerator constructs a generator with an empty cache.
func NewOccurrenceGenerator(metrics occurrenceCacheRecorder) *OccurrenceGenerator {
	return &OccurrenceGenerator{cache: newOccurrenceCache(), metrics: metrics}
}

// ValidatePattern reports whether the pattern may be expanded.
func (g *OccurrenceGenerator) ValidatePattern(pattern models.RecurrencePattern) bool {
	return len(PatternProblems(pattern)) == 0
}

// PatternProblems lists every rule the pattern breaks, in a form suitable for form feedback.
func PatternProblems(pattern models.RecurrencePattern) []string {
	var problems []string
	if pattern.StartDate.IsZero() {
		problems = append(problems, "startDate is required")
	}
	if pattern.Occurrences <= 0 {
		problems = append(problems, "occurrences must be greater than zero")
	}
	if pattern.EndDate != nil && !pattern.StartDate.IsZero() && dateutil.CompareDays(*pattern.EndDate, pattern.StartDate) < 0 {
		problems = append(problems, "endDate must not precede startDate")
	}
	if !pattern.Frequency.Valid() {
		problems = append(problems, fmt.Sprintf("frequency must be one of %s, %s, %s", models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly))
	}
	return problems
}

// GenerateOccurrences expands a pattern that has already passed ValidatePattern.
// Occurrences are ordered by date with indices 0..n-1; exception days are flagged, never dropped.
func (g *OccurrenceGenerator) GenerateOccurrences(pattern models.RecurrencePattern) ([]models.RecurrenceOccurrence, error) {
	key := patternSignature(pattern)
	if cached, ok := g.cache.Get(key); ok {
		g.record(true)
		return cached, nil
	}
	g.record(false)

	exceptions := make(map[string]struct{}, len(pattern.Exceptions))
	for _, ex := range pattern.Exceptions {
		exceptions[dateutil.DateKey(ex)] = struct{}{}
	}

	result := make([]models.RecurrenceOccurrence, 0, pattern.Occurrences)
	current := pattern.StartDate
	for len(result) < pattern.Occurrences {
		if pattern.EndDate != nil && dateutil.CompareDays(current, *pattern.EndDate) > 0 {
			break
		}
		_, flagged := exceptions[dateutil.DateKey(current)]
		result = append(result, models.RecurrenceOccurrence{
			Date:        current,
			Index:       len(result),
			IsException: flagged,
		})

		next, err := advance(current, pattern.Frequency)
		if err != nil {
			return nil, err
		}
		current = next
	}

	g.cache.Set(key, result)
	return cloneOccurrences(result), nil
}

// ClearCache drops every memoized expansion.
func (g *OccurrenceGenerator) ClearCache() {
	g.cache.Clear()
}

// CacheSize reports how many pattern signatures are memoized.
func (g *OccurrenceGenerator) CacheSize() int {
	return g.cache.Len()
}

func (g *OccurrenceGenerator) record(hit bool) {
	if g.metrics != nil {
		g.metrics.RecordOccurrenceCache(hit)
	}
}

func advance(t time.Time, frequency models.Frequency) (time.Time, error) {
	switch frequency {
	case models.FrequencyDaily:
		return t.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return t.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return t.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, appErrors.Clone(appErrors.ErrUnsupportedFrequency, fmt.Sprintf("unsupported recurrence frequency %q", frequency))
	}
}

// AddException returns a copy of pattern with date flagged. Dates already flagged on the same day are left alone.
func AddException(pattern models.RecurrencePattern, date time.Time) models.RecurrencePattern {
	out := copyPattern(pattern)
	for _, ex := range out.Exceptions {
		if dateutil.SameDay(ex, date) {
			return out
		}
	}
	out.Exceptions = append(out.Exceptions, date)
	return out
}

// RemoveException returns a copy of pattern without any exception on the same day as date.
func RemoveException(pattern models.RecurrencePattern, date time.Time) models.RecurrencePattern {
	out := copyPattern(pattern)
	kept := out.Exceptions[:0]
	for _, ex := range out.Exceptions {
		if !dateutil.SameDay(ex, date) {
			kept = append(kept, ex)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	out.Exceptions = kept
	return out
}

// DescribePattern renders a one-line human summary such as "Weekly, 4 times starting Jan 1, 2024".
func DescribePattern(pattern models.RecurrencePattern) string {
	var b strings.Builder
	b.WriteString(frequencyLabel(pattern.Frequency))
	b.WriteString(", ")
	if pattern.Occurrences == 1 {
		b.WriteString("1 time")
	} else {
		fmt.Fprintf(&b, "%d times", pattern.Occurrences)
	}
	if pattern.EndDate != nil {
		fmt.Fprintf(&b, " from %s to %s", pattern.StartDate.Format(descriptionDateLayout), pattern.EndDate.Format(descriptionDateLayout))
	} else {
		fmt.Fprintf(&b, " starting %s", pattern.StartDate.Format(descriptionDateLayout))
	}
	if n := len(uniqueDateKeys(pattern.Exceptions)); n > 0 {
		if n == 1 {
			b.WriteString(", except 1 date")
		} else {
			fmt.Fprintf(&b, ", except %d dates", n)
		}
	}
	return b.String()
}

func frequencyLabel(f models.Frequency) string {
	raw := strings.ToLower(string(f))
	if raw == "" {
		return "Unknown"
	}
	return strings.ToUpper(raw[:1]) + raw[1:]
}

// patternSignature keys the cache. The start anchor keeps its wall-clock time and zone
// because generated dates carry them; end and exceptions only matter per calendar day.
func patternSignature(pattern models.RecurrencePattern) string {
	end := "none"
	if pattern.EndDate != nil {
		end = dateutil.DateKey(*pattern.EndDate)
	}
	start := pattern.StartDate
	clock := start.Sub(dateutil.DateOnly(start))
	zone, offset := start.Zone()
	return fmt.Sprintf("%s|%d|%s@%s|%s/%d|%s|%s",
		pattern.Frequency,
		pattern.Occurrences,
		dateutil.DateKey(start),
		clock,
		zone,
		offset,
		end,
		strings.Join(uniqueDateKeys(pattern.Exceptions), ","),
	)
}

func uniqueDateKeys(dates []time.Time) []string {
	seen := make(map[string]struct{}, len(dates))
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		k := dateutil.DateKey(d)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyPattern(pattern models.RecurrencePattern) models.RecurrencePattern {
	out := pattern
	if pattern.EndDate != nil {
		end := *pattern.EndDate
		out.EndDate = &end
	}
	if pattern.Exceptions != nil {
		out.Exceptions = append([]time.Time(nil), pattern.Exceptions...)
	}
	return out
}

func cloneOccurrences(items []models.RecurrenceOccurrence) []models.RecurrenceOccurrence {
	return append([]models.RecurrenceOccurrence(nil), items...)
}

// --- Occurrence cache ---

type occurrenceCache struct {
	mu      sync.RWMutex
	entries map[string][]models.RecurrenceOccurrence
}

func newOccurrenceCache() *occurrenceCache {
	return &occurrenceCache{entries: make(map[string][]models.RecurrenceOccurrence)}
}

func (c *occurrenceCache) Get(key string) ([]models.RecurrenceOccurrence, bool) {
	c.mu.RLock()
	items, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return cloneOccurrences(items), true
}

// Set overwrites unconditionally; concurrent writers for one key always carry equal values.
func (c *occurrenceCache) Set(key string, items []models.RecurrenceOccurrence) {
	c.mu.Lock()
	c.entries[key] = items
	c.mu.Unlock()
}

func (c *occurrenceCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string][]models.RecurrenceOccurrence)
	c.mu.Unlock()
}

func (c *occurrenceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
