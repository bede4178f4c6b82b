// Package history filters, sorts, paginates and exports the prediction log.
// All functions are pure and safe to re-run on every view change.
package history

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// WindowSize is the number of page links shown around the current page.
	WindowSize = 5
)

// collation locale for baby names
var nameLocale = language.French

// Filter keeps entries matching every active clause, in input order.
func Filter(entries []models.HistoryEntry, f models.HistoryFilters) []models.HistoryEntry {
	query := strings.ToLower(f.SearchQuery)

	out := make([]models.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if query != "" &&
			!strings.Contains(strings.ToLower(e.BabyName), query) &&
			!strings.Contains(strings.ToLower(e.ID), query) {
			continue
		}
		if f.DateFrom != nil && e.Timestamp.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && e.Timestamp.After(*f.DateTo) {
			continue
		}
		if f.Consensus != "" && f.Consensus != models.VerdictAll && e.Consensus != f.Consensus {
			continue
		}
		if f.Model != "" && f.Model != models.ModelAll && !e.UsesModel(f.Model) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Sort returns a stably sorted copy. Equal keys keep their input order in
// both directions.
func Sort(entries []models.HistoryEntry, by models.SortField, order models.SortOrder) []models.HistoryEntry {
	sorted := make([]models.HistoryEntry, len(entries))
	copy(sorted, entries)

	cmp := comparator(by)
	desc := order == models.Descending
	sort.SliceStable(sorted, func(i, j int) bool {
		c := cmp(sorted[i], sorted[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

func comparator(by models.SortField) func(a, b models.HistoryEntry) int {
	switch by {
	case models.SortByName:
		// collators keep internal buffers, one per Sort call
		col := collate.New(nameLocale)
		return func(a, b models.HistoryEntry) int {
			return col.CompareString(a.BabyName, b.BabyName)
		}
	case models.SortByConfidence:
		return func(a, b models.HistoryEntry) int {
			return compareFloat(a.ConsensusConfidence, b.ConsensusConfidence)
		}
	case models.SortByAge:
		return func(a, b models.HistoryEntry) int {
			return a.BabyAge - b.BabyAge
		}
	}
	return func(a, b models.HistoryEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// TotalPages is ceil(count/pageSize).
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage forces page into [1, totalPages], or 1 when there are no pages.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the slice [(page-1)*size, page*size) after clamping page.
func Paginate(entries []models.HistoryEntry, page, pageSize int) ([]models.HistoryEntry, int) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	page = ClampPage(page, TotalPages(len(entries), pageSize))

	start := (page - 1) * pageSize
	if start >= len(entries) {
		return []models.HistoryEntry{}, page
	}
	end := min(start+pageSize, len(entries))
	return entries[start:end], page
}

// QueryState is the full view state of the history screen.
type QueryState struct {
	Filters  models.HistoryFilters
	Page     int
	PageSize int
}

// NewQueryState starts on page one with default filters.
func NewQueryState() QueryState {
	return QueryState{
		Filters:  models.DefaultFilters(),
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// Page is one rendered page of the history view.
type Page struct {
	Entries    []models.HistoryEntry `json:"entries"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
	TotalCount int                   `json:"totalCount"`
	Window     []int                 `json:"pageWindow"`
}

// Matching runs filter then sort without paginating. Exports use it.
func Matching(entries []models.HistoryEntry, f models.HistoryFilters) []models.HistoryEntry {
	return Sort(Filter(entries, f), f.SortBy, f.SortOrder)
}

// Run executes the filter, sort and paginate pipeline for state.
func Run(entries []models.HistoryEntry, state QueryState) Page {
	size := state.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	matched := Matching(entries, state.Filters)
	pageEntries, page := Paginate(matched, state.Page, size)
	total := TotalPages(len(matched), size)

	return Page{
		Entries:    pageEntries,
		Page:       page,
		PageSize:   size,
		TotalPages: total,
		TotalCount: len(matched),
		Window:     PageWindow(page, total, WindowSize),
	}
}

// PageWindow returns up to size consecutive page numbers centred on current
// where possible.
func PageWindow(current, total, size int) []int {
	if total < 1 || size < 1 {
		return []int{}
	}
	current = ClampPage(current, total)

	start := current - size/2
	if start < 1 {
		start = 1
	}
	end := start + size - 1
	if end > total {
		end = total
		start = end - size + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
