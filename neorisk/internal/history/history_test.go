package history

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

var base = time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)

func fixture() []models.HistoryEntry {
	return []models.HistoryEntry{
		{ID: "a1", BabyName: "Émile", Timestamp: base.Add(-1 * time.Hour), Consensus: models.Healthy, ConsensusConfidence: 100, BabyAge: 3, ModelsUsed: []models.ModelID{models.KNN}},
		{ID: "b2", BabyName: "zoé", Timestamp: base.Add(-2 * time.Hour), Consensus: models.AtRisk, ConsensusConfidence: 75, BabyAge: 12, ModelsUsed: []models.ModelID{models.KNN, models.NaiveBayes}},
		{ID: "c3", BabyName: "", Timestamp: base.Add(-48 * time.Hour), Consensus: models.Healthy, ConsensusConfidence: 75, BabyAge: 3, ModelsUsed: []models.ModelID{models.DecisionTree}},
		{ID: "d4", BabyName: "Adam", Timestamp: base.Add(-72 * time.Hour), Consensus: models.AtRisk, ConsensusConfidence: 50, BabyAge: 20, ModelsUsed: []models.ModelID{models.RandomForest, models.KNN}},
		{ID: "e5", BabyName: "emma", Timestamp: base.Add(-96 * time.Hour), Consensus: models.Healthy, ConsensusConfidence: 75, BabyAge: 7, ModelsUsed: []models.ModelID{models.NaiveBayes}},
	}
}

func ids(entries []models.HistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	from := base.Add(-72 * time.Hour)
	to := base.Add(-2 * time.Hour)

	tests := []struct {
		name    string
		filters models.HistoryFilters
		want    []string
	}{
		{"defaults match everything", models.DefaultFilters(), []string{"a1", "b2", "c3", "d4", "e5"}},
		{"search is case insensitive", models.HistoryFilters{SearchQuery: "EM"}, []string{"e5"}},
		{"search matches id", models.HistoryFilters{SearchQuery: "C3"}, []string{"c3"}},
		{"inclusive date bounds", models.HistoryFilters{DateFrom: &from, DateTo: &to}, []string{"b2", "c3", "d4"}},
		{"consensus", models.HistoryFilters{Consensus: models.AtRisk, Model: models.ModelAll}, []string{"b2", "d4"}},
		{"model membership", models.HistoryFilters{Consensus: models.VerdictAll, Model: models.KNN}, []string{"a1", "b2", "d4"}},
		{"all clauses", models.HistoryFilters{SearchQuery: "a", Consensus: models.AtRisk, Model: models.KNN}, []string{"d4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(fixture(), tt.filters))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFilterIdempotent(t *testing.T) {
	filters := []models.HistoryFilters{
		models.DefaultFilters(),
		{SearchQuery: "e", Consensus: models.Healthy},
		{Model: models.NaiveBayes},
	}
	for _, f := range filters {
		once := Filter(fixture(), f)
		twice := Filter(once, f)
		if !reflect.DeepEqual(ids(once), ids(twice)) {
			t.Errorf("Filter not idempotent for %+v: %v vs %v", f, ids(once), ids(twice))
		}
	}
}

func TestSort(t *testing.T) {
	entries := fixture()

	got := ids(Sort(entries, models.SortByDate, models.Ascending))
	if want := []string{"e5", "d4", "c3", "b2", "a1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("date asc: expected %v, got %v", want, got)
	}

	// empty name first, accents collated with their base letter
	got = ids(Sort(entries, models.SortByName, models.Ascending))
	if want := []string{"c3", "d4", "a1", "e5", "b2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("name asc: expected %v, got %v", want, got)
	}

	// ties on 75 keep input order in both directions
	got = ids(Sort(entries, models.SortByConfidence, models.Descending))
	if want := []string{"a1", "b2", "c3", "e5", "d4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("confidence desc: expected %v, got %v", want, got)
	}
	got = ids(Sort(entries, models.SortByConfidence, models.Ascending))
	if want := []string{"d4", "b2", "c3", "e5", "a1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("confidence asc: expected %v, got %v", want, got)
	}

	if entries[0].ID != "a1" {
		t.Error("Sort must not reorder its input")
	}
}

func TestSortDirectionReversesDistinctKeys(t *testing.T) {
	entries := fixture()
	asc := Sort(entries, models.SortByDate, models.Ascending)
	desc := Sort(asc, models.SortByDate, models.Descending)

	for i := range asc {
		if asc[i].ID != desc[len(desc)-1-i].ID {
			t.Fatalf("Expected exact reversal, got %v then %v", ids(asc), ids(desc))
		}
	}
}

func TestPaginationCoversEverything(t *testing.T) {
	for count := 0; count <= 23; count++ {
		entries := make([]models.HistoryEntry, count)
		for size := 1; size <= 7; size++ {
			pages := TotalPages(count, size)
			sum := 0
			for p := 1; p <= pages; p++ {
				slice, page := Paginate(entries, p, size)
				if page != p {
					t.Fatalf("count=%d size=%d: page %d clamped to %d", count, size, p, page)
				}
				sum += len(slice)
				if p == pages && (len(slice) < 1 || len(slice) > size) {
					t.Errorf("count=%d size=%d: last page has %d entries", count, size, len(slice))
				}
			}
			if sum != count {
				t.Errorf("count=%d size=%d: pages hold %d entries", count, size, sum)
			}
		}
	}
}

func TestPaginateClampsPage(t *testing.T) {
	entries := fixture()

	slice, page := Paginate(entries, 9, 2)
	if page != 3 || len(slice) != 1 {
		t.Errorf("Expected clamp to page 3 with one entry, got page %d with %d", page, len(slice))
	}

	slice, page = Paginate(nil, 4, 10)
	if page != 1 || len(slice) != 0 {
		t.Errorf("Expected page 1 of an empty set, got page %d with %d", page, len(slice))
	}

	_, page = Paginate(entries, -3, 2)
	if page != 1 {
		t.Errorf("Expected negative page to clamp to 1, got %d", page)
	}
}

func TestRun(t *testing.T) {
	state := NewQueryState()
	state.PageSize = 2
	state.Page = 3
	state.Filters.Model = models.KNN

	page := Run(fixture(), state)
	if page.TotalCount != 3 || page.TotalPages != 2 {
		t.Errorf("Expected 3 matches over 2 pages, got %d over %d", page.TotalCount, page.TotalPages)
	}
	if page.Page != 2 {
		t.Errorf("Expected page clamped to 2, got %d", page.Page)
	}
	if got := ids(page.Entries); !reflect.DeepEqual(got, []string{"d4"}) {
		t.Errorf("Expected [d4], got %v", got)
	}
	if !reflect.DeepEqual(page.Window, []int{1, 2}) {
		t.Errorf("Unexpected page window %v", page.Window)
	}
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 0, []int{}},
		{1, 3, []int{1, 2, 3}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{6, 10, []int{4, 5, 6, 7, 8}},
		{10, 10, []int{6, 7, 8, 9, 10}},
		{42, 10, []int{6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		if got := PageWindow(tt.current, tt.total, WindowSize); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PageWindow(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
		}
	}
}

func TestExportCSV(t *testing.T) {
	entries := fixture()[2:4]
	entries[0].AvgResponseTime = 142.5
	entries[0].BabyGender = "Female"
	entries[1].Notes = "Surveillance, rapprochée"

	var buf bytes.Buffer
	if err := ExportCSV(&buf, entries); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Export is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d records", len(records))
	}
	if !reflect.DeepEqual(records[0], CSVHeader) || len(records[0]) != 12 {
		t.Errorf("Unexpected header %v", records[0])
	}

	row := records[1]
	if row[2] != "N/A" {
		t.Errorf("Expected N/A for missing name, got %q", row[2])
	}
	if row[1] != "2026-04-08T09:30:00Z" {
		t.Errorf("Unexpected date %q", row[1])
	}
	if row[6] != "75.0" || row[9] != "142.5" {
		t.Errorf("Unexpected numeric formatting %q / %q", row[6], row[9])
	}
	if records[2][11] != "Surveillance, rapprochée" {
		t.Errorf("Expected quoted notes to round-trip, got %q", records[2][11])
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, fixture()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  {") {
		t.Error("Expected indented JSON")
	}

	var decoded []models.HistoryEntry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(decoded) != 5 {
		t.Errorf("Expected 5 entries, got %d", len(decoded))
	}

	buf.Reset()
	if err := Export(&buf, nil, FormatJSON); err != nil || strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("Expected empty array, got %q (%v)", buf.String(), err)
	}
	if err := Export(&buf, nil, Format("xml")); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestSampleEntries(t *testing.T) {
	now := base
	rng := rand.New(rand.NewPCG(1, 2))

	entries := SampleEntries(200, now, rng)
	if len(entries) != 200 {
		t.Fatalf("Expected 200 entries, got %d", len(entries))
	}

	oldest := now.AddDate(0, 0, -SampleDays)
	for i, e := range entries {
		if e.ID == "" {
			t.Errorf("Entry %d has no id", i)
		}
		if e.Timestamp.After(now) || e.Timestamp.Before(oldest) {
			t.Errorf("Entry %d dated %v outside the sample range", i, e.Timestamp)
		}
		if i > 0 && e.Timestamp.After(entries[i-1].Timestamp) {
			t.Errorf("Entries not newest first at %d", i)
		}
		n := len(e.ModelsUsed)
		if n < 1 || n > 4 || e.HealthyCount+e.AtRiskCount != n {
			t.Errorf("Entry %d has inconsistent counts %+v", i, e)
		}
		wantConsensus := models.AtRisk
		if 2*e.HealthyCount >= n {
			wantConsensus = models.Healthy
		}
		if e.Consensus != wantConsensus {
			t.Errorf("Entry %d consensus %s does not follow the majority rule", i, e.Consensus)
		}
		if e.ConsensusConfidence < 50 || e.ConsensusConfidence > 100 {
			t.Errorf("Entry %d confidence %f out of range", i, e.ConsensusConfidence)
		}
		if e.BabyAge < 0 || e.BabyAge >= 30 {
			t.Errorf("Entry %d age %d out of range", i, e.BabyAge)
		}
	}

	if got := SampleEntries(0, now, rng); len(got) != 0 {
		t.Errorf("Expected no entries, got %d", len(got))
	}
}
