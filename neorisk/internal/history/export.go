package history

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts json and csv.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", models.ErrInvalidInput, s)
}

// ContentType is the HTTP media type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Filename builds a download name stamped with at.
func (f Format) Filename(at time.Time) string {
	return fmt.Sprintf("history_%d.%s", at.UnixMilli(), f)
}

// CSVHeader is the fixed column layout of CSV exports.
var CSVHeader = []string{
	"ID", "Date", "Name", "Gender", "Age(days)",
	"Consensus", "Confidence%", "HealthyModels", "AtRiskModels",
	"AvgResponseTimeMs", "RiskFactors", "Notes",
}

// Export writes entries to w in the given format.
func Export(w io.Writer, entries []models.HistoryEntry, f Format) error {
	switch f {
	case FormatCSV:
		return ExportCSV(w, entries)
	case FormatJSON:
		return ExportJSON(w, entries)
	}
	return fmt.Errorf("%w: unknown export format %q", models.ErrInvalidInput, f)
}

// ExportJSON writes entries as an indented JSON array.
func ExportJSON(w io.Writer, entries []models.HistoryEntry) error {
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return nil
}

// ExportCSV writes the header row followed by one row per entry.
func ExportCSV(w io.Writer, entries []models.HistoryEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(csvRow(e)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(e models.HistoryEntry) []string {
	name := e.BabyName
	if name == "" {
		name = "N/A"
	}
	return []string{
		e.ID,
		e.Timestamp.UTC().Format(time.RFC3339),
		name,
		e.BabyGender,
		strconv.Itoa(e.BabyAge),
		string(e.Consensus),
		strconv.FormatFloat(e.ConsensusConfidence, 'f', 1, 64),
		strconv.Itoa(e.HealthyCount),
		strconv.Itoa(e.AtRiskCount),
		strconv.FormatFloat(e.AvgResponseTime, 'f', -1, 64),
		strconv.Itoa(e.RiskFactorsCount),
		e.Notes,
	}
}
