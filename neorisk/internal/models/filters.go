package models

import (
	"fmt"
	"time"
)

// SortField is a history sort key.
type SortField string

const (
	SortByDate       SortField = "date"
	SortByName       SortField = "name"
	SortByConfidence SortField = "confidence"
	SortByAge        SortField = "age"
)

// ParseSortField accepts the query values date, name, confidence and age.
func ParseSortField(s string) (SortField, error) {
	switch SortField(s) {
	case SortByDate, SortByName, SortByConfidence, SortByAge:
		return SortField(s), nil
	}
	return "", fmt.Errorf("%w: unknown sort field %q", ErrInvalidInput, s)
}

// SortOrder is asc or desc.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortOrder accepts asc and desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case Ascending, Descending:
		return SortOrder(s), nil
	}
	return "", fmt.Errorf("%w: unknown sort order %q", ErrInvalidInput, s)
}

// HistoryFilters is a transient query over the history log.
// Nil dates disable the corresponding bound.
type HistoryFilters struct {
	SearchQuery string     `json:"searchQuery"`
	DateFrom    *time.Time `json:"dateFrom,omitempty"`
	DateTo      *time.Time `json:"dateTo,omitempty"`
	Consensus   Verdict    `json:"consensus"`
	Model       ModelID    `json:"model"`
	SortBy      SortField  `json:"sortBy"`
	SortOrder   SortOrder  `json:"sortOrder"`
}

// DefaultFilters matches everything, newest first.
func DefaultFilters() HistoryFilters {
	return HistoryFilters{
		Consensus: VerdictAll,
		Model:     ModelAll,
		SortBy:    SortByDate,
		SortOrder: Descending,
	}
}
