// Package service wires validation, the classifier gateway, assessment and
// persistence into the operations the HTTP API exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/assessment"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/consensus"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/history"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/stats"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/store"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/validation"
)

// ErrHistoryUnavailable is returned by operations that must not fall back
// to generated sample data when the store cannot be read.
var ErrHistoryUnavailable = errors.New("history store unavailable")

// Predictor runs one prediction request against the classifiers.
// gateway.Gateway satisfies it.
type Predictor interface {
	PredictAndAggregate(ctx context.Context, req models.PredictionRequest) (models.PredictionResult, error)
}

// Recorder queues an entry for asynchronous persistence.
type Recorder interface {
	Record(entry models.HistoryEntry) bool
}

// PredictionResponse is everything the result screen shows.
type PredictionResponse struct {
	Success         bool                        `json:"success"`
	Result          models.PredictionResult     `json:"result"`
	RiskFactors     []assessment.RiskFactor     `json:"riskFactors"`
	Recommendations []assessment.Recommendation `json:"recommendations"`
	ComparisonStats consensus.ComparisonStats   `json:"comparisonStats"`
}

// HistoryPage is a history page plus whether it was built from sample data.
type HistoryPage struct {
	history.Page
	Sample bool `json:"sample"`
}

type HistoryStatsResponse struct {
	stats.HistoryStats
	Sample bool `json:"sample"`
}

type DashboardResponse struct {
	stats.DashboardStats
	Sample bool `json:"sample"`
}

type PerformanceResponse struct {
	Models []models.ModelPerformance `json:"models"`
	Sample bool                      `json:"sample"`
}

type ComparisonResponse struct {
	Comparison *stats.ComparisonStats `json:"comparison"`
	Sample     bool                   `json:"sample"`
}

type Service struct {
	validator   *validation.Validator
	predictor   Predictor
	store       store.HistoryStore
	recorder    Recorder
	sampleCount int

	now   func() time.Time
	rngMu sync.Mutex
	rng   *rand.Rand
	// fallback is the sample set served while the store is unreadable. It
	// is generated once and dropped on the next successful read.
	fallback []models.HistoryEntry
}

// New builds the service. sampleCount is the size of the generated history
// served when the store cannot be read.
func New(v *validation.Validator, p Predictor, s store.HistoryStore, r Recorder, sampleCount int) *Service {
	seed := uint64(time.Now().UnixNano())
	return &Service{
		validator:   v,
		predictor:   p,
		store:       s,
		recorder:    r,
		sampleCount: sampleCount,
		now:         time.Now,
		rng:         rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

// Predict validates the request, queries the classifiers and queues the
// history entry. Invalid input never reaches the network.
func (s *Service) Predict(ctx context.Context, req models.PredictionRequest) (PredictionResponse, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		return PredictionResponse{}, err
	}

	result, err := s.predictor.PredictAndAggregate(ctx, req)
	if err != nil {
		return PredictionResponse{}, err
	}

	factors := assessment.RiskFactors(req.Data)
	entry := NewEntry(result, req.Data, factors)
	if !s.recorder.Record(entry) {
		log.Printf("[WARN] [SERVICE] History entry for %q was not queued", req.BabyName)
	}

	return PredictionResponse{
		Success:         true,
		Result:          result,
		RiskFactors:     factors,
		Recommendations: assessment.Recommendations(result.Consensus, factors, req.Data),
		ComparisonStats: consensus.Compare(result.Models),
	}, nil
}

// NewEntry projects a prediction onto its persisted history form.
func NewEntry(result models.PredictionResult, data models.BabyHealthData, factors []assessment.RiskFactor) models.HistoryEntry {
	used := make([]models.ModelID, len(result.Models))
	for i, m := range result.Models {
		used[i] = m.Model
	}
	return models.HistoryEntry{
		Timestamp:           result.Timestamp,
		BabyName:            result.BabyName,
		BabyGender:          data.Gender,
		BabyAge:             data.AgeDays,
		ModelsUsed:          used,
		Consensus:           result.Consensus,
		ConsensusConfidence: result.ConsensusConfidence,
		HealthyCount:        result.HealthyCount,
		AtRiskCount:         result.AtRiskCount,
		AvgResponseTime:     result.AverageResponseTime,
		RiskFactorsCount:    len(factors),
		Notes:               assessment.Notes(factors),
	}
}

// entries reads the log. When the store fails it logs and serves generated
// sample data instead, reporting sample=true. The same sample set is served
// until the store recovers so paging and ids stay stable.
func (s *Service) entries(ctx context.Context) ([]models.HistoryEntry, bool) {
	list, err := s.store.List(ctx)
	if err == nil {
		s.rngMu.Lock()
		s.fallback = nil
		s.rngMu.Unlock()
		return list, false
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	if s.fallback == nil {
		log.Printf("[WARN] [SERVICE] Failed to read history, serving %d sample entries: %v", s.sampleCount, err)
		s.fallback = history.SampleEntries(s.sampleCount, s.now(), s.rng)
	}
	return s.fallback, true
}

func (s *Service) samples(n int) []models.HistoryEntry {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return history.SampleEntries(n, s.now(), s.rng)
}

func (s *Service) History(ctx context.Context, state history.QueryState) HistoryPage {
	list, sample := s.entries(ctx)
	return HistoryPage{Page: history.Run(list, state), Sample: sample}
}

func (s *Service) HistoryStats(ctx context.Context) HistoryStatsResponse {
	list, sample := s.entries(ctx)
	return HistoryStatsResponse{HistoryStats: stats.Summary(list, s.now()), Sample: sample}
}

// Export writes every entry matching filters, sorted, in the given format.
// Nothing is written when the store cannot be read: an exported file must
// never contain generated sample data.
func (s *Service) Export(ctx context.Context, w io.Writer, filters models.HistoryFilters, format history.Format) error {
	list, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}
	if err := history.Export(w, history.Matching(list, filters), format); err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}
	return nil
}

func (s *Service) Dashboard(ctx context.Context) DashboardResponse {
	list, sample := s.entries(ctx)
	return DashboardResponse{DashboardStats: stats.Dashboard(list, s.now()), Sample: sample}
}

func (s *Service) Performance(ctx context.Context, by stats.Criterion, ascending bool) PerformanceResponse {
	list, sample := s.entries(ctx)
	perfs := stats.SortPerformances(stats.ModelPerformances(list), by, ascending)
	return PerformanceResponse{Models: perfs, Sample: sample}
}

// Comparison is nil when there are no models to compare.
func (s *Service) Comparison(ctx context.Context) ComparisonResponse {
	list, sample := s.entries(ctx)
	resp := ComparisonResponse{Sample: sample}
	if cs, ok := stats.Compare(stats.ModelPerformances(list)); ok {
		resp.Comparison = &cs
	}
	return resp
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[INFO] [SERVICE] Deleted history entry %s", id)
	return nil
}

// Clear removes the whole log.
func (s *Service) Clear(ctx context.Context) (int, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	log.Printf("[INFO] [SERVICE] Cleared %d history entries", n)
	return n, nil
}

// Seed writes count generated entries synchronously and returns how many
// were stored.
func (s *Service) Seed(ctx context.Context, count int) (int, error) {
	if count < 1 {
		return 0, fmt.Errorf("%w: seed count must be >= 1, got %d", models.ErrInvalidInput, count)
	}
	written := 0
	for _, e := range s.samples(count) {
		if _, err := s.store.Create(ctx, e); err != nil {
			return written, fmt.Errorf("failed to seed history after %d entries: %w", written, err)
		}
		written++
	}
	log.Printf("[INFO] [SERVICE] Seeded %d history entries", written)
	return written, nil
}
