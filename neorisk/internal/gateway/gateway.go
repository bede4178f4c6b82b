// Package gateway fans a measurement set out to the remote classifiers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/consensus"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

// maxResponseBytes bounds how much of a classifier reply is read.
const maxResponseBytes = 1 << 20

// StatusReporter receives per-classifier reachability. The gRPC health
// server implements it.
type StatusReporter interface {
	SetServingStatus(service string)
	SetNotServingStatus(service string)
}

// ServiceName is the health service name of a classifier.
func ServiceName(m models.ModelID) string {
	return "classifier." + string(m)
}

// Gateway calls one HTTP endpoint per classifier.
type Gateway struct {
	client    *http.Client
	endpoints map[models.ModelID]string
	reporter  StatusReporter
	now       func() time.Time
}

// New builds a gateway. A zero timeout leaves requests unbounded; reporter
// may be nil.
func New(endpoints map[models.ModelID]string, timeout time.Duration, reporter StatusReporter) *Gateway {
	eps := make(map[models.ModelID]string, len(endpoints))
	for id, url := range endpoints {
		eps[id] = url
	}
	return &Gateway{
		client:    &http.Client{Timeout: timeout},
		endpoints: eps,
		reporter:  reporter,
		now:       time.Now,
	}
}

// Predict queries every selected model concurrently and returns one result
// per model in selection order. A failing model yields a degraded At Risk
// result with zero confidence; it never affects the other calls.
func (g *Gateway) Predict(ctx context.Context, data models.BabyHealthData, selected []models.ModelID) []models.SingleModelResult {
	results := make([]models.SingleModelResult, len(selected))

	payload, err := json.Marshal(data)
	if err != nil {
		// unreachable for a plain struct, still degrade every slot
		log.Printf("[ERROR] [GATEWAY] Failed to encode measurements: %v", err)
		for i, m := range selected {
			results[i] = g.degraded(m, 0, "encode", err)
		}
		return results
	}

	var group errgroup.Group
	for i, m := range selected {
		group.Go(func() error {
			results[i] = g.predictOne(ctx, m, payload)
			return nil
		})
	}
	_ = group.Wait()

	return results
}

// PredictAndAggregate runs Predict and the consensus vote for one request.
func (g *Gateway) PredictAndAggregate(ctx context.Context, req models.PredictionRequest) (models.PredictionResult, error) {
	if len(req.Models) == 0 {
		return models.PredictionResult{}, models.ErrNoModelsSelected
	}

	results := g.Predict(ctx, req.Data, req.Models)

	result, err := consensus.Build(results, req.BabyName, g.now())
	if err != nil {
		return models.PredictionResult{}, fmt.Errorf("failed to aggregate predictions: %w", err)
	}

	consensusTotal.WithLabelValues(string(result.Consensus)).Inc()
	log.Printf("[INFO] [GATEWAY] Consensus %s confidence=%.1f healthy=%d at_risk=%d avg_ms=%.0f",
		result.Consensus, result.ConsensusConfidence, result.HealthyCount, result.AtRiskCount,
		result.AverageResponseTime)

	return result, nil
}

type classifierReply struct {
	Prediction *string  `json:"prediction"`
	Confidence *float64 `json:"confidence"`
}

func (g *Gateway) predictOne(ctx context.Context, m models.ModelID, payload []byte) models.SingleModelResult {
	start := time.Now()

	url, ok := g.endpoints[m]
	if !ok || url == "" {
		return g.degraded(m, time.Since(start), "config", fmt.Errorf("no endpoint configured"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return g.degraded(m, time.Since(start), "request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		return g.degraded(m, time.Since(start), "transport", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	if err != nil {
		return g.degraded(m, elapsed, "transport", err)
	}

	if resp.StatusCode != http.StatusOK {
		return g.degraded(m, elapsed, "status", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	verdict, confidence, err := parseReply(body)
	if err != nil {
		return g.degraded(m, elapsed, "malformed", err)
	}

	classifierDuration.WithLabelValues(string(m), "ok").Observe(elapsed.Seconds())
	g.report(m, true)

	return models.SingleModelResult{
		Model:          m,
		DisplayName:    m.Info().DisplayName,
		Prediction:     verdict,
		Confidence:     confidence,
		ResponseTimeMs: elapsed.Milliseconds(),
	}
}

func parseReply(body []byte) (models.Verdict, float64, error) {
	var reply classifierReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", 0, fmt.Errorf("invalid JSON: %w", err)
	}
	if reply.Prediction == nil || reply.Confidence == nil {
		return "", 0, errors.New("missing prediction or confidence")
	}

	verdict, err := models.ParseVerdict(*reply.Prediction)
	if err != nil {
		return "", 0, err
	}

	c := *reply.Confidence
	if math.IsNaN(c) || c < 0 || c > 100 {
		return "", 0, fmt.Errorf("confidence %v outside [0, 100]", c)
	}
	// a binary verdict is never held with less than 1%; such values are 0..1 fractions
	if c > 0 && c < 1 {
		return "", 0, fmt.Errorf("confidence %v looks like a fraction, expected a percentage", c)
	}
	return verdict, c, nil
}

// degraded is the conservative stand-in for a model that could not answer.
func (g *Gateway) degraded(m models.ModelID, elapsed time.Duration, reason string, err error) models.SingleModelResult {
	log.Printf("[WARN] [GATEWAY] Classifier %s failed after %dms (%s): %v", m, elapsed.Milliseconds(), reason, err)

	classifierDuration.WithLabelValues(string(m), "failed").Observe(elapsed.Seconds())
	classifierFailures.WithLabelValues(string(m), reason).Inc()
	g.report(m, false)

	displayName := string(m)
	if m.Valid() {
		displayName = m.Info().DisplayName
	}

	return models.SingleModelResult{
		Model:          m,
		DisplayName:    displayName,
		Prediction:     models.AtRisk,
		Confidence:     0,
		ResponseTimeMs: elapsed.Milliseconds(),
		Failed:         true,
	}
}

func (g *Gateway) report(m models.ModelID, up bool) {
	if g.reporter == nil {
		return
	}
	if up {
		g.reporter.SetServingStatus(ServiceName(m))
	} else {
		g.reporter.SetNotServingStatus(ServiceName(m))
	}
}
