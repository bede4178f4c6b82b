// Command stubs runs four local stand-ins for the classifier services so
// the dashboard can be exercised without the real models.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

// stub is one fake classifier. threshold shifts how many risk points it
// tolerates before answering At Risk; latency is the simulated work.
type stub struct {
	model     models.ModelID
	addr      string
	path      string
	threshold float64
	latency   time.Duration
}

var stubs = []stub{
	{model: models.DecisionTree, addr: ":5001", path: "/decisionTree/predict", threshold: 1, latency: 40 * time.Millisecond},
	{model: models.RandomForest, addr: ":5002", path: "/randomForest/predict", threshold: 1.5, latency: 120 * time.Millisecond},
	{model: models.KNN, addr: ":5003", path: "/knn/predict", threshold: 2, latency: 80 * time.Millisecond},
	{model: models.NaiveBayes, addr: ":5004", path: "/naiveBayes/predict", threshold: 1.5, latency: 20 * time.Millisecond},
}

type reply struct {
	Prediction models.Verdict `json:"prediction"`
	Confidence float64        `json:"confidence"`
}

// riskScore adds one point per vital sign outside its usual newborn band.
func riskScore(d models.BabyHealthData) float64 {
	var score float64
	if d.TemperatureC < 36.5 || d.TemperatureC > 37.5 {
		score++
	}
	if d.HeartRateBpm < 120 || d.HeartRateBpm > 160 {
		score++
	}
	if d.RespiratoryRateBpm < 30 || d.RespiratoryRateBpm > 60 {
		score++
	}
	if d.OxygenSaturation < 95 {
		score++
	}
	if d.JaundiceLevelMgDl > 10 {
		score++
	}
	if d.ReflexesNormal == "No" {
		score += 2
	}
	if d.ApgarScore < 7 {
		score++
	}
	return score
}

// classify maps a risk score onto a verdict and a confidence in [60, 99];
// jitter in [0, 1) adds a little noise.
func classify(score, threshold, jitter float64) reply {
	distance := math.Abs(score - threshold)
	confidence := math.Min(99, 60+distance*15+jitter*10)

	if score >= threshold {
		return reply{Prediction: models.AtRisk, Confidence: math.Round(confidence*10) / 10}
	}
	return reply{Prediction: models.Healthy, Confidence: math.Round(confidence*10) / 10}
}

func (s stub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, `{"error": "Method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		var data models.BabyHealthData
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
			return
		}

		time.Sleep(s.latency)

		score := riskScore(data)
		out := classify(score, s.threshold, rand.Float64())
		log.Printf("[STUB] %s request=%s score=%.1f -> %s (%.1f%%)",
			s.model, r.Header.Get("X-Request-ID"), score, out.Prediction, out.Confidence)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})
	return mux
}

func main() {
	log.Println("[INFO] Starting classifier stubs...")

	servers := make([]*http.Server, 0, len(stubs))
	var wg sync.WaitGroup
	for _, s := range stubs {
		srv := &http.Server{Addr: s.addr, Handler: s.handler()}
		servers = append(servers, srv)

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("[INFO] %s stub listening at http://localhost%s%s", s.model, s.addr, s.path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("[FATAL] Failed to serve %s stub: %v", s.model, err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] Shutting down stubs...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		srv.Shutdown(ctx)
	}
	wg.Wait()

	log.Println("[INFO] Stubs stopped")
}
