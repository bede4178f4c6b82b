// Package health tracks the serving status of the backend and of every
// remote classifier, and serves it over gRPC and HTTP.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	mu       sync.RWMutex
	services map[string]grpc_health_v1.HealthCheckResponse_ServingStatus
}

// NewHealthServer registers the given services as SERVING. The overall
// service "" is always present.
func NewHealthServer(services ...string) *HealthServer {
	h := &HealthServer{
		services: make(map[string]grpc_health_v1.HealthCheckResponse_ServingStatus),
	}
	h.services[""] = grpc_health_v1.HealthCheckResponse_SERVING
	for _, s := range services {
		h.services[s] = grpc_health_v1.HealthCheckResponse_SERVING
	}
	return h
}

func (h *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	servingStatus, exists := h.services[req.GetService()]
	if !exists {
		return nil, status.Error(codes.NotFound, "service not found")
	}

	return &grpc_health_v1.HealthCheckResponse{
		Status: servingStatus,
	}, nil
}

func (h *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	response, err := h.Check(stream.Context(), req)
	if err != nil {
		return err
	}

	if err := stream.Send(response); err != nil {
		return err
	}

	<-stream.Context().Done()
	return stream.Context().Err()
}

func (h *HealthServer) SetServingStatus(service string) {
	h.setStatus(service, grpc_health_v1.HealthCheckResponse_SERVING)
}

func (h *HealthServer) SetNotServingStatus(service string) {
	h.setStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

// Shutdown marks every service NOT_SERVING so health checks drain before the
// listeners close.
func (h *HealthServer) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.services {
		h.services[s] = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
}

func (h *HealthServer) setStatus(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.services[service] = status
}

// ServiceStatus is one row of the HTTP health report.
type ServiceStatus struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}

// Snapshot lists the named services sorted by name; the overall
// service is reported as "neorisk".
func (h *HealthServer) Snapshot() []ServiceStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ServiceStatus, 0, len(h.services))
	for name, st := range h.services {
		if name == "" {
			name = "neorisk"
		}
		out = append(out, ServiceStatus{Service: name, Status: st.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}

// ServeHTTP answers /healthz. The status code follows the overall service
// only; a down classifier degrades predictions, not the backend.
func (h *HealthServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	overall := h.services[""]
	h.mu.RUnlock()

	code := http.StatusOK
	if overall != grpc_health_v1.HealthCheckResponse_SERVING {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":   overall.String(),
		"services": h.Snapshot(),
	})
}
