package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/gateway"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/handler"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/health"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/recorder"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/service"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/store"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/validation"
	"github.com/Krimson/neorisk-monitor/neorisk/internal/websocket"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	log.Printf("[INFO] Starting neorisk server...")
	log.Printf("[INFO] Configuration loaded: http_port=%s grpc_port=%s store=%s classifiers=%d",
		cfg.HTTPPort, cfg.GRPCPort, cfg.StoreDriver, len(cfg.Classifiers))

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer st.Close()

	services := make([]string, 0, len(cfg.Classifiers))
	for _, m := range models.AllModels() {
		if _, ok := cfg.Classifiers[m]; ok {
			services = append(services, gateway.ServiceName(m))
		}
	}
	healthServer := health.NewHealthServer(services...)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	rec := recorder.New(st, cfg.RecorderQueueSize, cfg.RecorderWriteTimeout(), &recorder.LogSink{}, hub)
	gw := gateway.New(cfg.Classifiers, cfg.ClassifierTimeout(), healthServer)
	svc := service.New(validation.New(), gw, st, rec, cfg.SeedCount)
	api := handler.NewHTTPHandler(svc, cfg.PageSize, cfg.SeedCount)

	httpServer := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     handler.NewRouter(api, hub.HandleWebSocket, healthServer),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	grpcServer := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	address := fmt.Sprintf(":%s", cfg.GRPCPort)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		rec.Stop()
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	serverErrChan := make(chan error, 2)
	go func() {
		log.Printf("[INFO] gRPC health service listening on %s", address)
		if err := grpcServer.Serve(listener); err != nil {
			serverErrChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		log.Printf("[INFO] HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var runErr error
	select {
	case runErr = <-serverErrChan:
		log.Printf("[ERROR] Server error: %v", runErr)
	case <-ctx.Done():
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] HTTP server forced to shutdown: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		log.Printf("[WARN] Graceful shutdown timeout, forcing stop")
		grpcServer.Stop()
	}

	// drain queued history writes before the store closes
	rec.Stop()
	stopHub()

	log.Printf("[INFO] Server stopped")
	return runErr
}
