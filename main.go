package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pehredar/internal/config"
	"pehredar/internal/middleware"
	"pehredar/internal/routes"
	"pehredar/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	source := services.NewSystemSource(cfg)
	sampler := services.NewSampler(cfg, source)
	analyzer := services.NewAnalyzer(cfg)
	manager := services.NewAlertManager(cfg, sampler, services.NewSMTPMailer())
	hub := services.NewStreamHub(sampler)

	// alert checks also run after every completed sampling tick;
	// the hub pushes each fresh snapshot and raised alert to clients
	sampler.Subscribe(manager)
	sampler.Subscribe(hub)
	manager.RegisterNotifier(hub)

	hub.Start()
	sampler.Start()
	manager.Start()

	r := gin.Default()
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter()))

	routes.RegisterMetricRoutes(r, sampler)
	routes.RegisterAnalysisRoutes(r, sampler, analyzer)
	routes.RegisterAlertRoutes(r, manager)
	routes.RegisterStreamRoutes(r, hub)

	server := &http.Server{
		Addr:    cfg.GetString("server.addr", "localhost:8080"),
		Handler: r,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("listening on %s", server.Addr)

	// wait for a shutdown signal, then stop the loops before teardown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	manager.Stop()
	sampler.Stop()
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
