package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greenloophq/greenloop/config"
	"github.com/greenloophq/greenloop/db"
	"github.com/greenloophq/greenloop/mailingservices"
	"github.com/greenloophq/greenloop/services"
)

type Server struct {
	Config                 *config.Config
	Mail                   *mailingservices.Mailgun
	DB                     *db.GormDB
	UserRepository         db.UserRepository
	ReportRepository       db.ReportRepository
	RewardRepository       db.RewardRepository
	NotificationRepository db.NotificationRepository
	AuthService            services.AuthService
	ReportService          services.ReportService
	RewardService          services.RewardService
	NotificationService    services.NotificationService
	MediaService           services.MediaService
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database pool.
func (s *Server) Start() {
	r := s.setupRouter()

	port := s.Config.Port
	if port == 0 {
		port = 8080
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		log.Printf("server listening on :%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}
	log.Println("server exited")
}
