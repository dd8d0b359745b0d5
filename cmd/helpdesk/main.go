package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewForService(cfg.Server.Env, "helpdesk")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	ctx := context.Background()
	mongoClient, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal("Failed to connect to mongodb", zap.Error(err))
	}

	db := mongoClient.Database(cfg.Mongo.Database)
	ticketRepo := repository.NewHelpTicketRepository(db.Collection(database.CollectionHelpTickets))
	helpHandler := transport.NewHelpHandler(ticketRepo, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(custommiddleware.ErrorHandlingMiddleware(log))
	router.Use(custommiddleware.LoggingMiddleware(log))

	helpHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Helpdesk.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan bool, 1)
	go func() {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		log.Info("Shutting down help desk service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Help desk forced to shutdown", zap.Error(err))
		}
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("Failed to disconnect from mongodb", zap.Error(err))
		}
		done <- true
	}()

	log.Info("Help desk service listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Help desk service exiting")
}
