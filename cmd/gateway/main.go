package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/gateway"
	"storefront/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewForService(cfg.Server.Env, "gateway")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	storeURL, err := url.Parse(cfg.Gateway.StoreURL)
	if err != nil {
		log.Fatal("Invalid store service URL", zap.Error(err))
	}
	supportURL, err := url.Parse(cfg.Gateway.SupportURL)
	if err != nil {
		log.Fatal("Invalid support service URL", zap.Error(err))
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	storeProxy := gateway.NewProxy(storeURL, "/store", log)
	supportProxy := gateway.NewProxy(supportURL, "/support", log)
	router.Handle("/store/*", storeProxy)
	router.Handle("/support/*", supportProxy)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Gateway.Port),
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

		log.Info("Shutting down gateway")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Gateway forced to shutdown", zap.Error(err))
		}
		done <- true
	}()

	log.Info("Gateway listening",
		zap.String("addr", srv.Addr),
		zap.String("store_upstream", cfg.Gateway.StoreURL),
		zap.String("support_upstream", cfg.Gateway.SupportURL),
	)

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Gateway exiting")
}
