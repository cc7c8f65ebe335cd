/*
Package main is the entry point for the Guildchat server.

It is responsible for loading configuration, initializing the global logging system,
opening the persistence backend, wiring the real-time Manager and the REST service,
setting up the HTTP server, and gracefully handling operating system interrupt signals
(SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guildchat/internal/app/chat"
	"guildchat/internal/app/service"
	"guildchat/internal/app/storage"
	"guildchat/internal/app/store"
	"guildchat/internal/configs"
	"guildchat/internal/handler"
	"guildchat/internal/pkg/cache"
	"guildchat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("store_driver", cfg.StoreDriver).
		Bool("room_authorization", cfg.RoomAuthorization).
		Bool("attachments", cfg.AttachmentsEnabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, err := store.Open(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open persistence backend")
	}

	var c cache.Cache
	if cfg.RedisAddr != "" {
		c, err = cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logx.Fatal(err, "Failed to connect to Redis")
		}
	} else {
		c = cache.NewLocal()
	}

	var files storage.Service
	if cfg.AttachmentsEnabled() {
		files, err = storage.New(ctx, storage.Config{
			Bucket:          cfg.S3BucketName,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize attachment storage")
		}
	}

	access := service.NewRoomAccess(gw)
	manager := chat.NewManager(cfg, service.NewPresence(gw), access)
	svc := service.New(gw, manager, access, service.Options{
		AttachmentsEnabled: cfg.AttachmentsEnabled(),
	})

	router := handler.Router(&handler.AppDeps{
		Config:  cfg,
		Service: svc,
		Access:  access,
		Manager: manager,
		Cache:   c,
		Storage: files,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Guildchat Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	manager.Shutdown()

	if err := c.Close(); err != nil {
		logx.Error(err, "Failed to close cache")
	}
	if err := gw.Close(); err != nil {
		logx.Error(err, "Failed to close persistence backend")
	}

	logx.Info("Server gracefully stopped.")
}
