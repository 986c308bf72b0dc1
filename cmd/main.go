/*
The main package is the entry point of the chat server.

It loads configuration, initializes logging, connects the database, wires the
presence-and-broadcast core, and runs the HTTP server with graceful shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webchat/internal/app/chat"
	"webchat/internal/app/db"
	"webchat/internal/app/storage"
	"webchat/internal/app/store"
	"webchat/internal/configs"
	"webchat/internal/handler"
	"webchat/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Info("Configuration loaded.", "environment", cfg.Environment, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	users := store.NewPostgresUserStore(pool)
	messages := store.NewPostgresMessageStore(pool)

	core := chat.NewCore(
		chat.NewPresenceRegistry(),
		chat.NewSessionBinder(),
		chat.NewBroadcaster(),
		users,
		messages,
	)

	var avatars storage.AvatarStorage
	if cfg.S3BucketName != "" {
		avatars, err = storage.NewAvatarStorage(storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize avatar storage")
		}
	} else {
		logx.Warn("Avatar storage not configured; avatar endpoints are disabled.")
	}

	deps := &handler.AppDeps{
		Core:    core,
		Config:  cfg,
		Users:   users,
		Avatars: avatars,
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.Router(deps),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info("Server starting.", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed")
		}
	}()

	<-ctx.Done()
	logx.Info("Shutdown signal received.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Graceful shutdown failed")
	}

	logx.Info("Server stopped.")
}
