package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fundflow/internal/app"
	"github.com/MrJamesThe3rd/fundflow/internal/config"
	"github.com/MrJamesThe3rd/fundflow/internal/export"
	fundflowHttp "github.com/MrJamesThe3rd/fundflow/internal/http"
	"github.com/MrJamesThe3rd/fundflow/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/fundflow/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/fundflow/internal/http/importcsv"
	recordHandler "github.com/MrJamesThe3rd/fundflow/internal/http/record"
	"github.com/MrJamesThe3rd/fundflow/internal/importer"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open row store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	engine, closeEngine, err := app.NewEngine(ctx, cfg, store)
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		os.Exit(1)
	}
	defer closeEngine()

	loc, _ := cfg.Location()

	codec := schema.NewCodec(loc)

	var (
		importService = importer.NewService(codec)
		exportService = export.NewService(engine, codec)
		recordH       = recordHandler.NewHandler(engine)
		importH       = importHandler.NewHandler(importService, engine)
		exportH       = exportHandler.NewHandler(exportService)
	)

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set; trusting X-Actor and X-Role headers")
	}

	router := fundflowHttp.New(auth.New(cfg.Auth.JWTSecret), cfg.Server.AllowedOrigins, recordH, importH, exportH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "name", cfg.App.Name, "port", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
