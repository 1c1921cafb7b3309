package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"garden-console/internal/boot"

	"go.uber.org/zap"
)

func main() {
	// CONFIG_PATH 가 없거나 파일이 없으면 example 설정으로 기동한다
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.dev.yaml"
	}
	if _, err := os.Stat(cfgPath); err != nil {
		fallback := "configs/config.example.yaml"
		if _, err2 := os.Stat(fallback); err2 != nil {
			log.Fatalf("config file not found: %s (fallback %s also missing)", cfgPath, fallback)
		}
		log.Printf("config %s not found, fallback to %s", cfgPath, fallback)
		cfgPath = fallback
	}
	if abs, err := filepath.Abs(cfgPath); err == nil {
		cfgPath = abs
	}

	app, err := boot.InitApp(cfgPath)
	if err != nil {
		log.Fatalf("init app: %v", err)
	}

	srv := &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           app.HTTP,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		app.Logger.Info("http_server_start",
			zap.String("addr", app.Config.HTTP.Addr),
			zap.String("upstream", app.Upstream.BaseURL()),
			zap.String("session_driver", app.Config.Session.Driver),
			zap.String("config", cfgPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("http_server_error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	app.Logger.Info("shutting_down")
	wait := time.Duration(app.Config.HTTP.ShutdownSeconds) * time.Second
	if wait <= 0 {
		wait = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Warn("http_shutdown_error", zap.Error(err))
	}
	app.Close()
}
