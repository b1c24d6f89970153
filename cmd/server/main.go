package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jmorgan84/golf-draft-backend/internal/config"
	"github.com/jmorgan84/golf-draft-backend/internal/httpapi"
	"github.com/jmorgan84/golf-draft-backend/internal/hub"
	"github.com/jmorgan84/golf-draft-backend/internal/lobby"
	"github.com/jmorgan84/golf-draft-backend/internal/pool"
	"github.com/jmorgan84/golf-draft-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := buildLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}

	leagues, err := store.New(db, log)
	if err != nil {
		log.Fatal("store init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mirror := store.NewMirror(cfg.MirrorURL, cfg.MirrorMinInterval, log)
	syncer := store.NewSyncer(leagues, mirror, log)
	go syncer.Run(ctx)

	players := pool.NewFetcher(cfg.RankingsURL, cfg.FieldURL, log)

	h := hub.NewHub(ctx, leagues, lobby.Deps{
		Store:  leagues,
		Pool:   players,
		Log:    log,
		Syncer: syncer,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, leagues, log),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
