package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jigsaw/internal/config"
	"github.com/robalobadob/jigsaw/internal/httpserver"
	"github.com/robalobadob/jigsaw/internal/journal"
	"github.com/robalobadob/jigsaw/internal/ratelimit"
	"github.com/robalobadob/jigsaw/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	gameCfg, err := config.LoadGame(cfg.GameConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid game config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var jr *journal.Journal
	if cfg.JournalDSN != "" {
		db, err := openDB(cfg.JournalDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open journal db")
		}
		defer db.Close()
		if err := migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate journal db")
		}
		jr = journal.New(db, 1024)
		defer jr.Close()
	}

	limiter := ratelimit.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RateLimit, cfg.RateWindow)
	defer limiter.Close()

	mem := store.NewMemoryStore()
	go store.RunSweeper(ctx, mem, time.Minute, cfg.SessionMaxIdle)

	srv := httpserver.New(mem, httpserver.Options{
		Game:         gameCfg,
		Tokens:       httpserver.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		Journal:      jr,
		Limiter:      limiter,
		DailySalt:    cfg.DailySalt,
		ClientOrigin: cfg.ClientOrigin,
	})

	log.Info().Str("port", cfg.Port).Int("cols", gameCfg.PiecesCols).Int("timeout", gameCfg.Timeout).
		Bool("journal", jr != nil).Bool("rateLimit", limiter.Enabled()).Msg("starting jigsaw server")
	errc := make(chan error, 1)
	go func() { errc <- srv.Start(":" + cfg.Port) }()
	select {
	case err := <-errc:
		log.Fatal().Err(err).Msg("server exited")
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}
}
