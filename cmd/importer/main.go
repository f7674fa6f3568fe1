package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"villa_rates/internal/adapters/admin"
	"villa_rates/internal/adapters/observability"
	redisad "villa_rates/internal/adapters/redis"
	"villa_rates/internal/app"
	"villa_rates/internal/shared"
	mysqlrepo "villa_rates/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("base", cfg.AdminBase).
		Int("workers", cfg.Workers).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := admin.New(cfg.AdminBase, cfg.AdminKey, cfg.AdminRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize admin client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	imp := app.NewImportService(client, repo, cache)
	batch := imp.NewBatch()

	// 2) rooms fan out under a bounded semaphore
	rooms, err := imp.FetchRooms(ctx, batch)
	if err != nil {
		log.Fatal().Err(err).Str("reason", observability.LabelErr(err)).Msg("room fetch failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var failed atomic.Int32

	for _, r := range rooms {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Error().Err(err).Msg("semaphore acquire failed")
			break
		}

		r := r // per-iteration copy; go directive is 1.21 (pre-1.22 loopvar semantics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if err := imp.ImportRoom(ctx, batch, r); err != nil {
				failed.Add(1)
				log.Warn().Str("room", r.ID).Str("reason", observability.LabelErr(err)).Err(err).Msg("room import failed")
				return
			}
			log.Debug().Str("room", r.ID).Msg("room import ok")
		}()
	}
	wg.Wait()
	imp.FinishRooms(ctx)
	log.Info().Int("rooms", len(rooms)).Int32("failed", failed.Load()).Str("batch", batch).Msg("rooms imported")

	// 3) configuration bundle, all or nothing
	if err := imp.ImportConfig(ctx, batch); err != nil {
		log.Error().Err(err).Str("reason", observability.LabelErr(err)).Msg("configuration import failed")
		os.Exit(1)
	}
	log.Info().Str("batch", batch).Msg("import completed")
}
