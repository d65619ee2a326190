// Package main provides the complexity resolution API server.
package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"complexity-engine/api"
	"complexity-engine/db/clickhouse"
	"complexity-engine/internal/resolve"
	"complexity-engine/internal/solver"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg := api.DefaultConfig()
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	params := solver.DefaultParams()
	if eps := os.Getenv("RESOLVE_EPSILON"); eps != "" {
		v, err := strconv.ParseFloat(eps, 64)
		if err != nil {
			log.Fatal().Str("value", eps).Msg("RESOLVE_EPSILON is not a number")
		}
		params.Epsilon = v
	}

	var cache *clickhouse.Store
	if host := os.Getenv("CLICKHOUSE_HOST"); host != "" {
		chCfg := clickhouse.DefaultConfig()
		chCfg.Host = host
		if port := os.Getenv("CLICKHOUSE_PORT"); port != "" {
			p, err := strconv.Atoi(port)
			if err != nil {
				log.Fatal().Str("value", port).Msg("CLICKHOUSE_PORT is not a number")
			}
			chCfg.Port = p
		}
		if db := os.Getenv("CLICKHOUSE_DATABASE"); db != "" {
			chCfg.Database = db
		}
		chCfg.Username = envOr("CLICKHOUSE_USER", chCfg.Username)
		chCfg.Password = os.Getenv("CLICKHOUSE_PASSWORD")

		store, err := clickhouse.NewStore(chCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to result cache")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare cache schema")
		}
		cache = store
		defer cache.Close()
	}

	engine := resolve.NewEngine(params)
	server := api.NewServer(engine, cache, cfg)

	log.Info().
		Float64("epsilon", params.Epsilon).
		Int("base_threshold", params.BaseThreshold).
		Msg("Resolution parameters loaded")

	if err := server.StartWithGracefulShutdown(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
