package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-engine/internal/broadcast"
	appcfg "github.com/park285/cheese-engine/internal/config"
	"github.com/park285/cheese-engine/internal/journal"
	"github.com/park285/cheese-engine/internal/obslog"
	"github.com/park285/cheese-engine/internal/probe"
	"github.com/park285/cheese-engine/internal/tune"
	"github.com/park285/cheese-engine/internal/uci"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if err := obslog.InitFromEnv(); err != nil {
		log.Printf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Printf("config error: %v", err)
		return 1
	}

	if len(args) > 1 && strings.Contains(args[1], "bench") {
		return runBench(cfg, args[2:], os.Stdout)
	}
	if tuneEnabled && len(args) > 1 && strings.Contains(args[1], "tune") {
		return runTune(args[2:])
	}

	var opts []uci.EngineOption
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var cache *probe.Cache
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		cache, err = probe.DialCache(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Warn("probe_cache_unavailable", zap.Error(err))
			cache = nil
		} else {
			closers = append(closers, func() { _ = cache.Close() })
		}
	}
	timeout := time.Duration(cfg.ProbeTimeoutMS) * time.Millisecond
	opts = append(opts, uci.WithProber(probe.New(cfg.NoobBookURL, cfg.OnlineSyzygyURL, cache, probe.WithTimeout(timeout))))

	if cfg.DatabaseURL != "" {
		j, err := journal.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("journal_unavailable", zap.Error(err))
		} else {
			opts = append(opts, uci.WithJournal(j))
			closers = append(closers, func() { _ = j.Close() })
		}
	}

	if cfg.InfoWSURL != "" {
		mirror := broadcast.New(cfg.InfoWSURL)
		opts = append(opts, uci.WithTap(mirror.Publish))
		closers = append(closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = mirror.Close(ctx)
		})
	}

	engine := uci.New(cfg, os.Stdout, opts...)
	defer engine.Close()

	if cfg.TuneProfile != "" {
		settings, err := tune.LoadProfile(cfg.TuneProfile)
		if err != nil {
			logger.Warn("tune_profile_unreadable", zap.String("path", cfg.TuneProfile), zap.Error(err))
		} else if unknown := engine.Registry().ApplyProfile(settings); len(unknown) > 0 {
			logger.Warn("tune_profile_unknown_options", zap.Strings("names", unknown))
		}
	}

	logger.Info("engine_start",
		zap.String("name", cfg.EngineName),
		zap.Int("hash_mb", cfg.HashMB),
		zap.Int("threads", cfg.Threads),
	)
	if err := engine.Loop(os.Stdin); err != nil {
		logger.Error("input_error", zap.Error(err))
		return 1
	}
	return 0
}
