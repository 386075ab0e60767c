// Command bench runs a synthetic Zipf workload against the capped cache and
// exposes optional pprof/Prometheus endpoints.
//
// Defaults come from CAPPED_* environment variables (and an optional .env
// file); flags override them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/cappedcache/cache"
	pmet "github.com/IvanBrykalov/cappedcache/metrics/prom"
)

// config holds the tunables; env tags give the defaults.
type config struct {
	Capacity int `env:"CAPACITY" envDefault:"1000"`
	Retain   int `env:"RETAIN" envDefault:"100"`

	Workers      int           `env:"WORKERS" envDefault:"8"`
	Duration     time.Duration `env:"DURATION" envDefault:"10s"`
	ProduceDelay time.Duration `env:"PRODUCE_DELAY" envDefault:"0s"`

	Keys  int     `env:"KEYS" envDefault:"100000"`
	ZipfS float64 `env:"ZIPF_S" envDefault:"1.1"`
	ZipfV float64 `env:"ZIPF_V" envDefault:"1.0"`
	Seed  int64   `env:"SEED"`

	PprofAddr   string `env:"PPROF_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func loadConfig(args []string) (config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "CAPPED_"}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.IntVar(&cfg.Capacity, "cap", cfg.Capacity, "entry count that triggers a sweep")
	fs.IntVar(&cfg.Retain, "retain", cfg.Retain, "entries kept by a sweep (< cap)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of worker goroutines")
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "benchmark duration")
	fs.DurationVar(&cfg.ProduceDelay, "produce_delay", cfg.ProduceDelay, "simulated producer latency on miss")
	fs.IntVar(&cfg.Keys, "keys", cfg.Keys, "keyspace size")
	fs.Float64Var(&cfg.ZipfS, "zipf_s", cfg.ZipfS, "Zipf s > 1 (skew)")
	fs.Float64Var(&cfg.ZipfV, "zipf_v", cfg.ZipfV, "Zipf v")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.StringVar(&cfg.PprofAddr, "pprof", cfg.PprofAddr, "serve pprof at addr (e.g. :6060); empty = disabled")
	fs.StringVar(&cfg.MetricsAddr, "http", cfg.MetricsAddr, "serve Prometheus metrics at addr; empty = disabled")
	fs.StringVar(&cfg.LogLevel, "log_level", cfg.LogLevel, "debug | info | warn | error")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Keys < 2 {
		return cfg, errors.New("keys must be >= 2")
	}
	if cfg.ZipfS <= 1 {
		return cfg, fmt.Errorf("zipf_s must be > 1, got %v", cfg.ZipfS)
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(2)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("bench failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log *slog.Logger) error {
	// ---- pprof server (on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go func() {
			log.Info("pprof: serving", slog.String("addr", cfg.PprofAddr))
			log.Warn("pprof stopped", slog.Any("error", http.ListenAndServe(cfg.PprofAddr, nil)))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "cappedcache", "bench", nil)
	if cfg.MetricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info("metrics: serving", slog.String("addr", cfg.MetricsAddr))
			log.Warn("metrics stopped", slog.Any("error", http.ListenAndServe(cfg.MetricsAddr, nil)))
		}()
	}

	// ---- Build cache ----
	c, err := cache.New[string, string](cache.Options[string, string]{
		Capacity: cfg.Capacity,
		Retain:   cfg.Retain,
		Metrics:  metrics,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	// ---- Load generation ----
	var total, produced uint64
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	keysMax := uint64(cfg.Keys - 1)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(cfg.Seed + int64(w)*9973))
			zipf := rand.NewZipf(r, cfg.ZipfS, cfg.ZipfV, keysMax)

			for gctx.Err() == nil {
				k := "k:" + strconv.FormatUint(zipf.Uint64(), 10)
				c.Fetch(k, func() string {
					atomic.AddUint64(&produced, 1)
					if cfg.ProduceDelay > 0 {
						time.Sleep(cfg.ProduceDelay)
					}
					return "v:" + k
				})
				atomic.AddUint64(&total, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	st := c.Stats()
	hitRate := 0.0
	if ops > 0 {
		hitRate = float64(st.Hits) / float64(ops) * 100
	}

	fmt.Printf("cap=%d retain=%d workers=%d keys=%d dur=%v seed=%d\n",
		cfg.Capacity, cfg.Retain, cfg.Workers, cfg.Keys, elapsed, cfg.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  produced=%d\n",
		ops, float64(ops)/elapsed.Seconds(), atomic.LoadUint64(&produced))
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", st.Hits, st.Misses, hitRate)
	fmt.Printf("sweeps=%d  evictions=%d  Len()=%d\n", st.Sweeps, st.Evictions, c.Len())
	log.Debug("top entries", slog.String("cache", c.Describe()))
	return nil
}
