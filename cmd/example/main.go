package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskpoolio/taskpool/pkg/config"
	"github.com/taskpoolio/taskpool/pkg/inspector"
	"github.com/taskpoolio/taskpool/pkg/observability/otel"
	promobs "github.com/taskpoolio/taskpool/pkg/observability/prometheus"
	"github.com/taskpoolio/taskpool/pkg/pool"
)

// AppConfig is the demo application configuration, loadable from YAML/JSON
// with TASKPOOL_* environment overrides.
type AppConfig struct {
	Pool struct {
		Workers      int    `yaml:"workers" json:"workers"`
		PollInterval string `yaml:"poll_interval" json:"poll_interval"`
	} `yaml:"pool" json:"pool"`

	Inspector struct {
		Enabled bool   `yaml:"enabled" json:"enabled"`
		Addr    string `yaml:"addr" json:"addr"`
	} `yaml:"inspector" json:"inspector"`

	Tracing struct {
		Enabled      bool    `yaml:"enabled" json:"enabled"`
		Exporter     string  `yaml:"exporter" json:"exporter"`
		Endpoint     string  `yaml:"endpoint" json:"endpoint"`
		SamplingRate float64 `yaml:"sampling_rate" json:"sampling_rate"`
	} `yaml:"tracing" json:"tracing"`
}

func defaultAppConfig() AppConfig {
	var cfg AppConfig
	cfg.Pool.Workers = pool.DefaultWorkers
	cfg.Pool.PollInterval = "10ms"
	cfg.Inspector.Enabled = true
	cfg.Inspector.Addr = ":8090"
	cfg.Tracing.Exporter = "stdout"
	cfg.Tracing.SamplingRate = 1.0
	return cfg
}

func loadConfig(path string) (AppConfig, error) {
	cfg := defaultAppConfig()

	if _, err := os.Stat(path); err == nil {
		if err := config.LoadWithEnv(path, "TASKPOOL", &cfg); err != nil {
			return cfg, err
		}
	} else if err := config.ApplyEnvOverrides("TASKPOOL", &cfg); err != nil {
		return cfg, err
	}

	err := config.Validate(&cfg,
		config.RangeValidator("Pool.Workers", 1, 1024),
		config.OneOfValidator("Tracing.Exporter", "stdout", "zipkin"),
	)
	return cfg, err
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pollInterval, err := time.ParseDuration(cfg.Pool.PollInterval)
	if err != nil {
		log.Fatalf("config: invalid pool.poll_interval: %v", err)
	}

	poolCfg := pool.Config{
		Workers:      cfg.Pool.Workers,
		PollInterval: pollInterval,
		Logger:       pool.NewDefaultLogger(),
	}

	if cfg.Tracing.Enabled {
		err := otel.Initialize(context.Background(), otel.Config{
			ServiceName:  "taskpool-example",
			Exporter:     cfg.Tracing.Exporter,
			Endpoint:     cfg.Tracing.Endpoint,
			SamplingRate: cfg.Tracing.SamplingRate,
		})
		if err != nil {
			log.Fatalf("tracing: %v", err)
		}
		defer otel.Shutdown(context.Background()) //nolint:errcheck
		poolCfg.Wrap = otel.TaskMiddleware()
	}

	p, err := pool.New(poolCfg)
	if err != nil {
		log.Fatalf("pool: %v", err)
	}

	if err := promobs.Register(p); err != nil {
		log.Fatalf("metrics: %v", err)
	}

	var insp *inspector.Inspector
	if cfg.Inspector.Enabled {
		insp = inspector.New(cfg.Inspector.Addr, p, promobs.DefaultRegistry)
		if err := insp.Start(); err != nil {
			log.Fatalf("inspector: %v", err)
		}
		log.Printf("inspector listening on %s (/status, /metrics)", insp.Addr())
	}

	log.Printf("pool running with %d workers", p.Workers())

	// Feed the pool with demo work until interrupted.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	batch := 0
feed:
	for {
		select {
		case <-stop:
			break feed
		case <-ticker.C:
			batch++
			for i := 0; i < 4; i++ {
				n := batch*10 + i
				task := pool.NewNamedTask(fmt.Sprintf("demo-%d", n), pool.TaskFunc(func() error {
					time.Sleep(50 * time.Millisecond)
					if n%7 == 0 {
						return errors.New("simulated failure")
					}
					return nil
				}))
				if err := p.Submit(task); err != nil {
					log.Printf("submit: %v", err)
				}
			}
			stats := p.Stats()
			log.Printf("submitted=%d completed=%d faults=%d queue=%d busy=%d",
				stats.Submitted, stats.Completed, stats.Faults, stats.QueueDepth, stats.BusyWorkers)
		}
	}

	log.Println("draining pool...")
	if insp != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		insp.Stop(ctx) //nolint:errcheck
		cancel()
	}
	if err := p.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}

	stats := p.Stats()
	log.Printf("done: %d submitted, %d completed, %d faults", stats.Submitted, stats.Completed, stats.Faults)
}
