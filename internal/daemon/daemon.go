package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diabetree-app/diabetree/internal/api"
	"github.com/diabetree-app/diabetree/internal/app/engine"
	"github.com/diabetree-app/diabetree/internal/app/notify"
	"github.com/diabetree-app/diabetree/internal/app/progression"
	"github.com/diabetree-app/diabetree/internal/app/wallet"
	"github.com/diabetree-app/diabetree/internal/domain"
	"github.com/diabetree-app/diabetree/internal/health"
	_ "github.com/diabetree-app/diabetree/internal/infra/metrics" // register Prometheus metrics
	"github.com/diabetree-app/diabetree/internal/infra/sqlite"
)

// Daemon is the core Diabetree runtime. It wires together all services.
type Daemon struct {
	Config        Config
	DB            *sqlite.DB
	Wallet        *wallet.Service
	Notifications *notify.Service
	Engine        *engine.Engine
	Server        *api.Server
	Health        *health.Checker
	cancel        context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New(version string) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg, version)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config, version string) (*Daemon, error) {
	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = diabetreeHome()
	}

	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	tr := domain.TargetRange{Min: cfg.Profile.TargetMin, Max: cfg.Profile.TargetMax}
	if tr.Min <= 0 || tr.Max <= tr.Min {
		tr = domain.DefaultTargetRange()
	}

	achievements, err := progression.NewAchievementEvaluator(progression.DefaultAchievements())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("achievement catalog: %w", err)
	}
	missions, err := progression.NewMissionRotator(
		progression.DefaultMissions(tr), progression.DefaultMissionReward)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mission catalog: %w", err)
	}

	w := wallet.NewService(db)
	sink := notify.NewService(db)

	eng := engine.New(db, db, w, sink, achievements, missions, engine.Params{
		Range:   tr,
		Window:  cfg.Profile.Window(),
		Spacing: cfg.Profile.Spacing(),
	}, nil)

	checker := health.NewChecker(db, dataDir)

	srv := api.NewServer(cfg.Profile.Owner, eng, db, sink, achievements, missions, checker, version)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:        cfg,
		DB:            db,
		Wallet:        w,
		Notifications: sink,
		Engine:        eng,
		Server:        srv,
		Health:        checker,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[daemon] shutdown: %v", err)
		}
		_ = d.DB.Close()
	}()

	fmt.Printf("Diabetree serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
