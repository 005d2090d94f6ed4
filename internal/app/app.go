package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lcalzada-xor/wifitrack/internal/adapters/platform"
	"github.com/lcalzada-xor/wifitrack/internal/adapters/presentation"
	"github.com/lcalzada-xor/wifitrack/internal/adapters/storage"
	"github.com/lcalzada-xor/wifitrack/internal/adapters/web"
	"github.com/lcalzada-xor/wifitrack/internal/config"
	"github.com/lcalzada-xor/wifitrack/internal/core/services/persistence"
	"github.com/lcalzada-xor/wifitrack/internal/core/services/tracker"
	"github.com/lcalzada-xor/wifitrack/internal/telemetry"
)

// Application holds the core components and acts as the facade wiring
// platform, tracker, storage and servers together.
type Application struct {
	Config             *config.Config
	Tracker            *tracker.Tracker
	WebServer          *web.Server
	Store              *storage.SQLiteStore
	PersistenceManager *persistence.Manager
	Simulator          *platform.Simulator
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	if err := app.initStorage(); err != nil {
		return err
	}

	if !app.Config.MockMode {
		// The only platform adapter shipped with this build is the
		// simulator; a native supplicant adapter plugs in through
		// ports.NetworkPlatform.
		return fmt.Errorf("no native platform adapter available, run with -mock")
	}
	app.Simulator = platform.NewSimulator(time.Now().UnixNano(), nil)

	app.Tracker = tracker.New(app.Simulator, presentation.New(),
		app.Config.MaxScanAge, app.Config.ScanInterval, nil)

	app.primeCountsFromStore()

	app.PersistenceManager = persistence.NewManager(app.Store, 5*time.Second)
	app.Tracker.SetConfigSink(app.PersistenceManager.Persist)

	app.WebServer = web.NewServer(app.Config.Addr, app.Tracker, app.Store)
	app.Tracker.SetListener(app.WebServer.WSManager)

	return nil
}

func (app *Application) initStorage() error {
	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteStore(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init config storage: %w", err)
	}
	app.Store = store
	return nil
}

// primeCountsFromStore seeds the published counts from the durable cache so
// the first snapshot readers see plausible numbers before the platform
// answers.
func (app *Application) primeCountsFromStore() {
	configs, err := app.Store.LoadStandardConfigs()
	if err != nil {
		log.Printf("Warning: could not load stored configs: %v", err)
		return
	}
	subs, err := app.Store.LoadPasspointConfigs()
	if err != nil {
		log.Printf("Warning: could not load stored subscriptions: %v", err)
		return
	}
	app.Tracker.PrimeCounts(len(configs), len(subs))
}

// Run starts the application components and manages their execution
// lifecycle.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting wifitrack components...")

	app.PersistenceManager.Start(ctx)
	app.Tracker.Start(ctx)

	go app.Simulator.Run(ctx, app.Tracker, app.Config.ScanInterval)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Web Server listening on %s", app.Config.Addr)
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	slog.Info("wifitrack ready. Press Ctrl+C to terminate.")

	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
		return nil
	case err := <-errChan:
		return err
	}
}
