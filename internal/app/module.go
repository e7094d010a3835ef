package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"convsync/internal/backend"
	"convsync/internal/bus"
	"convsync/internal/config"
	"convsync/internal/conv"
	"convsync/internal/lock"
	"convsync/internal/logging"
	"convsync/internal/status"
	"convsync/internal/store"
	"convsync/internal/syncer"
)

// Params holds the resolved daemon configuration passed to the fx module.
type Params struct {
	Config *config.Config
	Once   bool // run a single reconcile and exit
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("convsyncd",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideMapper,
			provideBackendClient,
			provideSyncEngine,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(config.LogPath(p.Config.DataDir))
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := config.EnsureDirs(p.Config.DataDir); err != nil {
		return nil, err
	}
	logger.Info("acquiring data dir lock", zap.String("data_dir", p.Config.DataDir))
	l, err := lock.Acquire(p.Config.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("data dir lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := config.DBPath(p.Config.DataDir)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideMapper(logger *zap.Logger) *conv.Mapper {
	return conv.NewMapper(logger)
}

func provideBackendClient(p Params, logger *zap.Logger) (*backend.Client, error) {
	return backend.NewClient(p.Config.BackendURL, logger)
}

func provideSyncEngine(p Params, db *store.DB, b *bus.Bus, mapper *conv.Mapper, client *backend.Client, machine *status.Machine, logger *zap.Logger) *syncer.Engine {
	return syncer.NewEngine(db, b, mapper, client, machine, logger, p.Config.FetchInterval())
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, p Params, engine *syncer.Engine, machine *status.Machine, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if p.Once {
				if err := machine.Transition(status.Loading); err != nil {
					return err
				}
				go func() {
					if err := engine.Reconcile(context.Background()); err != nil {
						logger.Error("reconcile failed", zap.Error(err))
					}
					_ = shutdowner.Shutdown()
				}()
				return nil
			}
			return engine.Start(context.Background())
		},
		OnStop: func(_ context.Context) error {
			if !p.Once {
				engine.Stop()
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
