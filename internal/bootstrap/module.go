package bootstrap

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"bountyvault/internal/bootstrap/config"
	"bountyvault/internal/bootstrap/database"
	"bountyvault/internal/bootstrap/logging"
	cacheinfra "bountyvault/internal/infrastructure/cache"
	custodyinfra "bountyvault/internal/infrastructure/custody"
	"bountyvault/internal/infrastructure/messaging"
	sqliterepo "bountyvault/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "bountyvault/internal/infrastructure/persistence/sqlite/uow"
	"bountyvault/internal/infrastructure/stream"
	"bountyvault/internal/ports"
	"bountyvault/internal/usecase/bounty"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewLedgerRepository,
			fx.As(new(ports.LedgerRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewLedgerCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideCustody,
			fx.As(new(ports.Custody)),
		),
	),
	fx.Provide(stream.NewHub),
	fx.Provide(providePublisher),
	fx.Provide(provideServiceOptions),
	fx.Provide(bounty.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithComponent(p.Ctx, "bootstrap.fx")
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideCustody(db *gorm.DB, cfg config.Config) *custodyinfra.LedgerCustody {
	return custodyinfra.NewLedgerCustody(db, cfg.Ledger.AuthoritySalt)
}

// providePublisher always streams to websocket subscribers and adds NATS
// when enabled.
func providePublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config, hub *stream.Hub) (ports.EventPublisher, error) {
	fanOut := messaging.NewFanOut(hub)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			hub.Close()
			return nil
		},
	})

	if !cfg.NATS.Enabled {
		return fanOut, nil
	}

	publisher, err := messaging.ConnectNATS(ctx, cfg.NATS.URL, cfg.NATS.SubjectPrefix)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			publisher.Close()
			return nil
		},
	})
	fanOut.Add(publisher)
	return fanOut, nil
}

func provideServiceOptions(cfg config.Config) bounty.Options {
	return bounty.Options{EnforceSolvency: cfg.Ledger.EnforceSolvency, MintIssuer: cfg.Ledger.MintIssuer}
}
