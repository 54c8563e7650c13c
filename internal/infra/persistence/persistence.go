// Package persistence selects the repository backend named in config.
package persistence

import (
	"log/slog"

	"safeguard/config"
	"safeguard/internal/domain/constants"
	"safeguard/internal/domain/repository"
	"safeguard/internal/errors"
	"safeguard/internal/infra/persistence/memory"
	"safeguard/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params defines the dependencies of the repository set.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Repositories is the repository set provided to use cases.
type Repositories struct {
	fx.Out

	LiveLocations      repository.LiveLocationRepository
	TrackedLocations   repository.TrackedLocationRepository
	Contacts           repository.ContactRepository
	TransactionManager repository.TransactionManager
}

// New builds the repositories for the configured storage driver.
func New(params Params) (Repositories, error) {
	switch params.Config.Storage.Driver {
	case constants.StorageDriverMemory:
		params.Logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()

		return Repositories{
			LiveLocations:      store.LiveLocations(),
			TrackedLocations:   store.TrackedLocations(),
			Contacts:           store.Contacts(),
			TransactionManager: store.TransactionManager(),
		}, nil

	case constants.StorageDriverPostgres:
		if params.Config.Postgres == nil {
			return Repositories{}, errors.New("postgres config is required for postgres storage")
		}
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return Repositories{}, err
		}

		return Repositories{
			LiveLocations:      postgres.NewLiveLocationRepository(db),
			TrackedLocations:   postgres.NewTrackedLocationRepository(db),
			Contacts:           postgres.NewContactRepository(db),
			TransactionManager: postgres.NewTransactionManager(db),
		}, nil

	default:
		return Repositories{}, errors.Errorf("unknown storage driver: %s", params.Config.Storage.Driver)
	}
}
