package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/config"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository/memory"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository/postgres"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/metrics"
)

// Stores bundles the record store implementations chosen by configuration.
type Stores struct {
	Beds     repository.BedRepository
	Patients repository.PatientRepository
	Accounts repository.AccountRepository

	ping  func(ctx context.Context) error
	close func() error
}

func (s *Stores) Ping(ctx context.Context) error { return s.ping(ctx) }

func (s *Stores) Close() error { return s.close() }

// OpenStores connects to the configured database driver. The memory driver
// keeps everything in process and loses it on exit.
func OpenStores(ctx context.Context, cfg config.DatabaseConfig, m *metrics.Metrics, logger zerolog.Logger) (*Stores, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		logger.Warn().Msg("using in-memory record store; data is not persisted")
		store := memory.NewStore()
		return &Stores{
			Beds:     store.Beds(),
			Patients: store.Patients(),
			Accounts: store.Accounts(),
			ping:     func(context.Context) error { return nil },
			close:    func() error { return nil },
		}, nil

	case "postgres", "":
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		base := postgres.NewBaseRepository(db, m)
		if cfg.AutoMigrate {
			if err := base.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to apply schema: %w", err)
			}
			logger.Info().Msg("database schema ensured")
		}
		return &Stores{
			Beds:     postgres.NewBedRepository(base),
			Patients: postgres.NewPatientRepository(base),
			Accounts: postgres.NewAccountRepository(base),
			ping:     db.PingContext,
			close:    db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
