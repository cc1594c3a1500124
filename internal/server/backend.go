package server

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"diario/internal/accounts"
	"diario/internal/config"
	"diario/internal/crypto"
	"diario/internal/db"
	"diario/internal/hosted"
	"diario/internal/records"
	"diario/internal/services"
	"diario/internal/session"
	"diario/internal/store"
)

// Backend is the storage stack selected by configuration.
type Backend struct {
	DB       *sqlx.DB // nil for the memory driver
	KV       store.KV
	Accounts accounts.Accounts
	Records  *records.Store
	Sessions *session.Manager
}

// NewBackend opens the database, applies migrations and wires the stores.
// With STORAGE_BACKEND=hosted, accounts and journal entries live in their
// own tables and everything else in kv_records.
func NewBackend(cfg *config.Config, log *zap.Logger) (*Backend, error) {
	b := &Backend{}
	if cfg.DBDriver == "memory" {
		b.KV = store.NewMemory()
	} else {
		conn, err := db.Open(cfg.DBDriver, cfg.DBConnection, log)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(conn, log); err != nil {
			conn.Close()
			return nil, err
		}
		b.DB = conn
		b.KV = store.NewSQL(conn)
	}

	if cfg.Encrypted() {
		c, err := crypto.NewCipher(cfg.EncryptionKey, cfg.BlindIndexKey)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("cipher: %w", err)
		}
		b.KV = store.NewSealed(b.KV, c)
	}

	var opts []records.Option
	if cfg.StorageBackend == config.BackendHosted {
		encSvc, err := services.NewEncryptionService(cfg.EncryptionKey, cfg.BlindIndexKey)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("encryption service: %w", err)
		}
		b.Accounts = hosted.NewAccounts(b.DB, encSvc, log)
		opts = append(opts, records.WithEntries(hosted.NewEntries(b.DB, encSvc)))
	} else {
		b.Accounts = accounts.NewLocal(b.KV, log)
	}
	b.Records = records.NewStore(b.KV, log, opts...)
	b.Sessions = session.NewManager(b.KV, []byte(cfg.JWTSecret), cfg.JWTExpiry, log)

	log.Info("storage ready",
		zap.String("backend", cfg.StorageBackend),
		zap.String("driver", cfg.DBDriver),
		zap.Bool("encrypted", cfg.Encrypted()),
	)
	return b, nil
}

// Ping reports whether the database answers.
func (b *Backend) Ping(ctx context.Context) error {
	if b.DB == nil {
		return nil
	}
	return b.DB.PingContext(ctx)
}

func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}
