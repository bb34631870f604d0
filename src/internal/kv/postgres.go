package kv

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// PostgresBackend keeps every key in the kv_entries table. Only keys with the
// configured prefix are touched by Clear.
type PostgresBackend struct {
	db     *sql.DB
	log    *zap.Logger
	prefix string
}

func NewPostgresBackend(db *sql.DB, prefix string, logger *zap.Logger) *PostgresBackend {
	return &PostgresBackend{db: db, prefix: prefix, log: logger}
}

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.log.Debug("PostgresBackend.Get: start", zap.String("key", key))
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key=$1`, b.prefix+key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMissing
		}
		b.log.Error("PostgresBackend.Get: query failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return value, nil
}

func (b *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	b.log.Debug("PostgresBackend.Put: start", zap.String("key", key), zap.Int("bytes", len(value)))
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv_entries(key, value, updated_at) VALUES($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`,
		b.prefix+key, string(value))
	if err != nil {
		b.log.Error("PostgresBackend.Put: upsert failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

func (b *PostgresBackend) Clear(ctx context.Context) error {
	b.log.Debug("PostgresBackend.Clear: start", zap.String("prefix", b.prefix))
	res, err := b.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key LIKE $1`, escapeLike(b.prefix)+"%")
	if err != nil {
		b.log.Error("PostgresBackend.Clear: delete failed", zap.Error(err))
		return err
	}
	n, _ := res.RowsAffected()
	b.log.Info("PostgresBackend.Clear: success", zap.Int64("deleted", n))
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Migrate applies the embedded schema to the database behind dsn.
func Migrate(dsn string, sugar *zap.SugaredLogger) error {
	sugar.Info("running kv migrations")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("migration open db: %w", err)
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			sugar.Warnf("migration close: source=%v db=%v", srcErr, dbErr)
		}
	}()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		sugar.Info("no new migrations, already up to date")
	}
	return nil
}
