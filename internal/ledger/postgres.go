package ledger

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PostgresStore keeps the ledger in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgresStore creates a pgx pool and runs schema migrations.
func OpenPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("ledger: database URL is required")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse LEDGER_DSN: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("ledger postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Load reads every row.
func (s *PostgresStore) Load(ctx context.Context) (*Ledger, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, fingerprint, destination_ref FROM ledger_entries`)
	if err != nil {
		return nil, fmt.Errorf("ledger: query: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.Key, &e.Fingerprint, &e.DestinationRef)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: scan: %w", err)
	}
	m := make(map[string]Entry, len(list))
	for _, e := range list {
		m[e.Key] = e
	}
	return FromMap(m), nil
}

// Save replaces the table contents in one transaction.
func (s *PostgresStore) Save(ctx context.Context, l *Ledger) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_entries`); err != nil {
		return fmt.Errorf("ledger: clear: %w", err)
	}
	batch := &pgx.Batch{}
	for _, e := range l.Entries() {
		batch.Queue(`INSERT INTO ledger_entries (key, fingerprint, destination_ref) VALUES ($1, $2, $3)`,
			e.Key, e.Fingerprint, e.DestinationRef)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("ledger: insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
