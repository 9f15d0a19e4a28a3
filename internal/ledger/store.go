package ledger

import (
	"context"
	"strings"
)

// DefaultPath is the ledger file used when no DSN is configured. The name
// matches existing mapping files so they keep loading.
const DefaultPath = "zoom_vimeo_mapping.json"

// Store persists a whole ledger. Load of an absent store yields an empty
// ledger; Save replaces the stored mapping entirely.
type Store interface {
	Load(ctx context.Context) (*Ledger, error)
	Save(ctx context.Context, l *Ledger) error
	Close() error
}

// OpenStore picks a backend from dsn:
//
//	postgres://... or postgresql://...  PostgresStore
//	sqlite://path, *.db, *.sqlite       SQLiteStore
//	anything else                        FileStore (JSON)
func OpenStore(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "":
		return NewFileStore(DefaultPath), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgresStore(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		return OpenSQLiteStore(strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return OpenSQLiteStore(dsn)
	default:
		return NewFileStore(dsn), nil
	}
}
