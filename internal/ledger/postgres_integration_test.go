//go:build integration

package ledger

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires LEDGER_TEST_DSN=postgres://... pointing at a disposable database.
func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("LEDGER_TEST_DSN")
	if dsn == "" {
		t.Skip("LEDGER_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := OpenStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()
	require.IsType(t, &PostgresStore{}, store)

	l := New()
	require.NoError(t, l.Put(Entry{Key: "111", Fingerprint: Fingerprint([]byte("a")), DestinationRef: "/videos/1"}))
	require.NoError(t, l.Put(Entry{Key: "222", Fingerprint: Fingerprint([]byte("b")), DestinationRef: "/videos/2"}))
	require.NoError(t, store.Save(ctx, l))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, l.Map(), got.Map())

	smaller := New()
	require.NoError(t, smaller.Put(Entry{Key: "333", Fingerprint: "f3"}))
	require.NoError(t, store.Save(ctx, smaller))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller.Map(), got.Map())
}
