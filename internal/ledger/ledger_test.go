package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndIsKnown(t *testing.T) {
	l := New()
	require.NoError(t, l.Put(Entry{Key: "m1", Fingerprint: "aa", DestinationRef: "/videos/1"}))

	tests := []struct {
		name string
		key  string
		fp   string
		want bool
	}{
		{"key match", "m1", "zz", true},
		{"fingerprint match", "m2", "aa", true},
		{"both", "m1", "aa", true},
		{"neither", "m2", "bb", false},
		{"empty fingerprint", "m2", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.IsKnown(tt.key, tt.fp))
		})
	}
}

func TestPutDuplicateFingerprint(t *testing.T) {
	l := New()
	require.NoError(t, l.Put(Entry{Key: "m1", Fingerprint: "aa"}))

	err := l.Put(Entry{Key: "m2", Fingerprint: "aa"})
	require.ErrorIs(t, err, ErrDuplicateFingerprint)
	assert.Equal(t, 1, l.Len())

	// Same key, same fingerprint is an idempotent rewrite.
	require.NoError(t, l.Put(Entry{Key: "m1", Fingerprint: "aa", DestinationRef: "/v/1"}))
	e, ok := l.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "/v/1", e.DestinationRef)
}

func TestPutReplacesFingerprintIndex(t *testing.T) {
	l := New()
	require.NoError(t, l.Put(Entry{Key: "m1", Fingerprint: "aa"}))
	require.NoError(t, l.Put(Entry{Key: "m1", Fingerprint: "bb"}))
	assert.False(t, l.HasFingerprint("aa"))
	assert.True(t, l.HasFingerprint("bb"))
	require.NoError(t, l.Put(Entry{Key: "m2", Fingerprint: "aa"}))
}

func TestFromMapKeepsSharedFingerprint(t *testing.T) {
	l := FromMap(map[string]Entry{
		"m1": {Fingerprint: "aa", DestinationRef: "/videos/1"},
		"m2": {Fingerprint: "aa", DestinationRef: "/videos/2"},
	})
	require.Equal(t, 2, l.Len())
	assert.True(t, l.IsKnown("m2", ""))
	assert.True(t, l.HasFingerprint("aa"))

	// Re-recording the unindexed key must not drop m1's index entry.
	require.NoError(t, l.Put(Entry{Key: "m2", Fingerprint: "bb", DestinationRef: "/videos/2"}))
	assert.True(t, l.HasFingerprint("aa"))
	assert.True(t, l.HasFingerprint("bb"))

	path := filepath.Join(t.TempDir(), "ledger.json")
	store := &FileStore{Path: path}
	shared := FromMap(map[string]Entry{"m1": {Fingerprint: "aa"}, "m2": {Fingerprint: "aa"}})
	require.NoError(t, store.Save(context.Background(), shared))
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestPutEmptyKey(t *testing.T) {
	assert.Error(t, New().Put(Entry{Key: " "}))
}

func TestMerge(t *testing.T) {
	a := New()
	require.NoError(t, a.Put(Entry{Key: "m1", Fingerprint: "aa"}))
	b := New()
	require.NoError(t, b.Put(Entry{Key: "m2", Fingerprint: "bb"}))
	require.NoError(t, b.Put(Entry{Key: "m3", Fingerprint: "aa"}))

	err := a.Merge(b)
	require.ErrorIs(t, err, ErrDuplicateFingerprint)
	assert.Equal(t, 2, a.Len())

	require.NoError(t, a.Merge(a))
	assert.Equal(t, 2, a.Len())
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Fingerprint(nil))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", Fingerprint([]byte("hello")))

	fp, n, err := FingerprintReader(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, Fingerprint([]byte("hello")), fp)
	assert.Equal(t, int64(5), n)
}

func TestFileStoreMissingIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "none.json"))
	l, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
}

func TestFileStoreLegacyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	legacy := `{"123": {"vimeo_uri": "/videos/9", "file_md5": "abc"}, "456": {"destination_reference": "/videos/10", "fingerprint": "def"}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	l, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, l.Len())
	e, ok := l.Get("123")
	require.True(t, ok)
	assert.Equal(t, Entry{Key: "123", Fingerprint: "abc", DestinationRef: "/videos/9"}, e)
	assert.True(t, l.IsKnown("789", "def"))
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func sample(t *testing.T) *Ledger {
	t.Helper()
	l := New()
	require.NoError(t, l.Put(Entry{Key: "1", Fingerprint: "f1", DestinationRef: "/videos/1"}))
	require.NoError(t, l.Put(Entry{Key: "2", Fingerprint: "f2", DestinationRef: "/videos/2"}))
	require.NoError(t, l.Put(Entry{Key: "3", DestinationRef: "/videos/3"}))
	return l
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		dsn  string
	}{
		{"file", filepath.Join(dir, "ledger.json")},
		{"sqlite suffix", filepath.Join(dir, "ledger.db")},
		{"sqlite scheme", "sqlite://" + filepath.Join(dir, "nested", "l.sqlite")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := OpenStore(ctx, tt.dsn)
			require.NoError(t, err)
			defer s.Close()

			want := sample(t)
			require.NoError(t, s.Save(ctx, want))
			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want.Map(), got.Map())

			// A second save fully replaces the first.
			smaller := New()
			require.NoError(t, smaller.Put(Entry{Key: "9", Fingerprint: "f9"}))
			require.NoError(t, s.Save(ctx, smaller))
			got, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, smaller.Map(), got.Map())
		})
	}
}

func TestOpenStoreKinds(t *testing.T) {
	ctx := context.Background()
	s, err := OpenStore(ctx, "")
	require.NoError(t, err)
	fs, ok := s.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, DefaultPath, fs.Path)

	s, err = OpenStore(ctx, filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLiteStore{}, s)
}
