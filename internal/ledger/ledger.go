// Package ledger records which recordings have already been delivered, keyed
// by recording ID and indexed by content fingerprint.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// ErrDuplicateFingerprint is returned when content already recorded under one
// key is put under another.
var ErrDuplicateFingerprint = errors.New("ledger: duplicate fingerprint")

// Entry is one delivered item.
type Entry struct {
	Key            string `json:"-"`
	Fingerprint    string `json:"fingerprint"`
	DestinationRef string `json:"destination_reference"`
}

// UnmarshalJSON accepts both the current field names and the legacy
// vimeo_uri/file_md5 pair.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Fingerprint    string `json:"fingerprint"`
		DestinationRef string `json:"destination_reference"`
		FileMD5        string `json:"file_md5"`
		VimeoURI       string `json:"vimeo_uri"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Fingerprint = firstNonEmpty(raw.Fingerprint, raw.FileMD5)
	e.DestinationRef = firstNonEmpty(raw.DestinationRef, raw.VimeoURI)
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Ledger maps keys to entries and keeps a reverse fingerprint index.
// Safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]Entry
	byFP    map[string]string // fingerprint -> key
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		entries: make(map[string]Entry),
		byFP:    make(map[string]string),
	}
}

// FromMap builds a ledger from a decoded key→entry mapping. Keys are applied
// in sorted order; an entry whose fingerprint is already taken is kept
// without indexing that fingerprint, so a later Save does not lose it.
func FromMap(m map[string]Entry) *Ledger {
	l := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		e := m[k]
		e.Key = k
		err := l.Put(e)
		switch {
		case errors.Is(err, ErrDuplicateFingerprint):
			slog.Warn("ledger: fingerprint shared with another key, keeping entry unindexed",
				slog.String("key", k), slog.Any("error", err))
			l.mu.Lock()
			l.entries[k] = e
			l.mu.Unlock()
		case err != nil:
			slog.Warn("ledger: dropping entry", slog.String("key", k), slog.Any("error", err))
		}
	}
	return l
}

// Put records e, replacing any entry with the same key. It fails with
// ErrDuplicateFingerprint when another key already carries e's fingerprint.
func (l *Ledger) Put(e Entry) error {
	if strings.TrimSpace(e.Key) == "" {
		return errors.New("ledger: empty key")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if e.Fingerprint != "" {
		if owner, ok := l.byFP[e.Fingerprint]; ok && owner != e.Key {
			return fmt.Errorf("%w: %s already recorded under %s", ErrDuplicateFingerprint, e.Fingerprint, owner)
		}
	}
	if old, ok := l.entries[e.Key]; ok && old.Fingerprint != "" && l.byFP[old.Fingerprint] == e.Key {
		delete(l.byFP, old.Fingerprint)
	}
	l.entries[e.Key] = e
	if e.Fingerprint != "" {
		l.byFP[e.Fingerprint] = e.Key
	}
	return nil
}

// Get returns the entry stored under key.
func (l *Ledger) Get(key string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[key]
	return e, ok
}

// HasFingerprint reports whether any entry carries fp.
func (l *Ledger) HasFingerprint(fp string) bool {
	if fp == "" {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byFP[fp]
	return ok
}

// IsKnown reports whether key is recorded or fp belongs to any entry.
// Either match alone is enough.
func (l *Ledger) IsKnown(key, fp string) bool {
	_, byKey := l.Get(key)
	byFP := l.HasFingerprint(fp)
	return byKey || byFP
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns all entries sorted by key.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	l.mu.RUnlock()
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// Map returns a copy of the key→entry mapping.
func (l *Ledger) Map() map[string]Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]Entry, len(l.entries))
	for k, e := range l.entries {
		out[k] = e
	}
	return out
}

// Merge puts every entry of other. Re-merging the same entries is a no-op.
// Conflicting fingerprints are collected and returned; the other entries
// still apply.
func (l *Ledger) Merge(other *Ledger) error {
	var errs []error
	for _, e := range other.Entries() {
		if err := l.Put(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
