package engine

import (
	"errors"
	"fmt"
	"strings"
)

var errEmptyTimestamp = errors.New("no timestamp")

// FetchError is a failed strategy or provider call. It is recovered locally:
// the strategy is skipped and the run continues.
type FetchError struct {
	Strategy string
	Query    string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %q (%s): %v", e.Strategy, e.Query, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is a malformed timestamp or content field. Callers fall back to
// a default value instead of failing.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SideEffectError is a failed external action on a non-duplicate item
// (download or upload). The item is skipped and the ledger left unchanged.
type SideEffectError struct {
	Action string
	Key    string
	Err    error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Action, e.Key, e.Err)
}

func (e *SideEffectError) Unwrap() error { return e.Err }

// ConfigError is a missing credential or collaborator detected at startup.
// It is not recoverable.
type ConfigError struct {
	Component string
	Missing   []string
	Reason    string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s config: %s", e.Component, e.Reason)
	}
	return fmt.Sprintf("%s config: missing %s", e.Component, strings.Join(e.Missing, ", "))
}
