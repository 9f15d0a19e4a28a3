// Package recsync copies finished meeting recordings to a video host,
// skipping anything the ledger already knows by ID or content.
package recsync

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go_harvest/internal/engine"
)

// StatusCompleted is the only recording file status that is synced.
const StatusCompleted = "completed"

// FlexID decodes an identifier sent either as a JSON number or a string.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

// Recording is one meeting with its recorded files.
type Recording struct {
	ID        FlexID          `json:"id"`
	UUID      string          `json:"uuid"`
	Topic     string          `json:"topic"`
	StartTime string          `json:"start_time"`
	Files     []RecordingFile `json:"recording_files"`
}

// RecordingFile is one downloadable artifact of a recording.
type RecordingFile struct {
	ID          FlexID `json:"id"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
	Status      string `json:"status"`
	DownloadURL string `json:"download_url"`
}

// Source lists recordings and downloads their files.
type Source interface {
	ListRecordings(ctx context.Context) ([]Recording, error)
	Download(ctx context.Context, url string, w io.Writer) error
}

// Sink uploads a file and returns its destination reference.
type Sink interface {
	Upload(ctx context.Context, name string, r io.Reader, size int64) (string, error)
}

// Defaults for zero-valued Config fields.
const (
	DefaultZoomAPIURL  = "https://api.zoom.us/v2"
	DefaultVimeoAPIURL = "https://api.vimeo.com"
	DefaultSchedule    = "@every 1h"
)

// Config holds the sync job settings.
type Config struct {
	ZoomAPIURL  string
	ZoomToken   string
	ZoomUserID  string
	VimeoAPIURL string
	VimeoToken  string
	LedgerDSN   string
	Schedule    string
	TmpDir      string
	HTTPClient  *http.Client
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.ZoomAPIURL == "" {
		c.ZoomAPIURL = DefaultZoomAPIURL
	}
	if c.VimeoAPIURL == "" {
		c.VimeoAPIURL = DefaultVimeoAPIURL
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.HTTPClient == nil {
		// Recordings can be large; only the dial and headers are bounded.
		c.HTTPClient = &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 60 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
		}}
	}
	return c
}

// Validate reports missing credentials.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ZoomToken) == "" {
		missing = append(missing, "ZOOM_TOKEN")
	}
	if strings.TrimSpace(c.ZoomUserID) == "" {
		missing = append(missing, "ZOOM_USER_ID")
	}
	if strings.TrimSpace(c.VimeoToken) == "" {
		missing = append(missing, "VIMEO_ACCESS_TOKEN")
	}
	if len(missing) > 0 {
		return &engine.ConfigError{Component: "sync", Missing: missing}
	}
	return nil
}
