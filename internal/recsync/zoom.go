package recsync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_harvest/internal/engine"
)

// ZoomSource reads cloud recordings of one Zoom user.
type ZoomSource struct {
	BaseURL string
	Token   string
	UserID  string
	HTTP    *http.Client
}

// NewZoomSource builds a source from cfg.
func NewZoomSource(cfg *Config) *ZoomSource {
	c := cfg.WithDefaults()
	return &ZoomSource{
		BaseURL: strings.TrimRight(c.ZoomAPIURL, "/"),
		Token:   c.ZoomToken,
		UserID:  c.ZoomUserID,
		HTTP:    c.HTTPClient,
	}
}

type zoomRecordingsPage struct {
	Meetings      []Recording `json:"meetings"`
	NextPageToken string      `json:"next_page_token"`
}

func (z *ZoomSource) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+z.Token)
	req.Header.Set("User-Agent", engine.UserAgentBot)
	resp, err := z.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zoom: GET %s: %w", redactQuery(u), err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("zoom: GET %s returned status %d", redactQuery(u), resp.StatusCode)
	}
	return resp, nil
}

// ListRecordings returns every recording, following pagination.
func (z *ZoomSource) ListRecordings(ctx context.Context) ([]Recording, error) {
	var out []Recording
	token := ""
	for {
		u, err := url.Parse(z.BaseURL + "/users/" + url.PathEscape(z.UserID) + "/recordings")
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("page_size", "300")
		if token != "" {
			q.Set("next_page_token", token)
		}
		u.RawQuery = q.Encode()

		resp, err := z.get(ctx, u.String())
		if err != nil {
			return nil, err
		}
		var page zoomRecordingsPage
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("zoom: decode recordings: %w", err)
		}
		out = append(out, page.Meetings...)
		if page.NextPageToken == "" {
			return out, nil
		}
		token = page.NextPageToken
	}
}

// Download streams a recording file into w.
func (z *ZoomSource) Download(ctx context.Context, downloadURL string, w io.Writer) error {
	resp, err := z.get(ctx, downloadURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("zoom: download: %w", err)
	}
	return nil
}

// redactQuery drops the query string, which may carry download tokens.
func redactQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	return u.String()
}
