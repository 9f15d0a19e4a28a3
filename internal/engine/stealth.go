package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
)

// BrowserClient re-exports the stealth client for engine consumers.
type BrowserClient = stealth.BrowserClient

// NewBrowserClient creates a Chrome-fingerprinted client. A non-empty
// webshareKey routes requests through a Webshare proxy pool; pool failures
// fall back to direct connections.
func NewBrowserClient(webshareKey string) (*BrowserClient, error) {
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if webshareKey != "" {
		pool, err := proxypool.NewWebshare(webshareKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}
	return stealth.NewClient(opts...)
}

// FetchBytes GETs u through bc when set, otherwise through hc. Non-2xx
// statuses are errors.
func FetchBytes(ctx context.Context, hc *http.Client, bc *BrowserClient, u string, headers map[string]string) ([]byte, error) {
	if bc != nil {
		h := stealth.ChromeHeaders()
		for k, v := range headers {
			h[k] = v
		}
		data, _, status, err := bc.Do(http.MethodGet, u, h, nil)
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("GET %s: status %d", u, status)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgentChrome)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
