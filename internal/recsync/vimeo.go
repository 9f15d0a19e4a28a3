package recsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const (
	vimeoAccept  = "application/vnd.vimeo.*+json;version=3.4"
	tusResumable = "1.0.0"
)

// VimeoSink uploads videos with Vimeo's tus approach: create the video,
// PATCH the bytes to the returned upload link, then confirm the offset.
type VimeoSink struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewVimeoSink builds a sink from cfg.
func NewVimeoSink(cfg *Config) *VimeoSink {
	c := cfg.WithDefaults()
	return &VimeoSink{
		BaseURL: strings.TrimRight(c.VimeoAPIURL, "/"),
		Token:   c.VimeoToken,
		HTTP:    c.HTTPClient,
	}
}

type vimeoCreateRequest struct {
	Upload struct {
		Approach string `json:"approach"`
		Size     int64  `json:"size"`
	} `json:"upload"`
	Name string `json:"name"`
}

type vimeoCreateResponse struct {
	URI    string `json:"uri"`
	Upload struct {
		UploadLink string `json:"upload_link"`
	} `json:"upload"`
}

// Upload implements Sink and returns the video URI (e.g. /videos/123).
func (v *VimeoSink) Upload(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	created, err := v.create(ctx, name, size)
	if err != nil {
		return "", err
	}
	if err := v.patch(ctx, created.Upload.UploadLink, r, size); err != nil {
		return "", err
	}
	if err := v.verify(ctx, created.Upload.UploadLink, size); err != nil {
		return "", err
	}
	return created.URI, nil
}

func (v *VimeoSink) create(ctx context.Context, name string, size int64) (*vimeoCreateResponse, error) {
	var body vimeoCreateRequest
	body.Upload.Approach = "tus"
	body.Upload.Size = size
	body.Name = name
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.BaseURL+"/me/videos", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "bearer "+v.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", vimeoAccept)

	resp, err := v.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vimeo: create: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("vimeo: create returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out vimeoCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("vimeo: decode create: %w", err)
	}
	if out.URI == "" || out.Upload.UploadLink == "" {
		return nil, errors.New("vimeo: create response missing uri or upload link")
	}
	return &out, nil
}

func (v *VimeoSink) patch(ctx context.Context, link string, r io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, link, r)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Tus-Resumable", tusResumable)
	req.Header.Set("Upload-Offset", "0")
	req.Header.Set("Content-Type", "application/offset+octet-stream")

	resp, err := v.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("vimeo: upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("vimeo: upload returned status %d", resp.StatusCode)
	}
	return nil
}

func (v *VimeoSink) verify(ctx context.Context, link string, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Tus-Resumable", tusResumable)
	resp, err := v.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("vimeo: verify: %w", err)
	}
	resp.Body.Close()

	offset, err := strconv.ParseInt(resp.Header.Get("Upload-Offset"), 10, 64)
	if err != nil || offset != size {
		return fmt.Errorf("vimeo: incomplete upload: offset %q of %d", resp.Header.Get("Upload-Offset"), size)
	}
	return nil
}
