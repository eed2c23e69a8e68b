// Package client is a small Go client for the upscaled HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"upscaled/pkg/types"
)

// Client talks to one upscaled server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a Client for baseURL using http.DefaultClient.
func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: http.DefaultClient}
}

// APIError is a non-2xx response. Message comes from the JSON error body when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upscaled: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Image is an upscaled image being streamed from the server.
// Callers must close Body.
type Image struct {
	Body     io.ReadCloser
	Filename string
	Size     int64
}

// Upscale uploads the file at path. An empty model uses the server default.
func (c *Client) Upscale(ctx context.Context, path, model string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	ct, err := contentTypeFor(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer f.Close()
		pw.CloseWithError(writeForm(mw, f, filepath.Base(path), ct, model))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upscale/", pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	img := &Image{Body: resp.Body, Size: resp.ContentLength}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		img.Filename = filepath.Base(params["filename"])
	}
	return img, nil
}

// Status fetches GET /status.
func (c *Client) Status(ctx context.Context) (types.StatusResponse, error) {
	var out types.StatusResponse
	err := c.getJSON(ctx, "/status", &out)
	return out, err
}

// Models fetches GET /models.
func (c *Client) Models(ctx context.Context) ([]types.Model, error) {
	var out types.ModelsResponse
	if err := c.getJSON(ctx, "/models", &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

// Health checks GET /readyz. A not-ready server yields an *APIError carrying the reason.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/readyz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func decodeError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var e types.ErrorResponse
	if err := json.Unmarshal(b, &e); err == nil && e.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
}

// contentTypeFor picks the declared type from the extension, falling back to
// sniffing the first bytes. The file offset is restored.
func contentTypeFor(f *os.File, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	}
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

func writeForm(mw *multipart.Writer, r io.Reader, name, contentType, model string) error {
	if model != "" {
		// the server reads parts in order, so the model must precede the file
		if err := mw.WriteField("model", model); err != nil {
			return err
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}
