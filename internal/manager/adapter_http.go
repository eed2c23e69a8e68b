package manager

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// HTTPUpscaler forwards the image to a remote inference service as a
// multipart form (file, scale, model) and stores the response body.
type HTTPUpscaler struct {
	url    string
	scale  int
	client *http.Client
}

// NewHTTPUpscaler builds an HTTPUpscaler. A nil client uses one without a
// global timeout; callers bound requests with the context.
func NewHTTPUpscaler(url string, scale int, client *http.Client) *HTTPUpscaler {
	if client == nil {
		client = &http.Client{Timeout: 0}
	}
	if scale <= 0 {
		scale = defaultScale
	}
	return &HTTPUpscaler{url: url, scale: scale, client: client}
}

// Check reports the service unavailable when it cannot be reached at all.
// Any HTTP response counts as reachable.
func (u *HTTPUpscaler) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, nil)
	if err != nil {
		return err
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return ErrDependencyUnavailable(fmt.Sprintf("upscaler service unreachable: %v", err))
	}
	_ = resp.Body.Close()
	return nil
}

func (u *HTTPUpscaler) Upscale(ctx context.Context, inputPath, outputPath, modelPath string, scale int) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpscaleForm(mw, in, filepath.Base(inputPath), pickScale(scale, u.scale), filepath.Base(modelPath)))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, pr)
	if err != nil {
		_ = pr.Close()
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := u.client.Do(req)
	if err != nil {
		_ = pr.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrDependencyUnavailable(fmt.Sprintf("upscaler service unreachable: %v", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upscaler http error: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(outputPath)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("read upscaler response: %w", err)
	}
	return out.Close()
}

func writeUpscaleForm(mw *multipart.Writer, img io.Reader, name string, scale int, model string) error {
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, img); err != nil {
		return err
	}
	if err := mw.WriteField("scale", strconv.Itoa(scale)); err != nil {
		return err
	}
	if err := mw.WriteField("model", model); err != nil {
		return err
	}
	return mw.Close()
}
