package e2e

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"upscaled/internal/httpapi"
	"upscaled/internal/manager"
	"upscaled/internal/registry"
	"upscaled/internal/scratch"
)

type stack struct {
	srv       *httptest.Server
	mgr       *manager.Manager
	store     *scratch.Store
	modelPath string
}

// newStack wires a real manager with the in-process resample backend behind
// the real HTTP mux. The default weights file and one extra x2 model exist.
func newStack(t *testing.T, mut func(*manager.ManagerConfig)) *stack {
	t.Helper()
	modelsDir := t.TempDir()
	modelPath := filepath.Join(modelsDir, "RealESRGAN_x4plus.pth")
	for _, n := range []string{"RealESRGAN_x4plus.pth", "RealESRGAN_x2plus.pth"} {
		if err := os.WriteFile(filepath.Join(modelsDir, n), []byte("weights"), 0o644); err != nil {
			t.Fatalf("write model: %v", err)
		}
	}
	models, err := registry.LoadDir(modelsDir)
	if err != nil {
		t.Fatalf("load models: %v", err)
	}
	work := t.TempDir()
	store, err := scratch.New(filepath.Join(work, "uploads"), filepath.Join(work, "outputs"))
	if err != nil {
		t.Fatalf("scratch: %v", err)
	}
	cfg := manager.ManagerConfig{
		Upscaler:  manager.NewResampleUpscaler(4),
		Scratch:   store,
		ModelPath: modelPath,
		Registry:  models,
		Backend:   "resample",
		Scale:     4,
	}
	if mut != nil {
		mut(&cfg)
	}
	mgr, err := manager.NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(func() {
		srv.Close()
		_ = mgr.Close()
	})
	return &stack{srv: srv, mgr: mgr, store: store, modelPath: cfg.ModelPath}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

// upload posts a multipart form with an optional model field before the file.
func upload(t *testing.T, url, filename, contentType string, data []byte, model string) (*http.Response, []byte) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if model != "" {
		if err := mw.WriteField("model", model); err != nil {
			t.Fatal(err)
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url+"/upscale/", &body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func decodeBounds(t *testing.T, b []byte) image.Rectangle {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return img.Bounds()
}

// waitScratchEmpty polls until cleanup has removed every scratch file.
func waitScratchEmpty(t *testing.T, s *scratch.Store) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		n, err := s.Count()
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("scratch still holds %d files", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// gatedUpscaler blocks every call until release is closed.
type gatedUpscaler struct {
	inner   manager.Upscaler
	started chan struct{}
	release chan struct{}
}

func (g *gatedUpscaler) Upscale(ctx context.Context, in, out, model string, scale int) error {
	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.inner.Upscale(ctx, in, out, model, scale)
}
