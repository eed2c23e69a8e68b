package manager

import (
	"context"
	"image/color"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"upscaled/internal/scratch"
)

// writePNG writes a solid w x h PNG and returns its path.
func writePNG(t *testing.T, path string, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save png: %v", err)
	}
	return path
}

// createModelFile writes a small stand-in weights file.
func createModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("weights"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return p
}

// fakeUpscaler delegates to fn and counts calls. A nil fn copies the input.
type fakeUpscaler struct {
	fn        func(ctx context.Context, in, out, model string) error
	calls     atomic.Int32
	lastModel atomic.Value
	lastScale atomic.Int32
}

func (f *fakeUpscaler) Upscale(ctx context.Context, in, out, model string, scale int) error {
	f.calls.Add(1)
	f.lastModel.Store(model)
	f.lastScale.Store(int32(scale))
	if f.fn != nil {
		return f.fn(ctx, in, out, model)
	}
	return copyFile(in, out)
}

func copyFile(src, dst string) error {
	s, err := os.Open(src)
	if err != nil {
		return err
	}
	defer s.Close()
	d, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(d, s); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

type testEnv struct {
	m     *Manager
	store *scratch.Store
	model string
	pub   *MemoryPublisher
	dir   string
}

// newTestManager builds a Manager over temp dirs. mut may adjust the config.
func newTestManager(t *testing.T, up Upscaler, mut func(*ManagerConfig)) testEnv {
	t.Helper()
	dir := t.TempDir()
	store, err := scratch.New(filepath.Join(dir, "uploads"), filepath.Join(dir, "outputs"))
	if err != nil {
		t.Fatalf("scratch: %v", err)
	}
	model := createModelFile(t, dir, "RealESRGAN_x4plus.pth")
	pub := NewMemoryPublisher()
	cfg := ManagerConfig{
		Upscaler:  up,
		Scratch:   store,
		ModelPath: model,
		Backend:   "fake",
		MaxWait:   time.Second,
		Publisher: pub,
	}
	if mut != nil {
		mut(&cfg)
	}
	m, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return testEnv{m: m, store: store, model: model, pub: pub, dir: dir}
}

func (e testEnv) scratchFiles(t *testing.T) int {
	t.Helper()
	n, err := e.store.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// pngRequest returns a request carrying a small real PNG.
func pngRequest(t *testing.T, name string) UpscaleRequest {
	t.Helper()
	p := writePNG(t, filepath.Join(t.TempDir(), "src.png"), 4, 3)
	f, err := os.Open(p)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return UpscaleRequest{Filename: name, ContentType: "image/png", Body: f}
}

// buildFakeUpscaler builds testdata/fake_upscaler and returns the binary path.
func buildFakeUpscaler(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "fake_upscaler")
	cmd := exec.Command("go", "build", "-o", bin, "./testdata/fake_upscaler")
	cmd.Dir = "."
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build fake upscaler: %v: %s", err, string(out))
	}
	return bin
}
