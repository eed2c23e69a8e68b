package manager

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"upscaled/pkg/types"
)

func TestUpscale_Success(t *testing.T) {
	up := &fakeUpscaler{}
	env := newTestManager(t, up, nil)
	before := testutil.ToFloat64(cleanupsTotal.WithLabelValues("served"))

	res, err := env.m.Upscale(context.Background(), pngRequest(t, "holiday photo.png"))
	if err != nil {
		t.Fatalf("upscale: %v", err)
	}
	if !strings.HasPrefix(res.Filename, "upscaled-") || !strings.HasSuffix(res.Filename, "-holiday_photo.png") {
		t.Fatalf("unexpected filename %q", res.Filename)
	}
	if filepath.Dir(res.Path) != env.store.OutputsDir || filepath.Base(res.Path) != res.Filename {
		t.Fatalf("unexpected path %q", res.Path)
	}
	fi, err := os.Stat(res.Path)
	if err != nil || fi.Size() != res.Size || res.Size == 0 {
		t.Fatalf("output stat: %v size=%d", err, res.Size)
	}
	if got := up.lastModel.Load().(string); got != env.model {
		t.Fatalf("upscaler got model %q want %q", got, env.model)
	}
	if res.ModelID != "RealESRGAN_x4plus.pth" {
		t.Fatalf("model id=%q", res.ModelID)
	}
	if n := env.scratchFiles(t); n != 2 {
		t.Fatalf("expected input and output on disk until cleanup, got %d", n)
	}

	res.Cleanup()
	res.Cleanup()
	if n := env.scratchFiles(t); n != 0 {
		t.Fatalf("expected scratch empty after cleanup, got %d", n)
	}
	if d := testutil.ToFloat64(cleanupsTotal.WithLabelValues("served")) - before; d != 2 {
		t.Fatalf("expected 2 served cleanups, got %v", d)
	}
	want := []string{EventUpscaleStart, EventUpscaleDone, EventCleanup}
	got := env.pub.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("events=%v want %v", got, want)
	}
}

func TestUpscale_ContentTypes(t *testing.T) {
	cases := []struct {
		ct string
		ok bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"image/jpg", true},
		{"IMAGE/PNG; charset=binary", true},
		{"image/gif", false},
		{"image/webp", false},
		{"text/plain", false},
		{"application/octet-stream", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.ct, func(t *testing.T) {
			up := &fakeUpscaler{}
			env := newTestManager(t, up, nil)
			req := pngRequest(t, "x.png")
			req.ContentType = tc.ct
			res, err := env.m.Upscale(context.Background(), req)
			if tc.ok {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				res.Cleanup()
				return
			}
			if !IsUnsupportedMediaType(err) {
				t.Fatalf("expected unsupported media type, got %v", err)
			}
			var he interface{ StatusCode() int }
			if !errors.As(err, &he) || he.StatusCode() != http.StatusBadRequest {
				t.Fatalf("expected 400 status code")
			}
			if up.calls.Load() != 0 || env.scratchFiles(t) != 0 {
				t.Fatalf("rejected upload must not touch disk or upscaler")
			}
		})
	}
}

func TestUpscale_ModelFileMissing(t *testing.T) {
	up := &fakeUpscaler{}
	env := newTestManager(t, up, nil)
	if err := os.Remove(env.model); err != nil {
		t.Fatal(err)
	}
	_, err := env.m.Upscale(context.Background(), pngRequest(t, "x.png"))
	if !IsModelFileMissing(err) {
		t.Fatalf("expected model file missing, got %v", err)
	}
	if err.Error() != "Model file not found at "+env.model {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if up.calls.Load() != 0 || env.scratchFiles(t) != 0 {
		t.Fatalf("nothing should be written when weights are missing")
	}
	if env.m.Status().FailuresTotal != 1 {
		t.Fatalf("missing weights counts as a failure")
	}
}

func TestUpscale_ModelSelection(t *testing.T) {
	up := &fakeUpscaler{}
	env := newTestManager(t, up, nil)
	x2 := createModelFile(t, env.dir, "RealESRGAN_x2plus.pth")
	env.m.registry = []types.Model{{ID: "RealESRGAN_x2plus.pth", Path: x2, Scale: 2}}

	req := pngRequest(t, "x.png")
	req.Model = "RealESRGAN_x2plus.pth"
	res, err := env.m.Upscale(context.Background(), req)
	if err != nil {
		t.Fatalf("upscale: %v", err)
	}
	defer res.Cleanup()
	if got := up.lastModel.Load().(string); got != x2 {
		t.Fatalf("expected registry weights, got %q", got)
	}
	if got := up.lastScale.Load(); got != 2 {
		t.Fatalf("expected the x2 weights to run at scale 2, got %d", got)
	}

	req = pngRequest(t, "x.png")
	req.Model = "nope.pth"
	_, err = env.m.Upscale(context.Background(), req)
	if !IsModelNotFound(err) {
		t.Fatalf("expected model not found, got %v", err)
	}
	var he interface{ StatusCode() int }
	if !errors.As(err, &he) || he.StatusCode() != http.StatusNotFound {
		t.Fatalf("expected 404 mapping")
	}
}

func TestUpscale_UpscalerErrorCleansUp(t *testing.T) {
	up := &fakeUpscaler{fn: func(ctx context.Context, in, out, model string) error {
		// leave a partial output behind
		if err := os.WriteFile(out, []byte("half"), 0o644); err != nil {
			return err
		}
		return errors.New("CUDA out of memory")
	}}
	env := newTestManager(t, up, nil)
	_, err := env.m.Upscale(context.Background(), pngRequest(t, "x.png"))
	if err == nil || err.Error() != "Error during image upscaling: CUDA out of memory" {
		t.Fatalf("unexpected error %v", err)
	}
	if n := env.scratchFiles(t); n != 0 {
		t.Fatalf("input and partial output should be removed, %d left", n)
	}
	names := env.pub.Names()
	if names[len(names)-1] != EventUpscaleFailed {
		t.Fatalf("expected failure event last, got %v", names)
	}
}

func TestUpscale_NoOutput(t *testing.T) {
	up := &fakeUpscaler{fn: func(ctx context.Context, in, out, model string) error { return nil }}
	env := newTestManager(t, up, nil)
	_, err := env.m.Upscale(context.Background(), pngRequest(t, "x.png"))
	if !IsNoOutput(err) || err.Error() != "Upscaling process did not produce an output file." {
		t.Fatalf("unexpected error %v", err)
	}
	if n := env.scratchFiles(t); n != 0 {
		t.Fatalf("input should be removed, %d left", n)
	}
}

func TestUpscale_DependencyUnavailablePassesThrough(t *testing.T) {
	up := &fakeUpscaler{fn: func(ctx context.Context, in, out, model string) error {
		return ErrDependencyUnavailable("upscaler binary missing")
	}}
	env := newTestManager(t, up, nil)
	_, err := env.m.Upscale(context.Background(), pngRequest(t, "x.png"))
	if !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if env.scratchFiles(t) != 0 {
		t.Fatalf("scratch not cleaned")
	}
}

func TestUpscale_TooLarge(t *testing.T) {
	up := &fakeUpscaler{}
	env := newTestManager(t, up, func(c *ManagerConfig) { c.MaxUploadBytes = 16 })
	req := UpscaleRequest{Filename: "big.png", ContentType: "image/png", Body: strings.NewReader(strings.Repeat("x", 64))}
	_, err := env.m.Upscale(context.Background(), req)
	if !IsUploadTooLarge(err) {
		t.Fatalf("expected too large, got %v", err)
	}
	if up.calls.Load() != 0 || env.scratchFiles(t) != 0 {
		t.Fatalf("oversized upload must leave nothing behind")
	}

	// exactly at the limit is fine
	req = UpscaleRequest{Filename: "ok.png", ContentType: "image/png", Body: strings.NewReader(strings.Repeat("x", 16))}
	res, err := env.m.Upscale(context.Background(), req)
	if err != nil {
		t.Fatalf("upload at limit: %v", err)
	}
	res.Cleanup()
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestUpscale_SaveError(t *testing.T) {
	env := newTestManager(t, &fakeUpscaler{}, nil)
	req := UpscaleRequest{Filename: "x.png", ContentType: "image/png", Body: brokenReader{}}
	_, err := env.m.Upscale(context.Background(), req)
	if err == nil || !strings.HasPrefix(err.Error(), "Error saving uploaded file: ") {
		t.Fatalf("expected save error, got %v", err)
	}
	if env.scratchFiles(t) != 0 {
		t.Fatalf("partial upload left behind")
	}
}

func TestUpscale_BusyRejectsAndCleansUp(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	up := &fakeUpscaler{fn: func(ctx context.Context, in, out, model string) error {
		close(started)
		<-unblock
		return copyFile(in, out)
	}}
	env := newTestManager(t, up, func(c *ManagerConfig) {
		c.MaxConcurrent = 1
		c.MaxQueueDepth = 1
		c.MaxWait = 20 * time.Millisecond
	})

	done := make(chan error, 1)
	var first *Result
	firstReq := pngRequest(t, "first.png")
	go func() {
		res, err := env.m.Upscale(context.Background(), firstReq)
		first = res
		done <- err
	}()
	<-started

	_, err := env.m.Upscale(context.Background(), pngRequest(t, "second.png"))
	if !IsTooBusy(err) {
		t.Fatalf("expected too busy, got %v", err)
	}
	// only the running request's input remains
	if n := env.scratchFiles(t); n != 1 {
		t.Fatalf("rejected input should be removed, files=%d", n)
	}

	close(unblock)
	if err := <-done; err != nil {
		t.Fatalf("first upscale: %v", err)
	}
	first.Cleanup()
	if n := env.scratchFiles(t); n != 0 {
		t.Fatalf("files left: %d", n)
	}
}

func TestUpscale_CanceledContext(t *testing.T) {
	up := &fakeUpscaler{fn: func(ctx context.Context, in, out, model string) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	env := newTestManager(t, up, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := env.m.Upscale(ctx, pngRequest(t, "x.png"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if env.scratchFiles(t) != 0 {
		t.Fatalf("scratch not cleaned after cancellation")
	}
}

func TestBeginUpscale_QueueTimeout(t *testing.T) {
	env := newTestManager(t, &fakeUpscaler{}, func(c *ManagerConfig) {
		c.MaxQueueDepth = 1
		c.MaxWait = 20 * time.Millisecond
	})
	rel, err := env.m.beginUpscale(context.Background())
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer rel()
	if _, err := env.m.beginUpscale(context.Background()); !IsTooBusy(err) {
		t.Fatalf("expected tooBusyError, got %v", err)
	}
}

func TestBeginUpscale_GenTimeout(t *testing.T) {
	env := newTestManager(t, &fakeUpscaler{}, func(c *ManagerConfig) {
		c.MaxQueueDepth = 2
		c.MaxWait = 20 * time.Millisecond
	})
	env.m.genCh <- struct{}{}
	defer func() { <-env.m.genCh }()
	if _, err := env.m.beginUpscale(context.Background()); !IsTooBusy(err) {
		t.Fatalf("expected tooBusyError on gen wait, got %v", err)
	}
	if len(env.m.queueCh) != 0 {
		t.Fatalf("queue slot leaked: %d", len(env.m.queueCh))
	}
}

func TestBeginUpscale_CanceledFastPath(t *testing.T) {
	env := newTestManager(t, &fakeUpscaler{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := env.m.beginUpscale(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestLimitedReader(t *testing.T) {
	lr := &limitedReader{r: strings.NewReader("abcdef"), left: 6, limit: 6}
	buf := make([]byte, 64)
	n, err := lr.Read(buf)
	if n != 6 || err != nil {
		t.Fatalf("n=%d err=%v", n, err)
	}
	lr = &limitedReader{r: strings.NewReader("abcdefg"), left: 6, limit: 6}
	var total int
	for {
		n, err = lr.Read(buf)
		total += n
		if err != nil {
			break
		}
	}
	if !IsUploadTooLarge(err) {
		t.Fatalf("expected too large, got %v after %d bytes", err, total)
	}
}
