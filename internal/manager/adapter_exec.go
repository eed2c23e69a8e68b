package manager

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultExecArgs drives realesrgan-ncnn-vulkan style CLIs.
var DefaultExecArgs = []string{"-i", "{input}", "-o", "{output}", "-s", "{scale}", "-m", "{model_dir}", "-n", "{model_name}"}

const stderrTailBytes = 4096

// ExecConfig configures an ExecUpscaler.
type ExecConfig struct {
	Bin    string
	Args   []string
	Scale  int
	Logger *zerolog.Logger
}

// ExecUpscaler runs an external upscaler CLI once per request.
type ExecUpscaler struct {
	bin   string
	args  []string
	scale int
	log   zerolog.Logger
}

// NewExecUpscaler builds an ExecUpscaler. Empty Args select DefaultExecArgs.
func NewExecUpscaler(cfg ExecConfig) *ExecUpscaler {
	args := cfg.Args
	if len(args) == 0 {
		args = DefaultExecArgs
	}
	scale := cfg.Scale
	if scale <= 0 {
		scale = defaultScale
	}
	u := &ExecUpscaler{bin: cfg.Bin, args: append([]string(nil), args...), scale: scale, log: zerolog.Nop()}
	if cfg.Logger != nil {
		u.log = cfg.Logger.With().Str("component", "exec_upscaler").Logger()
	}
	return u
}

// Check verifies the binary can be resolved.
func (u *ExecUpscaler) Check(ctx context.Context) error {
	_, err := u.lookPath()
	return err
}

func (u *ExecUpscaler) lookPath() (string, error) {
	p, err := exec.LookPath(u.bin)
	if err != nil {
		return "", ErrDependencyUnavailable(fmt.Sprintf("upscaler binary %q not available: %v", u.bin, err))
	}
	return p, nil
}

// Upscale runs the binary and waits for it. A non-zero exit is reported with
// the tail of its stderr. Cancelling ctx kills the process.
func (u *ExecUpscaler) Upscale(ctx context.Context, inputPath, outputPath, modelPath string, scale int) error {
	bin, err := u.lookPath()
	if err != nil {
		return err
	}
	args := expandArgs(u.args, map[string]string{
		"{input}":      inputPath,
		"{output}":     outputPath,
		"{model}":      modelPath,
		"{model_dir}":  filepath.Dir(modelPath),
		"{model_name}": strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath)),
		"{scale}":      strconv.Itoa(pickScale(scale, u.scale)),
	})
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.WaitDelay = 2 * time.Second
	stderr := &tailWriter{max: stderrTailBytes}
	cmd.Stderr = stderr
	cmd.Stdout = stderr
	u.log.Debug().Str("bin", bin).Strs("args", args).Msg("exec upscaler")
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %v; stderr tail: %s", filepath.Base(bin), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// expandArgs substitutes placeholders inside every argument.
func expandArgs(tmpl []string, vals map[string]string) []string {
	pairs := make([]string, 0, len(vals)*2)
	for k, v := range vals {
		pairs = append(pairs, k, v)
	}
	r := strings.NewReplacer(pairs...)
	out := make([]string, len(tmpl))
	for i, a := range tmpl {
		out[i] = r.Replace(a)
	}
	return out
}

// tailWriter keeps only the last max bytes written to it.
type tailWriter struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	if over := len(w.buf) - w.max; over > 0 {
		w.buf = append(w.buf[:0], w.buf[over:]...)
	}
	return len(p), nil
}

func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.buf)
}
