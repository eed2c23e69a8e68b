package manager

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"upscaled/internal/common/fsutil"
)

// UpscaleRequest is one uploaded image.
type UpscaleRequest struct {
	// Filename is the client supplied name; it is sanitized before use.
	Filename string
	// ContentType is the declared MIME type of the upload.
	ContentType string
	// Model optionally selects registry weights by id.
	Model string
	Body  io.Reader
}

// Result is a finished upscale. The caller streams Path to the client and
// then calls Cleanup, which removes both scratch files. Cleanup is idempotent.
type Result struct {
	Path     string
	Filename string
	Size     int64
	ModelID  string

	once    sync.Once
	cleanup func()
}

// NewResult builds a Result whose Cleanup runs cleanup at most once.
func NewResult(path, filename string, size int64, modelID string, cleanup func()) *Result {
	return &Result{Path: path, Filename: filename, Size: size, ModelID: modelID, cleanup: cleanup}
}

// Cleanup removes the input and output files of the request.
func (r *Result) Cleanup() {
	if r == nil || r.cleanup == nil {
		return
	}
	r.once.Do(r.cleanup)
}

// Upscale runs the full request: validate, save the upload, wait for a slot,
// call the upscaler and hand back the output. On every failure path the
// scratch files created for the request are removed before returning.
func (m *Manager) Upscale(ctx context.Context, req UpscaleRequest) (*Result, error) {
	if !acceptedContentType(req.ContentType) {
		err := unsupportedMediaTypeError{contentType: req.ContentType}
		m.reject("", req.Model, err)
		return nil, err
	}
	mdl, err := m.resolveModel(req.Model)
	if err != nil {
		m.reject("", req.Model, err)
		return nil, err
	}
	if !fsutil.IsRegularFile(mdl.Path) {
		err := modelFileMissingError{path: mdl.Path}
		m.fail("", mdl.ID, err)
		return nil, err
	}

	pair := m.store.Allocate(req.Filename)
	body := req.Body
	if m.maxUploadBytes > 0 {
		body = &limitedReader{r: body, left: m.maxUploadBytes, limit: m.maxUploadBytes}
	}
	if _, err := m.store.Save(pair.InputPath, body); err != nil {
		// Save already dropped the partial file.
		var mbe *http.MaxBytesError
		switch {
		case IsUploadTooLarge(err):
			err = uploadTooLargeError{limit: m.maxUploadBytes}
			m.reject(pair.ID, mdl.ID, err)
		case errors.As(err, &mbe):
			err = uploadTooLargeError{limit: mbe.Limit}
			m.reject(pair.ID, mdl.ID, err)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			err = saveError{err: err}
			m.fail(pair.ID, mdl.ID, err)
		}
		return nil, err
	}

	release, err := m.beginUpscale(ctx)
	if err != nil {
		m.discard(pair.ID, "rejected", pair.InputPath)
		if IsTooBusy(err) || IsDependencyUnavailable(err) {
			m.reject(pair.ID, mdl.ID, err)
		}
		return nil, err
	}
	defer release()

	m.publish(Event{Name: EventUpscaleStart, ID: pair.ID, ModelID: mdl.ID})
	m.log.Debug().Str("id", pair.ID).Str("model", mdl.ID).Int("scale", mdl.Scale).Str("input", pair.InputPath).Msg("upscale start")
	start := time.Now()
	uerr := m.upscaler.Upscale(ctx, pair.InputPath, pair.OutputPath, mdl.Path, mdl.Scale)
	dur := time.Since(start)
	upscaleDuration.WithLabelValues(m.backendLabel()).Observe(dur.Seconds())
	if uerr != nil {
		m.discard(pair.ID, "failed", pair.InputPath, pair.OutputPath)
		if cerr := ctx.Err(); cerr != nil {
			m.fail(pair.ID, mdl.ID, cerr)
			return nil, cerr
		}
		if IsDependencyUnavailable(uerr) {
			m.fail(pair.ID, mdl.ID, uerr)
			return nil, uerr
		}
		err := upscaleError{err: uerr}
		m.fail(pair.ID, mdl.ID, err)
		return nil, err
	}

	fi, serr := os.Stat(pair.OutputPath)
	if serr != nil || !fi.Mode().IsRegular() {
		m.discard(pair.ID, "failed", pair.InputPath, pair.OutputPath)
		err := noOutputError{}
		m.fail(pair.ID, mdl.ID, err)
		return nil, err
	}

	m.upscalesTotal.Add(1)
	upscalesTotal.WithLabelValues("ok").Inc()
	m.publish(Event{Name: EventUpscaleDone, ID: pair.ID, ModelID: mdl.ID, Fields: map[string]any{
		"bytes":       fi.Size(),
		"duration_ms": dur.Milliseconds(),
	}})
	m.log.Info().Str("id", pair.ID).Str("model", mdl.ID).Int64("bytes", fi.Size()).Dur("dur", dur).Msg("upscale done")

	return NewResult(pair.OutputPath, pair.OutputName, fi.Size(), mdl.ID, func() {
		m.discard(pair.ID, "served", pair.InputPath, pair.OutputPath)
	}), nil
}

func (m *Manager) backendLabel() string {
	if m.backend == "" {
		return "custom"
	}
	return m.backend
}

// reject records a request refused before any upscaling work.
func (m *Manager) reject(id, modelID string, err error) {
	upscalesTotal.WithLabelValues("rejected").Inc()
	m.publish(Event{Name: EventUpscaleRejected, ID: id, ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
	m.log.Info().Str("id", id).Str("model", modelID).Err(err).Msg("upscale rejected")
}

// fail records a server side failure.
func (m *Manager) fail(id, modelID string, err error) {
	m.failuresTotal.Add(1)
	m.setLastError(err)
	upscalesTotal.WithLabelValues("failed").Inc()
	m.publish(Event{Name: EventUpscaleFailed, ID: id, ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
	m.log.Warn().Str("id", id).Str("model", modelID).Err(err).Msg("upscale failed")
}

// discard removes scratch files and reports how many existed.
func (m *Manager) discard(id, reason string, paths ...string) {
	n := 0
	for _, p := range paths {
		if fsutil.PathExists(p) {
			n++
		}
	}
	if err := m.store.Remove(paths...); err != nil {
		m.log.Warn().Str("id", id).Err(err).Msg("cleanup failed")
	}
	cleanupsTotal.WithLabelValues(reason).Add(float64(n))
	m.publish(Event{Name: EventCleanup, ID: id, Fields: map[string]any{"reason": reason, "files": n}})
}

// limitedReader fails with uploadTooLargeError once more than limit bytes are read.
type limitedReader struct {
	r     io.Reader
	left  int64
	limit int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.left < 0 {
		return 0, uploadTooLargeError{limit: l.limit}
	}
	if int64(len(p)) > l.left+1 {
		p = p[:l.left+1]
	}
	n, err := l.r.Read(p)
	l.left -= int64(n)
	if l.left < 0 {
		return n, uploadTooLargeError{limit: l.limit}
	}
	return n, err
}
