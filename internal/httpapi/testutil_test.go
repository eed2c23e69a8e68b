package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"upscaled/internal/manager"
	"upscaled/pkg/types"
)

type mockService struct {
	models    []types.Model
	status    types.StatusResponse
	ready     bool
	sanity    manager.SanityReport
	err       error
	outBody   []byte
	outDir    string
	got       manager.UpscaleRequest
	gotBody   []byte
	cleanedUp bool
	block     func(ctx context.Context) error
}

func (m *mockService) ListModels() []types.Model { return append([]types.Model(nil), m.models...) }

func (m *mockService) Status() types.StatusResponse { return m.status }

func (m *mockService) Ready() bool { return m.ready }

func (m *mockService) SanityCheck() manager.SanityReport { return m.sanity }

func (m *mockService) Upscale(ctx context.Context, req manager.UpscaleRequest) (*manager.Result, error) {
	m.got = req
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	m.gotBody = b
	if m.block != nil {
		if err := m.block(ctx); err != nil {
			return nil, err
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	p := filepath.Join(m.outDir, "upscaled-abc-cat.png")
	if err := os.WriteFile(p, m.outBody, 0o644); err != nil {
		return nil, err
	}
	return manager.NewResult(p, "upscaled-abc-cat.png", int64(len(m.outBody)), "m", func() {
		m.cleanedUp = true
		_ = os.Remove(p)
	}), nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

var errPlain = errors.New("plain failure")

// multipartBody builds a form with the optional model field first and the
// file part second.
func multipartBody(t *testing.T, model, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if model != "" {
		if err := mw.WriteField("model", model); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		pw, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := pw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func postUpscale(t *testing.T, h http.Handler, path string, body io.Reader, ct string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, body)
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
