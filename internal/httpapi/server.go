package httpapi

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"upscaled/internal/manager"
	"upscaled/pkg/types"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the Real-ESRGAN Upscaler API. Use the /docs endpoint to see the API documentation."

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Upscale(ctx context.Context, req manager.UpscaleRequest) (*manager.Result, error)
	ListModels() []types.Model
	Status() types.StatusResponse
	Ready() bool
	SanityCheck() manager.SanityReport
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints; image/png is not in the default type list.
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.WelcomeResponse{Message: WelcomeMessage})
	})

	up := upscaleHandler(svc)
	r.Post("/upscale", up)
	r.Post("/upscale/", up)

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: svc.ListModels()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		reason := svc.SanityCheck().Error
		if reason == "" {
			reason = "not ready"
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(reason))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Accept", "Content-Type", "X-Request-Id", "X-Log-Level"}
	}
	return cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	}
}

// upscaleHandler godoc
//
//	@Summary		Upscale an image
//	@Description	Upload a PNG or JPEG as multipart field "file". The response is the upscaled PNG.
//	@Tags			upscale
//	@Accept			multipart/form-data
//	@Produce		image/png
//	@Param			file	formData	file	true	"Image to upscale (image/png, image/jpeg)"
//	@Param			model	formData	string	false	"Registry model id; must precede the file part"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Failure		413		{object}	types.ErrorResponse
//	@Failure		429		{object}	types.ErrorResponse
//	@Failure		500		{object}	types.ErrorResponse
//	@Failure		503		{object}	types.ErrorResponse
//	@Router			/upscale/ [post]
func upscaleHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lvl := requestLogLevel(r)
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+multipartSlack)
		mr, err := r.MultipartReader()
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "request must be multipart/form-data with a file field")
			logUpscale(r, lvl, http.StatusBadRequest, start, "", err)
			return
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := upscaleContext(r.Context())
		defer cancel()

		model := r.URL.Query().Get("model")
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				status := http.StatusBadRequest
				var mbe *http.MaxBytesError
				if errors.As(err, &mbe) {
					status = http.StatusRequestEntityTooLarge
				}
				writeJSONError(w, status, "malformed multipart body: "+err.Error())
				logUpscale(r, lvl, status, start, "", err)
				return
			}
			switch part.FormName() {
			case "model":
				b, _ := io.ReadAll(io.LimitReader(part, 256))
				model = strings.TrimSpace(string(b))
			case "file":
				req := manager.UpscaleRequest{
					Filename:    part.FileName(),
					ContentType: part.Header.Get("Content-Type"),
					Model:       model,
					Body:        part,
				}
				logDebug(r, lvl, "upscale start", map[string]string{"file": req.Filename, "content_type": req.ContentType, "model": model})
				res, err := svc.Upscale(ctx, req)
				_ = part.Close()
				if err != nil {
					// Client went away: nobody to answer.
					if r.Context().Err() != nil {
						logUpscale(r, lvl, 499, start, req.Filename, err)
						return
					}
					if serverBaseCtx.Err() != nil {
						writeJSONError(w, http.StatusServiceUnavailable, "server is shutting down")
						logUpscale(r, lvl, http.StatusServiceUnavailable, start, req.Filename, err)
						return
					}
					status := statusForError(err)
					if status == http.StatusTooManyRequests {
						IncrementBackpressure("queue_wait_timeout")
					}
					writeJSONError(w, status, err.Error())
					logUpscale(r, lvl, status, start, req.Filename, err)
					return
				}
				// Files are removed once the body has been written (or failed to).
				defer res.Cleanup()
				serveResult(w, r, res)
				logUpscale(r, lvl, http.StatusOK, start, req.Filename, nil)
				return
			}
			_ = part.Close()
		}
		writeJSONError(w, http.StatusBadRequest, "file field is required")
		logUpscale(r, lvl, http.StatusBadRequest, start, "", errors.New("missing file part"))
	}
}

// serveResult streams the upscaled PNG as an attachment.
func serveResult(w http.ResponseWriter, r *http.Request, res *manager.Result) {
	f, err := os.Open(res.Path)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Upscaling process did not produce an output file.")
		return
	}
	defer f.Close()
	h := w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	h.Set("Content-Length", strconv.FormatInt(res.Size, 10))
	w.WriteHeader(http.StatusOK)
	n, err := io.Copy(w, f)
	imageBytesTotal.Add(float64(n))
	if err != nil {
		logDebug(r, requestLogLevel(r), "write response", map[string]string{"error": err.Error()})
	}
}
