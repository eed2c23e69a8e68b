package httpapi

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info", "warn":
		return LevelInfo
	case "debug", "trace":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel applies when a request carries no override.
var defaultLogLevel = func() LogLevel {
	if v := os.Getenv("UPSCALED_LOG_LEVEL"); v != "" {
		return parseLevel(v)
	}
	return LevelInfo
}()

// SetDefaultLogLevel changes the level used for requests without overrides.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logUpscale records the outcome of one upload. Failures are logged at
// LevelError and above, successes at LevelInfo.
func logUpscale(r *http.Request, lvl LogLevel, status int, start time.Time, filename string, err error) {
	if lvl == LevelOff || (err == nil && lvl < LevelInfo) {
		return
	}
	dur := time.Since(start)
	rid := middleware.GetReqID(r.Context())
	if zlog != nil {
		ev := zlog.Info()
		if err != nil {
			ev = zlog.Warn().Err(err)
		}
		if rid != "" {
			ev = ev.Str("request_id", rid)
		}
		ev.Int("status", status).Str("file", filename).Dur("dur", dur).Msg("upscale end")
		return
	}
	if err != nil {
		log.Printf("upscale end status=%d file=%s dur=%s request_id=%s err=%v", status, filename, dur, rid, err)
		return
	}
	log.Printf("upscale end status=%d file=%s dur=%s request_id=%s", status, filename, dur, rid)
}

// logDebug emits a debug line when the request asked for it.
func logDebug(r *http.Request, lvl LogLevel, msg string, kv map[string]string) {
	if lvl < LevelDebug {
		return
	}
	if zlog != nil {
		ev := zlog.Info()
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			ev = ev.Str("request_id", rid)
		}
		for k, v := range kv {
			ev = ev.Str(k, v)
		}
		ev.Msg(msg)
		return
	}
	log.Printf("%s %v", msg, kv)
}
