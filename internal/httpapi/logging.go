package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// zlog overrides the global logger for the HTTP layer when set.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

func logger() *zerolog.Logger {
	if zlog != nil {
		return zlog
	}
	return &log.Logger
}

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
	case "off", "disabled":
		return LevelOff
	case "error", "warn":
		return LevelError
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

var defaultLogLevel = LevelInfo

// SetRequestLogLevel sets the default per-request log level.
func SetRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

// requestLogLevel honors an X-Log-Level header override.
func requestLogLevel(r *http.Request) LogLevel {
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// requestEvent starts an info event tagged with the request id, or returns
// nil when lvl suppresses it.
func requestEvent(r *http.Request, lvl LogLevel) *zerolog.Event {
	if lvl < LevelInfo {
		return nil
	}
	return withRequest(logger().Info(), r)
}

// requestErrorEvent starts an error event for a failed request. Failures
// are logged at every level except LevelOff.
func requestErrorEvent(r *http.Request, lvl LogLevel) *zerolog.Event {
	if lvl < LevelError {
		return nil
	}
	return withRequest(logger().Error(), r)
}

func withRequest(ev *zerolog.Event, r *http.Request) *zerolog.Event {
	ev = ev.Str("path", r.URL.Path)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	return ev
}
