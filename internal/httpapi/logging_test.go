package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"off":      LevelOff,
		"disabled": LevelOff,
		"error":    LevelError,
		"warn":     LevelError,
		"info":     LevelInfo,
		"DEBUG":    LevelDebug,
		"":         LevelInfo,
		"bogus":    LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q)=%v want %v", in, got, want)
		}
	}
}

func TestRequestLogLevelHeaderOverride(t *testing.T) {
	SetRequestLogLevel("off")
	defer SetRequestLogLevel("info")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if requestLogLevel(r) != LevelOff {
		t.Fatalf("expected default level")
	}
	r.Header.Set("X-Log-Level", "debug")
	if requestLogLevel(r) != LevelDebug {
		t.Fatalf("expected header override")
	}
}

func TestInferLogsWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	w := postInfer(t, NewMux(&mockService{answer: "a"}), "application/json", `{"query":"q"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	out := buf.String()
	if !strings.Contains(out, `"message":"infer start"`) || !strings.Contains(out, `"message":"infer end"`) {
		t.Fatalf("missing infer log lines: %s", out)
	}
	if !strings.Contains(out, `"request_id"`) {
		t.Fatalf("missing request id: %s", out)
	}
}

func TestInferLoggingSuppressed(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	req := httptest.NewRequest(http.MethodPost, "/infer", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Log-Level", "off")
	NewMux(&mockService{answer: "a"}).ServeHTTP(httptest.NewRecorder(), req)
	if buf.Len() != 0 {
		t.Fatalf("expected no logs, got %s", buf.String())
	}
}

func TestInferFailureLoggedAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()
	SetRequestLogLevel("warn")
	defer SetRequestLogLevel("info")

	w := postInfer(t, NewMux(&mockService{err: errors.New("boom")}), "application/json", `{"query":"q"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	out := buf.String()
	if strings.Contains(out, `"message":"infer start"`) {
		t.Fatalf("info lines must stay suppressed: %s", out)
	}
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, `"message":"infer end"`) || !strings.Contains(out, "boom") {
		t.Fatalf("failed request not logged: %s", out)
	}
}

func TestRequestErrorEventOff(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/infer", nil)
	if requestErrorEvent(r, LevelOff) != nil {
		t.Fatalf("expected no event when logging is off")
	}
}
