package logger

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestInitLogger_CustomTimeFormat(t *testing.T) {
	config := Config{
		TimeFormat: "2006-01-02 15:04:05",
		LogLevel:   "info",
	}
	InitLogger(config)

	if timeFormat != config.TimeFormat {
		t.Errorf("Expected timeFormat to be %s, got %s", config.TimeFormat, timeFormat)
	}
}

func TestInitLogger_CustomTimeZone(t *testing.T) {
	InitLogger(Config{TimeZone: "UTC", LogLevel: "info"})

	if timeZone.String() != time.UTC.String() {
		t.Errorf("Expected timezone to be UTC, got %s", timeZone.String())
	}
}

func TestInitLogger_Levels(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		InitLogger(Config{LogLevel: in})
		if got := zerolog.GlobalLevel(); got != want {
			t.Errorf("level %q: expected %s, got %s", in, want, got)
		}
	}
}

func TestSetLevel_FiltersAtRuntime(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	var buf bytes.Buffer
	log = zerolog.New(&buf)

	SetLevel("warn")
	Logtype(StatusInfo, 0).Msg("hidden")
	Logtype(StatusWarning, 0).Msg("shown")
	SetLevel("debug")
	Logtype(StatusDebug, 0).Msg("debug shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info to be filtered at warn level, got %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "debug shown") {
		t.Errorf("Expected warn and debug lines, got %s", out)
	}
}

func TestLogtype_MixedTypes(t *testing.T) {
	var buf bytes.Buffer
	log = zerolog.New(&buf)

	Logtype("info", 1).Str("string", "value").Int("int", 42).Err(errors.New("test error")).Msg("test message")

	if !strings.Contains(buf.String(), `"string":"value"`) {
		t.Errorf("Expected field in output, got %s", buf.String())
	}
}

func TestLogtype_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	log = zerolog.New(&buf)

	Logtype("invalid_level", 0).Str("field", "value").Msg("test message")

	if !strings.Contains(buf.String(), `"level":"info"`) {
		t.Errorf("Expected fallback to info level, got %s", buf.String())
	}
}

func TestLogDynamicany_Pairs(t *testing.T) {
	var buf bytes.Buffer
	log = zerolog.New(&buf)

	LogDynamicany("warn", "pairs", StrResource, "skills", StrTotal, 3, "dangling")

	out := buf.String()
	if !strings.Contains(out, `"resource":"skills"`) || !strings.Contains(out, `"total":3`) {
		t.Errorf("Expected key/value pairs, got %s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("Expected warn level, got %s", out)
	}
}

func TestGinLogger_SkipsBody(t *testing.T) {
	var buf bytes.Buffer
	log = zerolog.New(&buf)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinLogger())
	r.POST("/admin/users/dialog/submit", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/users/dialog/submit", strings.NewReader("password=secret"))
	req.Header.Set("HX-Target", "dialog")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if strings.Contains(out, "secret") {
		t.Errorf("Expected request body to stay out of the log, got %s", out)
	}
	if !strings.Contains(out, `"hx_target":"dialog"`) || !strings.Contains(out, `"status_code":200`) {
		t.Errorf("Expected request fields, got %s", out)
	}
}

func TestGinLogger_SkipsHealth(t *testing.T) {
	var buf bytes.Buffer
	log = zerolog.New(&buf)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinLogger())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin/:resource", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if buf.Len() != 0 {
		t.Errorf("Expected health check to stay out of the log, got %s", buf.String())
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/nope", nil))
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"resource":"nope"`) {
		t.Errorf("Expected warn line with resource, got %s", out)
	}
}
