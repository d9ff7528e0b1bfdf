package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

var timeFixture = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	if logger.Level() != DefaultLevel {
		t.Errorf("level = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("format = %v, want %v", logger.Format(), DefaultFormat)
	}

	if logger.caller {
		t.Error("caller enabled by default")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(Logger, string, ...slog.Attr)
		minLevel Level
		logged   bool
	}{
		{"trace at trace", Logger.Trace, LevelTrace, true},
		{"trace at debug", Logger.Trace, LevelDebug, false},
		{"debug at debug", Logger.Debug, LevelDebug, true},
		{"debug at info", Logger.Debug, LevelInfo, false},
		{"info at info", Logger.Info, LevelInfo, true},
		{"info at warn", Logger.Info, LevelWarn, false},
		{"warn at warn", Logger.Warn, LevelWarn, true},
		{"warn at error", Logger.Warn, LevelError, false},
		{"error at trace", Logger.Error, LevelTrace, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.logFunc(Make(&buf, WithLevel(tt.minLevel)), "test message")

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.logged, buf.String())
			}
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace))
	logger.Trace("test message", slog.String("key", "value"))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON output %q: %v", buf.String(), err)
	}

	if result["msg"] != "test message" || result["key"] != "value" {
		t.Errorf("result = %v", result)
	}

	if result["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", result["level"])
	}
}

func TestLogger_Text(t *testing.T) {
	tests := []struct {
		name   string
		pretty bool
	}{
		{"plain", false},
		{"pretty", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf,
				WithFormat(FormatText),
				WithLevel(LevelInfo),
				WithPretty(tt.pretty),
				WithTimeLayout("none"),
			)
			logger.With(slog.String("component", "test")).
				Info("test message", slog.String("key", "value"), slog.Int("n", 3))

			out := buf.String()
			for _, want := range []string{"INFO", "test message", "key=value", "n=3", "component=test"} {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
		})
	}
}

func TestLogger_Pretty_Groups(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout(""))
	logger.Warn("failed", slog.Group("error", slog.String("reason", "bad input"), slog.Int("line", 4)))

	out := buf.String()
	if !strings.Contains(out, `error.reason="bad input"`) || !strings.Contains(out, "error.line=4") {
		t.Errorf("output %q missing grouped attributes", out)
	}
}

type valuer struct{}

func (valuer) LogValue() slog.Value {
	return slog.GroupValue(slog.String("error", "boom"))
}

func (valuer) Error() string { return "boom" }

func TestLogger_Pretty_LogValuer(t *testing.T) {
	var buf bytes.Buffer

	var err error = valuer{}

	Make(&buf, WithTimeLayout("")).Error("failed", slog.Any("err", err))

	if !strings.Contains(buf.String(), "err.error=boom") {
		t.Errorf("output %q missing resolved value", buf.String())
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatJSON), WithCaller(true)).Warn("test message")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("output %q missing caller", buf.String())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	if !logger.IsZero() {
		t.Error("zero Logger should report IsZero")
	}

	logger.Error("discarded")
	logger.With(slog.String("k", "v")).Warn("discarded")

	if logger.Level() != DefaultLevel {
		t.Errorf("level = %v, want %v", logger.Level(), DefaultLevel)
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelError))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	base.Info("hidden")
	wrapped.Debug("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelInfo), WithPretty(true))

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()
			logger.Info("concurrent message", slog.Int("id", id))
		}(i)
	}

	wg.Wait()

	if lines := strings.Split(strings.TrimSpace(buf.String()), "\n"); len(lines) != 100 {
		t.Errorf("got %d lines, want 100", len(lines))
	}
}

func TestLevel_StringAndParse(t *testing.T) {
	tests := []struct {
		input string
		want  Level
		name  string
	}{
		{"trace", LevelTrace, "trace"},
		{"TRACE", LevelTrace, "trace"},
		{"debug", LevelDebug, "debug"},
		{"Info", LevelInfo, "info"},
		{"warn", LevelWarn, "warn"},
		{"error", LevelError, "error"},
		{"info+2", LevelInfo + 2, "info+2"},
		{"bogus", DefaultLevel, DefaultLevel.String()},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}

			if got.String() != tt.name {
				t.Errorf("String() = %q, want %q", got.String(), tt.name)
			}
		})
	}

	if got := slices.Collect(Levels()); !slices.Equal(got, []string{"trace", "debug", "info", "warn", "error"}) {
		t.Errorf("Levels() = %v", got)
	}
}

func TestFormat_StringAndParse(t *testing.T) {
	if ParseFormat(" JSON ") != FormatJSON || ParseFormat("text") != FormatText {
		t.Error("ParseFormat did not recognize valid formats")
	}

	if ParseFormat("xml") != DefaultFormat {
		t.Error("ParseFormat should fall back to the default")
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestTimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		empty  bool
	}{
		{"RFC3339", false},
		{"rfc-3339-nano", false},
		{"kitchen", false},
		{"2006", false},
		{"none", true},
		{"  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			got := makeFormatTimeFunc(tt.layout)(timeFixture)
			if (got == "") != tt.empty {
				t.Errorf("format(%q) = %q, want empty=%v", tt.layout, got, tt.empty)
			}
		})
	}
}

func TestDefaultLogger(t *testing.T) {
	original := Default()

	defer func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	}()

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithFormat(FormatJSON))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			out := buf.String()
			if !strings.Contains(out, tt.level) || !strings.Contains(out, `"key":"value"`) {
				t.Errorf("output = %q", out)
			}
		})
	}

	buf.Reset()
	With(slog.String("scope", "pkg")).Info("scoped")

	if !strings.Contains(buf.String(), `"scope":"pkg"`) {
		t.Errorf("output = %q", buf.String())
	}
}
