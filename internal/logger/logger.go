// Package logger configures the server's structured logging. Production
// emits JSON lines; everywhere else a compact colorized console format
// is used so local scrap uploads and cascade runs are readable.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	formatJSON    = "json"
	formatConsole = "console"
)

// ANSI codes used by the console handler.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorDim     = "\033[2m"
)

// Logger is the application logger handed out by the DI container.
type Logger struct {
	*slog.Logger
}

// Config selects output, format, and verbosity.
type Config struct {
	Writer      io.Writer // defaults to stdout
	Format      string    // "json" or "console"; empty picks by environment
	Environment string
	Level       slog.Level
	AddSource   bool
}

// New builds a logger from the configuration. When Format is empty,
// production gets JSON and every other environment gets the console
// handler.
func New(cfg Config) *Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	format := cfg.Format
	if format == "" {
		if cfg.Environment == "production" {
			format = formatJSON
		} else {
			format = formatConsole
		}
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if format == formatJSON {
		opts.ReplaceAttr = trimSource
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = newConsoleHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel maps a config string to a slog level. Unknown strings fall
// back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// trimSource keeps only the base name in source attributes so JSON logs
// don't carry build-machine paths.
func trimSource(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		if src, ok := a.Value.Any().(*slog.Source); ok {
			src.File = filepath.Base(src.File)
		}
	}
	return a
}

// consoleHandler renders records as
//
//	15:04:05.000 INFO  message key=value group.key=value
//
// with colors on time, level, and keys. Group names become dotted key
// prefixes rather than nesting.
type consoleHandler struct {
	opts         slog.HandlerOptions
	mu           *sync.Mutex
	out          io.Writer
	prefix       string // accumulated group path, e.g. "request."
	preformatted []byte // attrs bound via WithAttrs, already rendered
}

func newConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *consoleHandler {
	h := &consoleHandler{out: w, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	if !r.Time.IsZero() {
		buf = append(buf, colorDim...)
		buf = r.Time.AppendFormat(buf, "15:04:05.000")
		buf = append(buf, colorReset...)
		buf = append(buf, ' ')
	}

	tag, color := levelTag(r.Level)
	buf = append(buf, color...)
	buf = append(buf, tag...)
	buf = append(buf, colorReset...)
	buf = append(buf, ' ')

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		buf = append(buf, colorDim...)
		buf = append(buf, filepath.Base(frame.File)...)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(frame.Line), 10)
		buf = append(buf, colorReset...)
		buf = append(buf, ' ')
	}

	buf = append(buf, r.Message...)
	buf = append(buf, h.preformatted...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	pre := make([]byte, len(h.preformatted), len(h.preformatted)+64)
	copy(pre, h.preformatted)
	for _, a := range attrs {
		pre = appendAttr(pre, h.prefix, a)
	}
	next.preformatted = pre
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return buf
	}

	value := a.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		for _, member := range value.Group() {
			buf = appendAttr(buf, prefix+a.Key+".", member)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, colorCyan...)
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	buf = append(buf, colorReset...)

	s := value.String()
	if value.Kind() == slog.KindTime {
		s = value.Time().Format(time.RFC3339)
	}
	if strings.ContainsAny(s, " \"") {
		s = strconv.Quote(s)
	}
	return append(buf, s...)
}

// levelTag returns a fixed-width label so messages line up in the
// terminal.
func levelTag(level slog.Level) (tag, color string) {
	switch {
	case level >= slog.LevelError:
		return "ERROR", colorRed
	case level >= slog.LevelWarn:
		return "WARN ", colorYellow
	case level >= slog.LevelInfo:
		return "INFO ", colorGreen
	default:
		return "DEBUG", colorMagenta
	}
}
