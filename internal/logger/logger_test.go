package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:       slog.LevelInfo,
		Environment: "production",
		Writer:      &buf,
	})

	log.Info("scrap uploaded", "scrap_id", "scrap:V1StGXR8_Z5jdHi6B-myT")

	out := buf.String()
	assert.Contains(t, out, `"msg":"scrap uploaded"`)
	assert.Contains(t, out, `"scrap_id":"scrap:V1StGXR8_Z5jdHi6B-myT"`)
}

func TestNew_DevelopmentUsesConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:       slog.LevelInfo,
		Environment: "development",
		Writer:      &buf,
	})

	log.Info("book published")

	out := buf.String()
	assert.Contains(t, out, "book published")
	assert.Contains(t, out, colorGreen, "console output carries ANSI colors")
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:       slog.LevelInfo,
		Format:      "json",
		Environment: "development",
		Writer:      &buf,
	})

	log.Info("cascade complete")

	assert.Contains(t, buf.String(), `"msg":"cascade complete"`)
	assert.NotContains(t, buf.String(), colorReset)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestConsoleHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestConsoleHandler_RendersAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Info("friend request accepted",
		"sender", "author:abc",
		"recipient", "author:def",
		"pending", 0,
	)

	out := buf.String()
	assert.Contains(t, out, "friend request accepted")
	assert.Contains(t, out, "sender=")
	assert.Contains(t, out, "author:abc")
	assert.Contains(t, out, "pending=")
	assert.Contains(t, out, "INFO")
}

func TestConsoleHandler_QuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Info("book indexed", "title", "Crossing the Alps")

	assert.Contains(t, buf.String(), `"Crossing the Alps"`)
}

func TestConsoleHandler_LevelTags(t *testing.T) {
	tests := []struct {
		level slog.Level
		tag   string
	}{
		{slog.LevelDebug, "DEBUG"},
		{slog.LevelInfo, "INFO"},
		{slog.LevelWarn, "WARN"},
		{slog.LevelError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(newConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			log.Log(context.Background(), tt.level, "checkpoint")
			assert.Contains(t, buf.String(), tt.tag)
		})
	}
}

func TestConsoleHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	log := slog.New(h.WithAttrs([]slog.Attr{
		slog.String("component", "cascade"),
	}))
	log.Info("deleting author", "author_id", "author:abc")

	out := buf.String()
	assert.Contains(t, out, "component=")
	assert.Contains(t, out, "cascade")
	assert.Contains(t, out, "author_id=")

	// Bound attrs must not leak back into the parent handler.
	buf.Reset()
	slog.New(h).Info("plain")
	assert.NotContains(t, buf.String(), "component=")
}

func TestConsoleHandler_GroupsBecomeDottedKeys(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	require.Same(t, slog.Handler(h), h.WithGroup(""))

	log := slog.New(h.WithGroup("request"))
	log.Info("handled", "method", "POST")

	assert.Contains(t, buf.String(), "request.method=")
}

func TestConsoleHandler_Source(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newConsoleHandler(&buf, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	}))

	log.Info("store opened")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestConsoleHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Debug("skipping unresolvable action")
	log.Info("push delivered")
	log.Warn("push queue full, dropping notification")
	log.Error("push gateway rejected notification")

	out := buf.String()
	assert.NotContains(t, out, "skipping unresolvable action")
	assert.NotContains(t, out, "push delivered")
	assert.Contains(t, out, "push queue full")
	assert.Contains(t, out, "push gateway rejected")
}

func TestJSONFormat_TrimsSourcePath(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Level:     slog.LevelInfo,
		Format:    "json",
		AddSource: true,
		Writer:    &buf,
	})

	log.Info("seeding store")

	out := buf.String()
	assert.Contains(t, out, "logger_test.go")
	assert.False(t, strings.Contains(out, "/internal/logger/"),
		"source paths must not leak the build tree")
}
