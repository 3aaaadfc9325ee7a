package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// consoleHandler writes one human-readable line per record:
//
//	2026-04-01 12:00:00 INFO tracker: title recognized query="Frieren" match_kind=exact
//
// The component attribute is lifted in front of the message. Attributes added
// through WithAttrs are rendered once and reused for every record.
type consoleHandler struct {
	out       *lockedWriter
	level     slog.Leveler
	addSource bool
	component string
	prefix    string // group path, "a.b." form
	preset    string // rendered WithAttrs fields, each with a leading space
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsoleHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{out: &lockedWriter{w: w}, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	component := h.component
	var fields strings.Builder
	fields.WriteString(h.preset)
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == FieldComponent && h.prefix == "" {
			component = plainValue(attr.Value)
			return true
		}
		appendField(&fields, h.prefix, attr)
		return true
	})

	var line strings.Builder
	line.Grow(96 + fields.Len())
	line.WriteString(ts.In(time.Local).Format(consoleTimeLayout))
	line.WriteByte(' ')
	line.WriteString(levelLabel(record.Level))
	line.WriteByte(' ')
	if component != "" {
		line.WriteString(component)
		line.WriteString(": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	line.WriteString(msg)
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&line, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	line.WriteString(fields.String())
	line.WriteByte('\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := io.WriteString(h.out.w, line.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	var b strings.Builder
	b.WriteString(h.preset)
	for _, attr := range attrs {
		if attr.Key == FieldComponent && h.prefix == "" {
			next.component = plainValue(attr.Value)
			continue
		}
		appendField(&b, h.prefix, attr)
	}
	next.preset = b.String()
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

func appendField(b *strings.Builder, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			appendField(b, prefix, member)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(attr.Key)
	b.WriteByte('=')
	b.WriteString(quoteIfNeeded(plainValue(attr.Value)))
}

// plainValue renders v without quoting.
func plainValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().In(time.Local).Format(consoleTimeLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
