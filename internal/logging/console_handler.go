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

// consoleHandler writes one line per record:
//
//	2026-01-02 15:04:05.000 WARN  launcher/install-requirements: step failed exit_code=2 error="pip exited"
//
// Component and step lead the line; run IDs only appear on debug records.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool

	component string
	step      string
	runID     string
	prefix    string // open groups, dot-terminated
	fields    []byte // preformatted WithAttrs fields
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	line := *h
	line.fields = append([]byte(nil), h.fields...)
	record.Attrs(func(attr slog.Attr) bool {
		line.absorb(line.prefix, attr)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	buf := make([]byte, 0, 128+len(line.fields))
	buf = append(buf, formatTimestamp(ts)...)
	buf = append(buf, ' ')
	buf = append(buf, fmt.Sprintf("%-5s", levelLabel(record.Level))...)
	buf = append(buf, ' ')
	if scope := line.scope(); scope != "" {
		buf = append(buf, scope...)
		buf = append(buf, ": "...)
	}
	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}
	buf = append(buf, message...)
	buf = append(buf, line.fields...)
	if line.runID != "" && record.Level < slog.LevelInfo {
		buf = appendField(buf, FieldRunID, slog.StringValue(line.runID))
	}
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil && src.File != "" {
			buf = appendField(buf, "caller", slog.StringValue(filepath.Base(src.File)+":"+strconv.Itoa(src.Line)))
		}
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.fields = append([]byte(nil), h.fields...)
	for _, attr := range attrs {
		clone.absorb(clone.prefix, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// absorb routes the well-known keys into the line header and formats the rest.
func (h *consoleHandler) absorb(prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, child := range attr.Value.Group() {
			h.absorb(prefix, child)
		}
		return
	}
	if prefix == "" {
		switch attr.Key {
		case FieldComponent:
			h.component = attr.Value.String()
			return
		case FieldStep:
			h.step = attr.Value.String()
			return
		case FieldRunID:
			h.runID = attr.Value.String()
			return
		}
	}
	h.fields = appendField(h.fields, prefix+attr.Key, attr.Value)
}

func (h *consoleHandler) scope() string {
	switch {
	case h.component != "" && h.step != "":
		return h.component + "/" + h.step
	case h.component != "":
		return h.component
	default:
		return h.step
	}
}

func appendField(buf []byte, key string, value slog.Value) []byte {
	buf = append(buf, ' ')
	buf = append(buf, key...)
	buf = append(buf, '=')
	return append(buf, formatValue(value)...)
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = v.String()
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
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
