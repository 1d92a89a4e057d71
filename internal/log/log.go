// SPDX-License-Identifier: Unlicense OR MIT

// Package log configures the process-wide structured logger.
package log

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel converts a level name (debug, info, warn, error) into a
// slog.Level. The empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log: unknown level %q", s)
}

// NewHandler returns a text handler writing to w. Timestamps are left out
// when the sink adds its own.
func NewHandler(w io.Writer, level slog.Leveler, timestamps bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if !timestamps {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
	}
	return slog.NewTextHandler(w, opts)
}

// Priority is an Android log priority.
type Priority int

// Priorities from android/log.h.
const (
	PriorityDebug Priority = 3
	PriorityInfo  Priority = 4
	PriorityWarn  Priority = 5
	PriorityError Priority = 6
)

// MaxLine is the longest line the platform log keeps.
const MaxLine = 1023

// linePriority returns the priority of the level attribute of a line
// written by a text handler, or def for other lines.
func linePriority(line []byte, def Priority) Priority {
	i := bytes.Index(line, []byte("level="))
	if i < 0 || i > 0 && line[i-1] != ' ' {
		return def
	}
	v := line[i+len("level="):]
	switch {
	case bytes.HasPrefix(v, []byte("DEBUG")):
		return PriorityDebug
	case bytes.HasPrefix(v, []byte("INFO")):
		return PriorityInfo
	case bytes.HasPrefix(v, []byte("WARN")):
		return PriorityWarn
	case bytes.HasPrefix(v, []byte("ERROR")):
		return PriorityError
	}
	return def
}

// pump splits r into lines of at most MaxLine bytes and writes each with
// its priority until r fails. The slice passed to write is reused.
func pump(r io.Reader, def Priority, write func(p Priority, line []byte)) {
	br := bufio.NewReaderSize(r, MaxLine)
	prio := def
	cont := false
	for {
		line, more, err := br.ReadLine()
		if err != nil {
			return
		}
		// Continuations of a long line keep its priority.
		if !cont {
			prio = linePriority(line, def)
		}
		write(prio, line)
		cont = more
	}
}
