// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
)

// severityName maps a slog.Level to the fixed-width severity string this
// package's handlers emit, in place of slog's own "DEBUG"/"INFO" names
// (the custom Level* constants below don't line up with slog's).
func severityName(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return "TRACE"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// textHandler writes one line per record in the form:
//
//	time="YYYY/MM/DD hh:mm:ss.uuuuuu" severity=LEVEL message="prefix: msg"
//
// matching the fixed-width timestamp format the core's logger tests
// assert against.
type textHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  *slog.LevelVar
	prefix string
}

func newTextHandler(w io.Writer, level *slog.LevelVar, prefix string) *textHandler {
	return &textHandler{mu: &sync.Mutex{}, w: w, level: level, prefix: prefix}
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	line := fmt.Sprintf("time=%q severity=%s message=%q\n",
		r.Time.Format("2006/01/02 15:04:05.000000"), severityName(r.Level), h.prefix+r.Message)
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line)
	return err
}

func (h *textHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *textHandler) WithGroup(_ string) slog.Handler      { return h }

// jsonHandler writes one JSON object per record with a structured
// {seconds,nanos} timestamp (rather than slog's default RFC3339 string),
// matching the on-disk format the core's existing log tooling expects.
type jsonHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  *slog.LevelVar
	prefix string
}

func newJSONHandler(w io.Writer, level *slog.LevelVar, prefix string) *jsonHandler {
	return &jsonHandler{mu: &sync.Mutex{}, w: w, level: level, prefix: prefix}
}

func (h *jsonHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *jsonHandler) Handle(_ context.Context, r slog.Record) error {
	var buf []byte
	buf = append(buf, `{"timestamp":{"seconds":`...)
	buf = strconv.AppendInt(buf, r.Time.Unix(), 10)
	buf = append(buf, `,"nanos":`...)
	buf = strconv.AppendInt(buf, int64(r.Time.Nanosecond()), 10)
	buf = append(buf, `},"severity":"`...)
	buf = append(buf, severityName(r.Level)...)
	buf = append(buf, `","message":`...)
	buf = strconv.AppendQuote(buf, h.prefix+r.Message)
	buf = append(buf, "}\n"...)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *jsonHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *jsonHandler) WithGroup(_ string) slog.Handler      { return h }
