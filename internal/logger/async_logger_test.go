// Copyright 2024 Google Inc. All Rights Reserved.
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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

// captureStderr captures everything written to os.Stderr while f runs.
func captureStderr(f func()) string {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		os.Stderr = oldStderr
	}()

	f()
	w.Close()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	r.Close()
	return buf.String()
}

func TestAsyncLogger_WriteAndClose(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "test.log")
	lj := &lumberjack.Logger{Filename: logPath}
	asyncLogger := NewAsyncLogger(lj, 10)

	fmt.Fprintln(asyncLogger, "mounting /src at /mnt")
	fmt.Fprintln(asyncLogger, "did-mount /mnt")
	fmt.Fprintln(asyncLogger, "did-unmount /mnt")
	require.NoError(t, asyncLogger.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	expected := "mounting /src at /mnt\ndid-mount /mnt\ndid-unmount /mnt\n"
	assert.Equal(t, expected, string(content))
}

// pausingWriter blocks every Write until resume is closed, letting a
// test pin the AsyncLogger's background goroutine mid-write so it can
// fill the channel buffer deterministically instead of racing against
// the writer goroutine.
type pausingWriter struct {
	started chan struct{}
	resume  chan struct{}
	once    sync.Once

	mu   sync.Mutex
	data []byte
}

func newPausingWriter() *pausingWriter {
	return &pausingWriter{
		started: make(chan struct{}),
		resume:  make(chan struct{}),
	}
}

func (w *pausingWriter) Write(p []byte) (int, error) {
	w.once.Do(func() { close(w.started) })
	<-w.resume

	w.mu.Lock()
	w.data = append(w.data, p...)
	w.mu.Unlock()
	return len(p), nil
}

func (w *pausingWriter) Close() error { return nil }

// TestAsyncLogger_DropsWhenBufferFull pins the background writer inside
// its first Write call so the channel fills deterministically, then
// checks that the overflow message is dropped with a stderr warning
// instead of blocking the caller.
func TestAsyncLogger_DropsWhenBufferFull(t *testing.T) {
	w := newPausingWriter()
	asyncLogger := NewAsyncLogger(w, 2)

	fmt.Fprintln(asyncLogger, "first") // picked up by the goroutine, which blocks in Write
	<-w.started

	fmt.Fprintln(asyncLogger, "second") // fits in the now-empty channel buffer
	fmt.Fprintln(asyncLogger, "third")  // fills the channel buffer (capacity 2)

	stderr := captureStderr(func() {
		fmt.Fprintln(asyncLogger, "fourth") // buffer full: dropped
	})
	assert.Contains(t, stderr, "asynclogger: log buffer is full, dropping message.")

	close(w.resume)
	require.NoError(t, asyncLogger.Close())

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Contains(t, string(w.data), "first")
	assert.NotContains(t, string(w.data), "fourth")
}
