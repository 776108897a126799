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
	"fmt"
	"io"
	"os"
)

// AsyncLogger decouples a caller (a FUSE callback thread, say) from a
// slow or momentarily blocked underlying writer (typically a rotating
// log file) by buffering writes through a channel and a single
// background goroutine. A full buffer drops the write rather than
// blocking the caller.
type AsyncLogger struct {
	w    io.WriteCloser
	ch   chan []byte
	done chan struct{}
}

// NewAsyncLogger returns an AsyncLogger writing to w through a channel
// of capacity bufferSize.
func NewAsyncLogger(w io.WriteCloser, bufferSize int) *AsyncLogger {
	l := &AsyncLogger{
		w:    w,
		ch:   make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for data := range l.ch {
		if _, err := l.w.Write(data); err != nil {
			return
		}
	}
}

// Write copies p and enqueues it for the background writer. If the
// buffer is full, the message is dropped and a warning is printed to
// stderr rather than blocking the caller.
func (l *AsyncLogger) Write(p []byte) (int, error) {
	data := make([]byte, len(p))
	copy(data, p)

	select {
	case l.ch <- data:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close drains any buffered writes and closes the underlying writer.
func (l *AsyncLogger) Close() error {
	close(l.ch)
	<-l.done
	return l.w.Close()
}
