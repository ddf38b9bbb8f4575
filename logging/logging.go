/***************************************************************
 *
 * Copyright (C) 2025, Pelican Project, Morgridge Institute for Research
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License.  You may
 * obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 ***************************************************************/

package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/go-kit/log/term"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pelicanplatform/histjob/param"
)

// BufferedLogHook buffers log entries until they are flushed
type BufferedLogHook struct {
	mu      sync.Mutex
	entries []*log.Entry
	flushed atomic.Bool
}

var (
	bufferedHook atomic.Pointer[BufferedLogHook]
	flushOnce    sync.Once
	logFHandle   *os.File
)

// Reset function intended for unit tests to be able to
// reset log flush state.
func ResetLogFlush() {
	flushOnce = sync.Once{}
}

func NewBufferedLogHook() *BufferedLogHook {
	return &BufferedLogHook{
		entries: make([]*log.Entry, 0),
	}
}

// Fire is called on every log entry
func (hook *BufferedLogHook) Fire(entry *log.Entry) error {
	if hook.flushed.Load() {
		return nil
	}
	hook.mu.Lock()
	defer hook.mu.Unlock()
	hook.entries = append(hook.entries, entry)
	return nil
}

// Levels defines which log levels this hook applies to
func (hook *BufferedLogHook) Levels() []log.Level {
	return log.AllLevels
}

// SetupLogBuffering discards log output until FlushLogs is called; entries
// emitted before the configuration is read are replayed at flush time.
func SetupLogBuffering() {
	log.SetOutput(io.Discard)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})

	hook := NewBufferedLogHook()
	if bufferedHook.CompareAndSwap(nil, hook) {
		log.AddHook(hook)
	}
}

// FlushLogs points logrus at its final destination (Logging.LogLocation when
// pushToFile is set, stderr otherwise) and replays any buffered entries.
func FlushLogs(pushToFile bool) (err error) {
	flushOnce.Do(func() {
		logLocation := param.Logging_LogLocation.GetString()
		if pushToFile && logLocation != "" {
			if dir := filepath.Dir(logLocation); dir != "" {
				if err = os.MkdirAll(dir, 0750); err != nil {
					err = errors.Wrapf(err, "failed to access/create log directory %s", dir)
					return
				}
			}
			var f *os.File
			f, err = os.OpenFile(logLocation, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0640)
			if err != nil {
				err = errors.Wrapf(err, "failed to access log file %s", logLocation)
				return
			}
			logFHandle = f
			log.SetOutput(f)
			log.SetFormatter(&log.TextFormatter{
				FullTimestamp:          true,
				DisableColors:          true,
				DisableLevelTruncation: true,
			})
		} else {
			log.SetOutput(os.Stderr)
			log.SetFormatter(&log.TextFormatter{
				FullTimestamp:          true,
				ForceColors:            term.IsTerminal(os.Stderr),
				DisableLevelTruncation: true,
			})
		}

		hook := bufferedHook.Load()
		if hook == nil || hook.flushed.Load() {
			return
		}
		hook.flushed.Store(true)

		hook.mu.Lock()
		entries := hook.entries
		hook.entries = nil
		hook.mu.Unlock()

		for _, entry := range entries {
			if !log.IsLevelEnabled(entry.Level) {
				continue
			}
			if formatted, fmtErr := log.StandardLogger().Formatter.Format(entry); fmtErr == nil {
				_, _ = log.StandardLogger().Out.Write(formatted)
			}
		}
		remaining := make(log.LevelHooks)
		for level, hooks := range log.StandardLogger().Hooks {
			for _, h := range hooks {
				if h != log.Hook(hook) {
					remaining[level] = append(remaining[level], h)
				}
			}
		}
		log.StandardLogger().ReplaceHooks(remaining)
	})
	return
}

// For unit tests, guarantees the filehandle is closed so tests can clean up
// after themselves.
func CloseLogger() {
	if logFHandle != nil {
		_ = logFHandle.Close()
		logFHandle = nil
	}
}
