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
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelicanplatform/histjob/param"
)

func TestBufferedLogsFlushToFile(t *testing.T) {
	param.Reset()
	ResetLogFlush()
	t.Cleanup(func() {
		CloseLogger()
		param.Reset()
		ResetLogFlush()
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	logFile := filepath.Join(t.TempDir(), "logs", "histjob.log")
	require.NoError(t, param.Set(param.Logging_LogLocation.GetName(), logFile))

	SetupLogBuffering()
	log.SetLevel(log.DebugLevel)
	log.Infoln("buffered info message")
	log.Debugln("buffered debug message")

	// Nothing reaches the file before the flush
	assert.NoFileExists(t, logFile)

	// Entries below the final level are dropped on replay
	log.SetLevel(log.InfoLevel)
	require.NoError(t, FlushLogs(true))
	log.Warningln("direct warning")

	contents, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "buffered info message")
	assert.NotContains(t, string(contents), "buffered debug message")
	assert.Contains(t, string(contents), "direct warning")

	for _, hooks := range log.StandardLogger().Hooks {
		for _, hook := range hooks {
			_, isBuffer := hook.(*BufferedLogHook)
			assert.False(t, isBuffer, "the buffering hook should be removed after the flush")
		}
	}

	// Later flushes are no-ops
	require.NoError(t, FlushLogs(false))
}

func TestFlushLogsToStderr(t *testing.T) {
	param.Reset()
	ResetLogFlush()
	t.Cleanup(func() {
		param.Reset()
		ResetLogFlush()
	})

	require.NoError(t, FlushLogs(true))
	assert.Equal(t, os.Stderr, log.StandardLogger().Out)
}
