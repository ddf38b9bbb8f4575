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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-kit/log/term"
	log "github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/pelicanplatform/histjob/client"
)

// downloadProgress renders the per-file progress of a result download: a bar
// when out is a terminal, one line per file otherwise.
type downloadProgress struct {
	ctx      context.Context
	out      io.Writer
	name     string
	useBar   bool
	failed   atomic.Int64
	last     time.Time
	progress *mpb.Progress
	bar      *mpb.Bar
	// Set when log output was moved onto the progress container
	logRedirected bool
}

func newDownloadProgress(ctx context.Context, out io.Writer, name string) *downloadProgress {
	return &downloadProgress{
		ctx:    ctx,
		out:    out,
		name:   name,
		useBar: term.IsTerminal(out),
		last:   time.Now(),
	}
}

func (dp *downloadProgress) callback(outcome client.ChunkOutcome, completed, total int) {
	if outcome.Err != nil {
		dp.failed.Add(1)
	}
	if !dp.useBar {
		fmt.Fprintf(dp.out, "%d/%d (%.1f%%)\n", completed, total, client.Percent(completed, total))
		return
	}

	if dp.bar == nil {
		dp.launchDisplay(total)
	}
	now := time.Now()
	dp.bar.EwmaIncrement(now.Sub(dp.last))
	dp.last = now
}

func (dp *downloadProgress) launchDisplay(total int) {
	dp.progress = mpb.NewWithContext(dp.ctx, mpb.WithOutput(dp.out))
	// Log lines would otherwise tear through the bar
	if log.StandardLogger().Out == os.Stderr {
		log.SetOutput(dp.progress)
		dp.logRedirected = true
	}
	log.Debugln("Launch progress bar display")

	dp.bar = dp.progress.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(dp.name, decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d files"),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
			decor.Any(func(decor.Statistics) string {
				if failed := dp.failed.Load(); failed > 0 {
					return fmt.Sprintf(" (%d failed)", failed)
				}
				return ""
			}),
			decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 15), " done"),
		),
	)
}

func (dp *downloadProgress) shutdown() {
	if dp.progress == nil {
		return
	}
	if !dp.bar.Completed() {
		dp.bar.Abort(false)
	}
	dp.progress.Wait()
	if dp.logRedirected {
		log.SetOutput(os.Stderr)
	}
}
