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

package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cavaliercoder/grab"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type (
	// ChunkOutcome records what happened to one entry of a result index
	ChunkOutcome struct {
		// Position of the URL in the index, starting at 0
		Index int
		URL   string
		// Bytes appended to the output, including the trailing newline
		Bytes int64
		Err   error
	}

	// ProgressFunc is invoked after every index entry, successful or not
	ProgressFunc func(outcome ChunkOutcome, completed, total int)

	DownloadOption func(*downloadOptions)

	downloadOptions struct {
		progress   ProgressFunc
		scratchDir string
	}

	// DownloadReport summarises a finished result download
	DownloadReport struct {
		JobID        string
		OutputPath   string
		Outcomes     []ChunkOutcome
		Succeeded    int
		Failed       int
		BytesWritten int64
		Errors       *DownloadErrors
	}

	// chunkFetchFunc returns the decompressed contents of one result file
	chunkFetchFunc func(ctx context.Context, index int, url string) ([]byte, error)
)

var (
	ErrOutputExists  = errors.New("output file already exists")
	ErrJobIncomplete = errors.New("job is not complete")
)

// WithProgressCallback registers a callback invoked after each result file
func WithProgressCallback(cb ProgressFunc) DownloadOption {
	return func(opts *downloadOptions) {
		opts.progress = cb
	}
}

// WithScratchDir sets the parent directory for compressed files in flight;
// the system temporary directory is used otherwise.
func WithScratchDir(dir string) DownloadOption {
	return func(opts *downloadOptions) {
		opts.scratchDir = dir
	}
}

// Percent returns how far through total the download is, from 0 to 100
func Percent(completed, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(completed) * 100 / float64(total)
}

// DownloadResults fetches every result file of a completed job, gunzips each
// and appends it, newline-terminated, to outputPath in index order.
//
// Only unmet preconditions fail the call: an existing outputPath, an unknown
// job or a job without results.  A result file that cannot be fetched or
// decompressed is logged, recorded in the report and skipped.
func (c *APIClient) DownloadResults(ctx context.Context, id string, outputPath string, options ...DownloadOption) (*DownloadReport, error) {
	opts := downloadOptions{}
	for _, option := range options {
		option(&opts)
	}

	if _, err := os.Lstat(outputPath); err == nil {
		return nil, errors.Wrapf(ErrOutputExists, "refusing to overwrite %s", outputPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "unable to check output path %s", outputPath)
	}

	job, err := c.ResolveJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.IsComplete() {
		status := job.Status.String()
		if status == "" {
			status = "unknown"
		}
		return nil, errors.Wrapf(ErrJobIncomplete, "job %s has no results to download (status: %s)", id, status)
	}

	index, err := c.FetchResultIndex(ctx, job.Results.DataURL)
	if err != nil {
		return nil, err
	}

	scratchDir, err := os.MkdirTemp(opts.scratchDir, "histjob-"+filepath.Base(outputPath)+"-")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scratch directory for result files")
	}
	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			log.Warningln("Failed to remove scratch directory", scratchDir, ":", err)
		}
	}()

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, errors.Wrapf(ErrOutputExists, "refusing to overwrite %s", outputPath)
		}
		return nil, errors.Wrapf(err, "failed to create output file %s", outputPath)
	}
	defer out.Close()

	report := &DownloadReport{
		JobID:      id,
		OutputPath: outputPath,
		Errors:     NewDownloadErrors(),
	}
	report.Outcomes, err = c.writeResultFiles(ctx, out, index.URLList, scratchDir, opts.progress, report.Errors)
	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			report.Failed++
		} else {
			report.Succeeded++
		}
		report.BytesWritten += outcome.Bytes
	}
	if err != nil {
		return report, err
	}
	if err := out.Close(); err != nil {
		return report, errors.Wrapf(err, "failed to close output file %s", outputPath)
	}
	return report, nil
}

// Failures describes the accumulated per-file errors, newest first; it is
// empty when every file was appended.
func (r *DownloadReport) Failures() string {
	if r == nil || r.Errors == nil || r.Errors.Len() == 0 {
		return ""
	}
	return r.Errors.UserError()
}

// FetchResultIndex retrieves the list of result file URLs from a job's dataURL
func (c *APIClient) FetchResultIndex(ctx context.Context, dataURL string) (*ResultIndex, error) {
	var index ResultIndex
	if err := c.GetJSON(ctx, dataURL, &index); err != nil {
		return nil, errors.Wrap(err, "failed to fetch result index")
	}
	if index.URLList == nil {
		return nil, errors.Errorf("result index at %s has no urlList", dataURL)
	}
	if index.URLCount.IsSet() {
		if count, err := index.URLCount.Int64(); err != nil || count != int64(len(index.URLList)) {
			log.Infof("Result index reports %s files but lists %d URLs; downloading the listed URLs", index.URLCount, len(index.URLList))
		}
	}
	return &index, nil
}

// writeResultFiles layers logging, error accumulation and buffering over
// concatenateChunks
func (c *APIClient) writeResultFiles(ctx context.Context, out io.Writer, urls []string, scratchDir string, progress ProgressFunc, errs *DownloadErrors) ([]ChunkOutcome, error) {
	fetcher := newChunkFetcher(c.Transport(), scratchDir)
	writer := bufio.NewWriter(out)

	total := len(urls)
	outcomes, err := concatenateChunks(ctx, writer, urls, fetcher.fetch, func(outcome ChunkOutcome, completed, total int) {
		if outcome.Err != nil {
			log.Errorf("Failed to download result file %d of %d (%s): %v", outcome.Index+1, total, outcome.URL, outcome.Err)
			errs.AddError(errors.Wrapf(outcome.Err, "result file %d (%s)", outcome.Index+1, outcome.URL))
		} else {
			log.Debugf("Appended result file %d of %d (%d bytes)", outcome.Index+1, total, outcome.Bytes)
		}
		if progress != nil {
			progress(outcome, completed, total)
		}
	})
	if err != nil {
		return outcomes, err
	}
	if err := writer.Flush(); err != nil {
		return outcomes, errors.Wrap(err, "failed to write output file")
	}
	log.Debugf("Processed %d result files", total)
	return outcomes, nil
}

// concatenateChunks folds over urls in order, appending each decompressed
// chunk plus a newline to w.  A failed fetch only marks that chunk's outcome;
// a failed write to w ends the fold because later chunks cannot be stored.
func concatenateChunks(ctx context.Context, w io.Writer, urls []string, fetch chunkFetchFunc, progress ProgressFunc) ([]ChunkOutcome, error) {
	outcomes := make([]ChunkOutcome, 0, len(urls))
	for idx, chunkURL := range urls {
		outcome := ChunkOutcome{Index: idx, URL: chunkURL}
		data, err := fetch(ctx, idx, chunkURL)
		if err != nil {
			outcome.Err = err
		} else {
			written, err := writeChunk(w, data)
			outcome.Bytes = written
			if err != nil {
				outcomes = append(outcomes, outcome)
				return outcomes, errors.Wrapf(err, "failed to append result file %d to the output", idx+1)
			}
		}
		outcomes = append(outcomes, outcome)
		if progress != nil {
			progress(outcome, idx+1, len(urls))
		}
	}
	return outcomes, nil
}

func writeChunk(w io.Writer, data []byte) (int64, error) {
	n, err := w.Write(data)
	if err != nil {
		return int64(n), err
	}
	m, err := io.WriteString(w, "\n")
	return int64(n + m), err
}

type chunkFetcher struct {
	grabClient *grab.Client
	scratchDir string
}

func newChunkFetcher(tr http.RoundTripper, scratchDir string) *chunkFetcher {
	grabClient := grab.NewClient()
	grabClient.HTTPClient = &http.Client{Transport: tr}
	return &chunkFetcher{
		grabClient: grabClient,
		scratchDir: scratchDir,
	}
}

// fetch downloads one compressed result file with a plain GET (no
// credentials, no content type) and returns its decompressed contents.
// Nothing is returned unless the whole file decompressed cleanly.
func (cf *chunkFetcher) fetch(ctx context.Context, index int, chunkURL string) ([]byte, error) {
	dest := filepath.Join(cf.scratchDir, fmt.Sprintf("chunk-%06d.gz", index))
	defer os.Remove(dest)

	req, err := grab.NewRequest(dest, chunkURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid result file URL")
	}
	req = req.WithContext(ctx)
	req.NoResume = true
	// Keep net/http from transparently gunzipping; the payload is decompressed below.
	req.HTTPRequest.Header.Set("Accept-Encoding", "identity")

	resp := cf.grabClient.Do(req)
	if err := resp.Err(); err != nil {
		return nil, errors.Wrap(err, "fetch failed")
	}

	f, err := os.Open(resp.Filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open downloaded result file")
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "decompression failed")
	}
	defer gz.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, gz); err != nil {
		return nil, errors.Wrap(err, "decompression failed")
	}
	return buf.Bytes(), nil
}
