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
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/pelicanplatform/histjob/client"
	"github.com/pelicanplatform/histjob/param"
)

var downloadCmd = &cobra.Command{
	Use:   "download JOB_ID OUTPUT_FILE USERNAME PASSWORD",
	Short: "Download files from a completed job",
	Long: `Download every result file of a completed job, decompress it and
append it to OUTPUT_FILE, which must not exist yet.  Files that fail to
download are reported and skipped.`,
	Args: cobra.ExactArgs(4),
	RunE: downloadMain,
}

func downloadMain(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	id, outputPath := args[0], args[1]

	apiClient, err := newAPIClient(args[2], args[3])
	if err != nil {
		return err
	}

	cfg, err := param.GetUnmarshaledConfig()
	if err != nil {
		return err
	}

	options := []client.DownloadOption{}
	if cfg.Download.ScratchDir != "" {
		options = append(options, client.WithScratchDir(cfg.Download.ScratchDir))
	}
	var pb *downloadProgress
	if cfg.Download.ShowProgress {
		pb = newDownloadProgress(ctx, out, filepath.Base(outputPath))
		options = append(options, client.WithProgressCallback(pb.callback))
	}

	report, err := apiClient.DownloadResults(ctx, id, outputPath, options...)
	if pb != nil {
		pb.shutdown()
	}
	if err != nil {
		return err
	}

	total := report.Succeeded + report.Failed
	fmt.Fprintf(out, "Wrote %d of %s (%s) to %s\n",
		report.Succeeded, english.Plural(total, "result file", ""), humanize.Bytes(uint64(report.BytesWritten)), outputPath)
	if report.Failed > 0 {
		fmt.Fprintf(out, "%s could not be downloaded: %s\n", english.Plural(report.Failed, "result file", ""), report.Failures())
		if report.Errors.AllErrorsRetryable() {
			fmt.Fprintln(out, "All failures look temporary; downloading again into a new file may succeed.")
		}
	}
	return nil
}
