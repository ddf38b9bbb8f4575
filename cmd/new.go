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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pelicanplatform/histjob/client"
)

var newCmd = &cobra.Command{
	Use:   "new JOB_FILE USERNAME PASSWORD",
	Short: "Get a quote for a new job",
	Long: `Submit the job described in JOB_FILE and print the quote returned for
it.  The job file is JSON, or YAML when its name ends in .yaml or .yml.`,
	Args: cobra.ExactArgs(3),
	RunE: newMain,
}

// readJobFile loads a job request.  The payload is not validated; the server
// reports anything it does not accept.
func readJobFile(path string) (*client.JobRequest, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read job file")
	}

	req := &client.JobRequest{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(contents, req); err != nil {
			return nil, errors.Wrapf(err, "failed to parse YAML job file %s", path)
		}
	default:
		if err := json.Unmarshal(contents, req); err != nil {
			return nil, errors.Wrapf(err, "failed to parse JSON job file %s", path)
		}
	}
	return req, nil
}

func newMain(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()

	req, err := readJobFile(args[0])
	if err != nil {
		return err
	}
	apiClient, err := newAPIClient(args[1], args[2])
	if err != nil {
		return err
	}

	pretty, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	fmt.Fprintln(out, "Requesting quote for job:")
	fmt.Fprintln(out, string(pretty))
	fmt.Fprintln(out)

	result, err := apiClient.SubmitJob(cmd.Context(), req)
	if err != nil {
		return err
	}
	if result.Rejected {
		if result.Status.IsSet() {
			fmt.Fprintf(out, "Job rejected (status %s): %s\n", result.Status, result.Reason)
		} else {
			fmt.Fprintf(out, "Job rejected: %s\n", result.Reason)
		}
		return nil
	}

	fmt.Fprintln(out, "Gnip's job desc:")
	fmt.Fprint(out, client.SummarizeJob(result.Job, 0))
	return nil
}
