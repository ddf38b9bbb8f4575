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

	"github.com/spf13/cobra"

	"github.com/pelicanplatform/histjob/client"
)

var (
	acceptCmd = &cobra.Command{
		Use:   "accept JOB_ID USERNAME PASSWORD",
		Short: "Accept (start) a quoted job",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setStateMain(cmd, args, true)
		},
	}

	rejectCmd = &cobra.Command{
		Use:   "reject JOB_ID USERNAME PASSWORD",
		Short: "Reject a quoted job",
		Long: `Reject a quoted job.  A job that is already rejected is left alone
and no request is sent.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setStateMain(cmd, args, false)
		},
	}
)

func setStateMain(cmd *cobra.Command, args []string, accept bool) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()
	id := args[0]

	apiClient, err := newAPIClient(args[1], args[2])
	if err != nil {
		return err
	}

	if accept {
		fmt.Fprintln(out, "Accepting job", id)
	} else {
		fmt.Fprintln(out, "Rejecting job", id)
	}
	job, err := apiClient.ResolveJob(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Job info:")
	fmt.Fprint(out, client.SummarizeJob(job, 2))

	result, err := apiClient.ChangeJobState(cmd.Context(), job, accept)
	if err != nil {
		return err
	}
	if result.AlreadyRejected {
		fmt.Fprintln(out, "Job has already been rejected.")
		return nil
	}
	fmt.Fprintf(out, "Job status: %s: %s\n", result.Status, result.StatusMessage)
	return nil
}
