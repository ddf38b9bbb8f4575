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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pelicanplatform/histjob/client"
)

var listCmd = &cobra.Command{
	Use:   "list USERNAME PASSWORD [JOB_ID]",
	Short: "List all current jobs",
	Long: `List all current jobs with their details, optionally only the job
with the given ID, followed by the account's delivery totals.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: listMain,
}

func listMain(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	apiClient, err := newAPIClient(args[0], args[1])
	if err != nil {
		return err
	}
	filter := ""
	if len(args) > 2 {
		filter = args[2]
	}

	jobs, err := apiClient.ListJobs(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	shown := 0
	for idx := range jobs.Jobs {
		job := &jobs.Jobs[idx]
		if filter != "" && job.UUID != filter {
			continue
		}
		if err := apiClient.FetchJobDetail(ctx, job); err != nil {
			return err
		}
		fmt.Fprint(out, client.SummarizeJob(job, 2))
		fmt.Fprintln(out)
		shown++
	}
	if filter != "" && shown == 0 {
		log.Warningf("No job with ID %s was found", filter)
	}
	fmt.Fprintln(out, client.DeliveredSummary(jobs.Delivered))
	return nil
}
