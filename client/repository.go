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
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// JobsPath is the job collection resource, relative to the account endpoint
const JobsPath = "jobs.json"

var ErrJobNotFound = errors.New("job not found")

type jobListResponse struct {
	JobList
	Error  json.RawMessage `json:"error,omitempty"`
	Reason Scalar          `json:"reason,omitempty"`
}

// ListJobs fetches the job collection.
func (c *APIClient) ListJobs(ctx context.Context) (*JobList, error) {
	var resp jobListResponse
	if err := c.GetJSON(ctx, JobsPath, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to list jobs")
	}
	if hasError(resp.Error) {
		return nil, errors.Errorf("failed to list jobs: server replied with an error: %s", errorReason(resp.Error, resp.Reason))
	}
	if resp.Jobs == nil {
		return nil, errors.New("failed to list jobs: the server reply has no jobs collection")
	}
	return &resp.JobList, nil
}

// FetchJobDetail merges the detail document at job.JobURL into job.  Keys in
// the detail document replace the listed values; keys it omits are kept.  A
// job without a JobURL is left untouched.
func (c *APIClient) FetchJobDetail(ctx context.Context, job *Job) error {
	if job.JobURL == "" {
		return nil
	}
	detailURL, err := url.Parse(job.JobURL)
	if err != nil || !detailURL.IsAbs() {
		return errors.Errorf("job %s has an invalid jobURL %q", job.UUID, job.JobURL)
	}
	if err := c.GetJSON(ctx, job.JobURL, job); err != nil {
		return errors.Wrapf(err, "failed to fetch details of job %s", job.UUID)
	}
	return nil
}

// ResolveJob finds the job with the given ID in the job collection and merges
// in its detail document.
func (c *APIClient) ResolveJob(ctx context.Context, id string) (*Job, error) {
	jobs, err := c.ListJobs(ctx)
	if err != nil {
		return nil, err
	}

	var found *Job
	for idx := range jobs.Jobs {
		if jobs.Jobs[idx].UUID == id {
			found = &jobs.Jobs[idx]
			break
		}
	}
	if found == nil {
		return nil, errors.Wrapf(ErrJobNotFound, "could not find job with ID %s", id)
	}

	job := *found
	if err := c.FetchJobDetail(ctx, &job); err != nil {
		return nil, err
	}
	log.Debugf("Resolved job %s with status %q", id, job.Status)
	return &job, nil
}
