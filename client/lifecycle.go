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
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type (
	// SubmitResult is the outcome of a quote request.  A request the server
	// refuses is not a Go error: Rejected is set and Reason explains why.
	SubmitResult struct {
		Job      *Job
		Rejected bool
		Status   Scalar
		Reason   string
	}

	// StateChangeResult is the outcome of accepting or rejecting a job
	StateChangeResult struct {
		// Job as it was before the state change was requested
		Job             *Job
		AlreadyRejected bool
		Status          Scalar
		StatusMessage   string
	}

	submitResponse struct {
		Job
		Error  json.RawMessage `json:"error,omitempty"`
		Reason Scalar          `json:"reason,omitempty"`
	}

	stateChangeRequest struct {
		Status string `json:"status"`
	}

	stateChangeResponse struct {
		Status        Scalar          `json:"status,omitempty"`
		StatusMessage string          `json:"statusMessage,omitempty"`
		Error         json.RawMessage `json:"error,omitempty"`
		Reason        Scalar          `json:"reason,omitempty"`
	}
)

// SubmitJob requests a quote for a new job.  The payload is sent as-is; the
// server is the one validating it.
func (c *APIClient) SubmitJob(ctx context.Context, req *JobRequest) (*SubmitResult, error) {
	var resp submitResponse
	if err := c.PostJSON(ctx, JobsPath, req, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to submit job")
	}

	if hasError(resp.Error) || resp.Status == StatusError {
		reason := errorReason(resp.Error, resp.Reason)
		if reason == "" {
			reason = resp.StatusMessage
		}
		if reason == "" {
			reason = "no reason given"
		}
		log.Debugf("Job submission rejected by the server (status %q): %s", resp.Status, reason)
		return &SubmitResult{
			Rejected: true,
			Status:   resp.Status,
			Reason:   reason,
		}, nil
	}

	job := resp.Job
	return &SubmitResult{Job: &job, Status: job.Status}, nil
}

// SetJobState accepts or rejects the job with the given ID.  A job that has
// already been rejected is left alone and no request is made.
func (c *APIClient) SetJobState(ctx context.Context, id string, accept bool) (*StateChangeResult, error) {
	job, err := c.ResolveJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.ChangeJobState(ctx, job, accept)
}

// ChangeJobState sends the state change for a job already fetched with
// ResolveJob.
func (c *APIClient) ChangeJobState(ctx context.Context, job *Job, accept bool) (*StateChangeResult, error) {
	if job == nil {
		return nil, errors.New("no job to change the state of")
	}
	id := job.UUID
	if job.Status == StatusRejected {
		log.Debugf("Job %s is already rejected; not sending a state change", id)
		return &StateChangeResult{Job: job, AlreadyRejected: true, Status: job.Status, StatusMessage: job.StatusMessage}, nil
	}
	if job.JobURL == "" {
		return nil, errors.Errorf("job %s has no jobURL; cannot change its state", id)
	}

	payload := stateChangeRequest{Status: "reject"}
	if accept {
		payload.Status = "accept"
	}
	var resp stateChangeResponse
	if err := c.PutJSON(ctx, job.JobURL, payload, &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to %s job %s", payload.Status, id)
	}
	if hasError(resp.Error) {
		return nil, errors.Errorf("failed to %s job %s: server replied with an error: %s", payload.Status, id, errorReason(resp.Error, resp.Reason))
	}

	return &StateChangeResult{
		Job:           job,
		Status:        resp.Status,
		StatusMessage: resp.StatusMessage,
	}, nil
}

// hasError reports whether a reply's "error" field is present and non-empty.
// A top-level "reason" alone is informational and never marks a failure.
func hasError(rawErr json.RawMessage) bool {
	trimmed := bytes.TrimSpace(rawErr)
	switch string(trimmed) {
	case "", "null", "false", `""`:
		return false
	}
	return true
}

// errorReason extracts a human-readable message from the API's error
// conventions: an "error" that is either a string or an object carrying a
// message/reason, optionally accompanied by a top-level "reason".
func errorReason(rawErr json.RawMessage, reason Scalar) string {
	trimmed := bytes.TrimSpace(rawErr)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("false")) {
		return reason.String()
	}

	var msg string
	if err := json.Unmarshal(trimmed, &msg); err == nil {
		if msg == "" {
			return reason.String()
		}
		return msg
	}

	var obj struct {
		Message Scalar `json:"message"`
		Reason  Scalar `json:"reason"`
	}
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		if obj.Message.IsSet() {
			return obj.Message.String()
		}
		if obj.Reason.IsSet() {
			return obj.Reason.String()
		}
	}
	if reason.IsSet() {
		return reason.String()
	}
	return string(trimmed)
}
