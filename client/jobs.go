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
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

type (
	// Scalar holds a JSON string, number or boolean in its textual form.
	// The API is inconsistent about quoting numeric fields, so counts, sizes
	// and durations are kept as text; the empty Scalar means "absent".
	Scalar string

	Rule struct {
		Value string `json:"value" yaml:"value"`
		Tag   string `json:"tag,omitempty" yaml:"tag,omitempty"`
	}

	// JobRequest is the payload submitted to request a quote for a new job.
	JobRequest struct {
		Publisher  string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
		StreamType string `json:"streamType,omitempty" yaml:"streamType,omitempty"`
		DataFormat string `json:"dataFormat,omitempty" yaml:"dataFormat,omitempty"`
		FromDate   string `json:"fromDate,omitempty" yaml:"fromDate,omitempty"`
		ToDate     string `json:"toDate,omitempty" yaml:"toDate,omitempty"`
		Title      string `json:"title,omitempty" yaml:"title,omitempty"`
		Rules      []Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
	}

	Quote struct {
		EstimatedActivityCount Scalar `json:"estimatedActivityCount,omitempty"`
		EstimatedDurationHours Scalar `json:"estimatedDurationHours,omitempty"`
		EstimatedFileSizeMb    Scalar `json:"estimatedFileSizeMb,omitempty"`
		ExpiresAt              string `json:"expiresAt,omitempty"`
	}

	Results struct {
		ActivityCount Scalar `json:"activityCount,omitempty"`
		FileCount     Scalar `json:"fileCount,omitempty"`
		FileSizeMb    Scalar `json:"fileSizeMb,omitempty"`
		CompletedAt   string `json:"completedAt,omitempty"`
		ExpiresAt     string `json:"expiresAt,omitempty"`
		DataURL       string `json:"dataURL,omitempty"`
	}

	// Job is a historical job as reported by the server.  The fields after
	// JobURL are only filled in once the detail document has been merged.
	Job struct {
		UUID            string   `json:"uuid,omitempty"`
		Title           string   `json:"title,omitempty"`
		Account         string   `json:"account,omitempty"`
		Publisher       string   `json:"publisher,omitempty"`
		StreamType      string   `json:"streamType,omitempty"`
		DataFormat      string   `json:"dataFormat,omitempty"`
		FromDate        string   `json:"fromDate,omitempty"`
		ToDate          string   `json:"toDate,omitempty"`
		RequestedBy     string   `json:"requestedBy,omitempty"`
		RequestedAt     string   `json:"requestedAt,omitempty"`
		Status          Scalar   `json:"status,omitempty"`
		StatusMessage   string   `json:"statusMessage,omitempty"`
		JobURL          string   `json:"jobURL,omitempty"`
		Rules           []Rule   `json:"rules,omitempty"`
		PercentComplete Scalar   `json:"percentComplete,omitempty"`
		Quote           *Quote   `json:"quote,omitempty"`
		Results         *Results `json:"results,omitempty"`
	}

	Delivered struct {
		JobCount      Scalar `json:"jobCount,omitempty"`
		ActivityCount Scalar `json:"activityCount,omitempty"`
		Since         string `json:"since,omitempty"`
	}

	JobList struct {
		Jobs      []Job      `json:"jobs"`
		Delivered *Delivered `json:"delivered,omitempty"`
	}

	// ResultIndex is the manifest of result files for a completed job.
	ResultIndex struct {
		URLCount Scalar   `json:"urlCount,omitempty"`
		URLList  []string `json:"urlList"`
	}
)

const (
	StatusRejected = "rejected"
	StatusError    = "error"
)

func (s *Scalar) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*s = ""
	case trimmed[0] == '"':
		var str string
		if err := json.Unmarshal(trimmed, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	case trimmed[0] == '{' || trimmed[0] == '[':
		return errors.Errorf("expected a scalar JSON value, got %s", trimmed)
	default:
		*s = Scalar(trimmed)
	}
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s Scalar) String() string {
	return string(s)
}

func (s Scalar) IsSet() bool {
	return s != ""
}

// Int64 interprets the scalar as a whole number; "12", "12.0" and 12 all
// yield 12.
func (s Scalar) Int64() (int64, error) {
	if val, err := strconv.ParseInt(string(s), 10, 64); err == nil {
		return val, nil
	}
	val, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%q is not a number", string(s))
	}
	return int64(val), nil
}

// IsComplete reports whether the job has a results record that can be
// downloaded.
func (job *Job) IsComplete() bool {
	return job != nil && job.Results != nil && job.Results.DataURL != ""
}
