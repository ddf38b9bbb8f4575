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
	"fmt"
	"strings"
)

// Continuation lines line up with the values of the labelled lines.
const summaryContinuation = "            "

// SummarizeJob renders job as human-readable text, one field per line, each
// line prefixed by indent spaces.  Optional fields that are absent produce no
// line at all.
func SummarizeJob(job *Job, indent int) string {
	if job == nil {
		job = &Job{}
	}
	lines := make([]string, 0, 16)
	add := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	if job.UUID != "" {
		add("Gnip ID:    %s", job.UUID)
	} else {
		add("Gnip ID:    (no ID yet)")
	}
	add("Title:      %q", job.Title)
	add("From %s to %s", job.FromDate, job.ToDate)
	add("Publisher:  %s", job.Publisher)
	if job.StreamType != "" || job.DataFormat != "" {
		add("Stream:     %s", formatStream(job.StreamType, job.DataFormat))
	}

	for idx, rule := range job.Rules {
		label := summaryContinuation
		if idx == 0 {
			label = "Rules:      "
		}
		add("%s%s", label, formatRule(rule))
	}

	if job.RequestedBy != "" {
		if job.RequestedAt != "" {
			add("Requested:  by %s at %s", job.RequestedBy, job.RequestedAt)
		} else {
			add("Requested:  by %s", job.RequestedBy)
		}
	}
	if job.Status.IsSet() {
		if job.StatusMessage != "" {
			add("Status:     %s: %s", job.Status, job.StatusMessage)
		} else {
			add("Status:     %s", job.Status)
		}
	}
	if job.PercentComplete.IsSet() {
		add("Completion: %s%%", job.PercentComplete)
	}

	if quote := job.Quote; quote != nil {
		estimate := make([]string, 0, 4)
		if quote.EstimatedActivityCount.IsSet() {
			estimate = append(estimate, fmt.Sprintf("%s activities", quote.EstimatedActivityCount))
		}
		if quote.EstimatedDurationHours.IsSet() {
			estimate = append(estimate, fmt.Sprintf("%s hours", quote.EstimatedDurationHours))
		}
		if quote.EstimatedFileSizeMb.IsSet() {
			estimate = append(estimate, fmt.Sprintf("%s MB", quote.EstimatedFileSizeMb))
		}
		if quote.ExpiresAt != "" {
			estimate = append(estimate, "expires at "+quote.ExpiresAt)
		}
		lines = append(lines, labelBlock("Estimate:   ", estimate)...)
	}

	if results := job.Results; results != nil {
		delivered := make([]string, 0, 5)
		if results.ActivityCount.IsSet() {
			delivered = append(delivered, fmt.Sprintf("%s activities", results.ActivityCount))
		}
		if results.FileCount.IsSet() {
			delivered = append(delivered, fmt.Sprintf("%s files", results.FileCount))
		}
		if results.FileSizeMb.IsSet() {
			delivered = append(delivered, fmt.Sprintf("%s MB", results.FileSizeMb))
		}
		if results.CompletedAt != "" {
			delivered = append(delivered, "completed at "+results.CompletedAt)
		}
		if results.ExpiresAt != "" {
			delivered = append(delivered, "expires at "+results.ExpiresAt)
		}
		lines = append(lines, labelBlock("Results:    ", delivered)...)
	}

	prefix := strings.Repeat(" ", max(indent, 0))
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// DeliveredSummary renders the delivery totals of a job listing
func DeliveredSummary(delivered *Delivered) string {
	if delivered == nil {
		delivered = &Delivered{}
	}
	jobCount, activityCount := delivered.JobCount, delivered.ActivityCount
	if !jobCount.IsSet() {
		jobCount = "0"
	}
	if !activityCount.IsSet() {
		activityCount = "0"
	}
	return fmt.Sprintf("%s jobs, %s activities delivered since %s", jobCount, activityCount, delivered.Since)
}

func labelBlock(label string, values []string) []string {
	block := make([]string, 0, len(values))
	for idx, value := range values {
		if idx == 0 {
			block = append(block, label+value)
		} else {
			block = append(block, summaryContinuation+value)
		}
	}
	return block
}

func formatStream(streamType, dataFormat string) string {
	switch {
	case streamType == "":
		return "(" + dataFormat + ")"
	case dataFormat == "":
		return streamType
	default:
		return streamType + " (" + dataFormat + ")"
	}
}

func formatRule(rule Rule) string {
	if rule.Tag != "" {
		return fmt.Sprintf("%s [tag: %s]", rule.Value, rule.Tag)
	}
	return rule.Value
}
