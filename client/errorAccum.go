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
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cavaliercoder/grab"
)

type (
	TimestampedError struct {
		err       error
		timestamp time.Time
	}

	// A container object for the per-file failures of one result download.
	DownloadErrors struct {
		start  time.Time
		errors []error
	}
)

func (te *TimestampedError) Error() string {
	return te.err.Error()
}

func (te *TimestampedError) Unwrap() error {
	return te.err
}

// Create a new download error object
func NewDownloadErrors() *DownloadErrors {
	return &DownloadErrors{
		start:  time.Now(),
		errors: make([]error, 0),
	}
}

func (de *DownloadErrors) AddError(err error) {
	de.AddPastError(err, time.Now())
}

func (de *DownloadErrors) AddPastError(err error, timestamp time.Time) {
	if de.errors == nil {
		de.errors = make([]error, 0)
	}
	if err != nil {
		de.errors = append(de.errors, &TimestampedError{err: err, timestamp: timestamp})
	}
}

func (de *DownloadErrors) Len() int {
	return len(de.errors)
}

func (de *DownloadErrors) Unwrap() []error {
	return de.errors
}

func (de *DownloadErrors) Error() string {
	if len(de.errors) == 0 {
		return "download error unknown"
	}
	if len(de.errors) == 1 {
		return "download error: " + de.errors[0].Error()
	}
	errs := make([]string, len(de.errors))
	for idx, err := range de.errors {
		errs[idx] = err.Error()
	}
	return "download errors: [" + strings.Join(errs, ", ") + "]"
}

// Return a more refined, user-friendly error string, newest failure first
func (de *DownloadErrors) UserError() string {
	first := true
	lastError := de.start
	var errorsFormatted []string
	for idx, err := range de.errors {
		theError := err.(*TimestampedError)
		var errFmt string
		if len(de.errors) > 1 {
			errFmt = fmt.Sprintf("Failure #%v: %s", idx+1, theError.err.Error())
		} else {
			errFmt = theError.err.Error()
		}
		timeElapsed := theError.timestamp.Sub(lastError)
		timeFormat := timeElapsed.Truncate(100 * time.Millisecond).String()
		errFmt += " (" + timeFormat
		if first {
			errFmt += " since start)"
		} else {
			timeSinceStart := theError.timestamp.Sub(de.start)
			timeSinceStartFormat := timeSinceStart.Truncate(100 * time.Millisecond).String()
			errFmt += " elapsed, " + timeSinceStartFormat + " since start)"
		}
		lastError = theError.timestamp
		errorsFormatted = append(errorsFormatted, errFmt)
		first = false
	}

	reversed := make([]string, 0, len(errorsFormatted))
	for idx := len(errorsFormatted) - 1; idx >= 0; idx-- {
		reversed = append(reversed, errorsFormatted[idx])
	}
	return strings.Join(reversed, "; ")
}

// IsRetryable will return true if the error is likely to go away on its own:
// server-side HTTP failures, TLS alerts and network timeouts.
func IsRetryable(err error) bool {
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return true
	}

	var sce grab.StatusCodeError
	if errors.As(err, &sce) {
		switch int(sce) {
		case http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// Returns true if all errors are retryable.
// If no errors are present, then returns false
func (de *DownloadErrors) AllErrorsRetryable() bool {
	if len(de.errors) == 0 {
		return false
	}
	for _, err := range de.errors {
		if !IsRetryable(err) {
			return false
		}
	}
	return true
}
