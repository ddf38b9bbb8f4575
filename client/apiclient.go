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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pelicanplatform/histjob/config"
)

type (
	// Credentials are the HTTP basic auth credentials for one invocation.
	Credentials struct {
		Username string
		Password string
		// Supplied marks credentials taken from the command line; they are
		// sent even when one of them is empty.
		Supplied bool
	}

	// APIClient talks JSON to the historical job API
	APIClient struct {
		baseURL    *url.URL
		creds      Credentials
		httpClient *http.Client
	}

	APIOption func(*APIClient)

	// MalformedResponseError is returned when the server replies with a body
	// that cannot be decoded as JSON.
	MalformedResponseError struct {
		Method     string
		URL        string
		StatusCode int
		Err        error
	}
)

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s %s returned status %d with a malformed JSON body: %v", e.Method, e.URL, e.StatusCode, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (c Credentials) complete() bool {
	return c.Supplied || (c.Username != "" && c.Password != "")
}

// WithTransport overrides the round tripper; by default the process-wide
// transport from the config package is used.
func WithTransport(tr http.RoundTripper) APIOption {
	return func(c *APIClient) {
		c.httpClient = &http.Client{Transport: tr}
	}
}

// NewAPIClient creates a client rooted at endpoint.  Relative request paths
// are resolved beneath it, so the endpoint is treated as a directory.
func NewAPIClient(endpoint string, creds Credentials, opts ...APIOption) (*APIClient, error) {
	baseURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid API endpoint %q", endpoint)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.Errorf("API endpoint %q must be an absolute URL", endpoint)
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	c := &APIClient{
		baseURL: baseURL,
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: config.GetTransport()}
	}
	return c, nil
}

// Endpoint returns the base URL requests are resolved against
func (c *APIClient) Endpoint() string {
	return c.baseURL.String()
}

// Transport returns the round tripper used for API calls
func (c *APIClient) Transport() http.RoundTripper {
	return c.httpClient.Transport
}

// resolveURL turns a request path into a full URL.  Absolute URLs (as handed
// out by the server in jobURL, dataURL and urlList) override the endpoint.
func (c *APIClient) resolveURL(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", errors.Wrapf(err, "invalid request path %q", target)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// GetJSON issues a GET and decodes the JSON reply into out
func (c *APIClient) GetJSON(ctx context.Context, target string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, target, nil, out)
}

// PutJSON issues a PUT with payload JSON-encoded and decodes the reply into out
func (c *APIClient) PutJSON(ctx context.Context, target string, payload, out interface{}) error {
	return c.doJSON(ctx, http.MethodPut, target, payload, out)
}

// PostJSON issues a POST with payload JSON-encoded and decodes the reply into out
func (c *APIClient) PostJSON(ctx context.Context, target string, payload, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, target, payload, out)
}

func (c *APIClient) doJSON(ctx context.Context, method, target string, payload, out interface{}) error {
	reqURL, err := c.resolveURL(target)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.creds.complete() {
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	} else {
		log.Debugln("Username or password missing; sending unauthenticated request to", reqURL)
	}

	log.Debugf("%s %s", method, reqURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to send %s request to %s", method, reqURL)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read response from %s", reqURL)
	}
	log.Debugf("%s %s replied with status %d (%d bytes)", method, reqURL, resp.StatusCode, len(respBody))

	// Error replies carry a JSON body too, so the status code is left for the
	// caller to interpret through the decoded document.
	if err := json.Unmarshal(respBody, out); err != nil {
		return &MalformedResponseError{
			Method:     method,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return nil
}
