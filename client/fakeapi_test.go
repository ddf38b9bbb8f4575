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
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves canned JSON documents by path and records every request
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]string
	// Raw (non-JSON) bodies, e.g. gzip chunks
	blobs    map[string][]byte
	statuses map[string]int
	requests []recordedRequest
	// Optional hook for PUT requests; its return value becomes the body
	onPut  func(path string, body []byte) string
	server *httptest.Server
	client *APIClient
}

type recordedRequest struct {
	Method        string
	Path          string
	ContentType   string
	Authenticated bool
	Body          string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	api := &fakeAPI{
		responses: make(map[string]string),
		blobs:     make(map[string][]byte),
		statuses:  make(map[string]int),
	}
	api.server = httptest.NewTLSServer(http.HandlerFunc(api.serveHTTP))
	t.Cleanup(api.server.Close)

	var err error
	api.client, err = NewAPIClient(api.server.URL+"/accounts/test/", Credentials{Username: "user", Password: "pass"},
		WithTransport(api.server.Client().Transport))
	require.NoError(t, err)
	return api
}

func (api *fakeAPI) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_, _, authed := r.BasicAuth()

	api.mu.Lock()
	api.requests = append(api.requests, recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		ContentType:   r.Header.Get("Content-Type"),
		Authenticated: authed,
		Body:          string(body),
	})
	status, hasStatus := api.statuses[r.URL.Path]
	resp, hasResp := api.responses[r.URL.Path]
	blob, hasBlob := api.blobs[r.URL.Path]
	onPut := api.onPut
	api.mu.Unlock()

	if r.Method == http.MethodPut && onPut != nil {
		resp, hasResp = onPut(r.URL.Path, body), true
	}
	if hasStatus {
		w.WriteHeader(status)
	}
	switch {
	case hasBlob:
		_, _ = w.Write(blob)
	case hasResp:
		_, _ = w.Write([]byte(resp))
	case !hasStatus:
		http.NotFound(w, r)
	}
}

// url returns the absolute URL of path on the fake server
func (api *fakeAPI) url(path string) string {
	return api.server.URL + path
}

// set registers a JSON document; "{{server}}" is replaced by the server URL
func (api *fakeAPI) set(path, doc string) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.responses[path] = strings.ReplaceAll(doc, "{{server}}", api.server.URL)
}

func (api *fakeAPI) setBlob(path string, blob []byte) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.blobs[path] = blob
}

func (api *fakeAPI) handlePut(fn func(path string, body []byte) string) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.onPut = fn
}

func (api *fakeAPI) setStatus(path string, status int) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.statuses[path] = status
}

func (api *fakeAPI) recorded() []recordedRequest {
	api.mu.Lock()
	defer api.mu.Unlock()
	return append([]recordedRequest(nil), api.requests...)
}

func (api *fakeAPI) count(method, path string) int {
	n := 0
	for _, req := range api.recorded() {
		if req.Method == method && req.Path == path {
			n++
		}
	}
	return n
}

func gzipText(t *testing.T, text string) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}
