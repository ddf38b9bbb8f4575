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
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points an APIClient at a TLS test server whose handler is h
func newTestClient(t *testing.T, creds Credentials, h http.Handler) (*APIClient, *httptest.Server) {
	server := httptest.NewTLSServer(h)
	t.Cleanup(server.Close)
	c, err := NewAPIClient(server.URL+"/accounts/test/", creds, WithTransport(server.Client().Transport))
	require.NoError(t, err)
	return c, server
}

func TestNewAPIClient(t *testing.T) {
	t.Run("adds-trailing-slash", func(t *testing.T) {
		c, err := NewAPIClient("https://example.com/accounts/acct", Credentials{}, WithTransport(http.DefaultTransport))
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/accounts/acct/", c.Endpoint())
	})

	t.Run("rejects-relative-endpoint", func(t *testing.T) {
		_, err := NewAPIClient("accounts/acct/", Credentials{})
		assert.Error(t, err)
	})
}

func TestResolveURL(t *testing.T) {
	c, err := NewAPIClient("https://example.com/accounts/acct/", Credentials{}, WithTransport(http.DefaultTransport))
	require.NoError(t, err)

	resolved, err := c.resolveURL(JobsPath)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/accounts/acct/jobs.json", resolved)

	resolved, err = c.resolveURL("https://other.example.com/jobs/abc.json")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com/jobs/abc.json", resolved)
}

func TestBasicAuth(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		wantAuth bool
	}{
		{"both", Credentials{Username: "alice", Password: "secret"}, true},
		{"no-password", Credentials{Username: "alice"}, false},
		{"no-username", Credentials{Password: "secret"}, false},
		{"neither", Credentials{}, false},
		{"supplied-empty-password", Credentials{Username: "alice", Supplied: true}, true},
		{"supplied-both-empty", Credentials{Supplied: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth bool
			var user, pass string
			c, _ := newTestClient(t, tt.creds, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user, pass, gotAuth = r.BasicAuth()
				_, _ = w.Write([]byte(`{}`))
			}))

			var out map[string]interface{}
			require.NoError(t, c.GetJSON(context.Background(), JobsPath, &out))
			assert.Equal(t, tt.wantAuth, gotAuth)
			if tt.wantAuth {
				assert.Equal(t, tt.creds.Username, user)
				assert.Equal(t, tt.creds.Password, pass)
			}
		})
	}
}

func TestRequestEncoding(t *testing.T) {
	type seenRequest struct {
		method      string
		path        string
		contentType string
		body        string
	}
	var seen []seenRequest
	c, server := newTestClient(t, Credentials{Username: "u", Password: "p"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, seenRequest{r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(body)})
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))

	ctx := context.Background()
	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, c.GetJSON(ctx, JobsPath, &out))
	require.NoError(t, c.PostJSON(ctx, JobsPath, map[string]string{"title": "t"}, &out))
	require.NoError(t, c.PutJSON(ctx, server.URL+"/jobs/abc.json", map[string]string{"status": "accept"}, &out))
	assert.Equal(t, "ok", out.Status)

	require.Len(t, seen, 3)
	assert.Equal(t, seenRequest{http.MethodGet, "/accounts/test/jobs.json", "application/json", ""}, seen[0])
	assert.Equal(t, http.MethodPost, seen[1].method)
	assert.JSONEq(t, `{"title":"t"}`, seen[1].body)
	assert.Equal(t, "/jobs/abc.json", seen[2].path)
	assert.Equal(t, "application/json", seen[2].contentType)
	assert.JSONEq(t, `{"status":"accept"}`, seen[2].body)
}

func TestMalformedResponse(t *testing.T) {
	c, _ := newTestClient(t, Credentials{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))

	var out map[string]interface{}
	err := c.GetJSON(context.Background(), JobsPath, &out)
	require.Error(t, err)

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, http.StatusBadGateway, malformed.StatusCode)
	assert.Equal(t, http.MethodGet, malformed.Method)
	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestErrorStatusStillDecoded(t *testing.T) {
	c, _ := newTestClient(t, Credentials{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad credentials"}`))
	}))

	var out struct {
		Error string `json:"error"`
	}
	require.NoError(t, c.GetJSON(context.Background(), JobsPath, &out))
	assert.Equal(t, "bad credentials", out.Error)
}
