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
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pelicanplatform/histjob/client"
	"github.com/pelicanplatform/histjob/config"
)

// newAPIClient builds a client for the configured endpoint using the
// credentials given on the command line
func newAPIClient(username, password string) (*client.APIClient, error) {
	endpoint, err := config.GetEndpoint()
	if err != nil {
		return nil, err
	}
	apiClient, err := client.NewAPIClient(endpoint, client.Credentials{Username: username, Password: password, Supplied: true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create API client")
	}
	log.Debugln("Using API endpoint", apiClient.Endpoint())
	return apiClient, nil
}
