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

package config

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"

	"github.com/pelicanplatform/histjob/param"
)

var (
	// Our global transport that only will get reconfigured if needed
	transport *http.Transport

	// Once to ensure we only set up the transport once
	onceTransport sync.Once
)

// function to get/setup the transport (only once)
func GetTransport() *http.Transport {
	onceTransport.Do(func() {
		transport = NewTransport()
	})
	return transport
}

// ResetTransport drops the cached transport so the next GetTransport picks up
// configuration changes; intended for unit tests.
func ResetTransport() {
	onceTransport = sync.Once{}
	transport = nil
}

// NewTransport builds an HTTP transport from the Transport.* parameters.
//
// Certificate verification stays on unless TLSSkipVerify is set; that knob
// exists for API deployments whose certificates do not verify.
func NewTransport() *http.Transport {
	dialer := net.Dialer{
		Timeout:   param.Transport_DialerTimeout.GetDuration(),
		KeepAlive: param.Transport_DialerKeepAlive.GetDuration(),
	}

	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          param.Transport_MaxIdleConns.GetInt(),
		IdleConnTimeout:       param.Transport_IdleConnTimeout.GetDuration(),
		TLSHandshakeTimeout:   param.Transport_TLSHandshakeTimeout.GetDuration(),
		ResponseHeaderTimeout: param.Transport_ResponseHeaderTimeout.GetDuration(),
	}
	if param.TLSSkipVerify.GetBool() {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return tr
}
