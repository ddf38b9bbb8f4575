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

package param

import "time"

var (
	Debug         = BoolParam{"Debug"}
	TLSSkipVerify = BoolParam{"TLSSkipVerify"}

	Historical_Account  = StringParam{"Historical.Account"}
	Historical_Endpoint = StringParam{"Historical.Endpoint"}

	Download_ScratchDir   = StringParam{"Download.ScratchDir"}
	Download_ShowProgress = BoolParam{"Download.ShowProgress"}

	Logging_Level       = StringParam{"Logging.Level"}
	Logging_LogLocation = StringParam{"Logging.LogLocation"}

	Transport_DialerKeepAlive       = DurationParam{"Transport.DialerKeepAlive"}
	Transport_DialerTimeout         = DurationParam{"Transport.DialerTimeout"}
	Transport_IdleConnTimeout       = DurationParam{"Transport.IdleConnTimeout"}
	Transport_MaxIdleConns          = IntParam{"Transport.MaxIdleConns"}
	Transport_ResponseHeaderTimeout = DurationParam{"Transport.ResponseHeaderTimeout"}
	Transport_TLSHandshakeTimeout   = DurationParam{"Transport.TLSHandshakeTimeout"}
)

var allParameterNames = []string{
	"Debug",
	"TLSSkipVerify",
	"Historical.Account",
	"Historical.Endpoint",
	"Download.ScratchDir",
	"Download.ShowProgress",
	"Logging.Level",
	"Logging.LogLocation",
	"Transport.DialerKeepAlive",
	"Transport.DialerTimeout",
	"Transport.IdleConnTimeout",
	"Transport.MaxIdleConns",
	"Transport.ResponseHeaderTimeout",
	"Transport.TLSHandshakeTimeout",
}

type Config struct {
	Debug    bool `mapstructure:"debug"`
	Download struct {
		ScratchDir   string `mapstructure:"scratchdir"`
		ShowProgress bool   `mapstructure:"showprogress"`
	} `mapstructure:"download"`
	Historical struct {
		Account  string `mapstructure:"account"`
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"historical"`
	Logging struct {
		Level       string `mapstructure:"level"`
		LogLocation string `mapstructure:"loglocation"`
	} `mapstructure:"logging"`
	TLSSkipVerify bool `mapstructure:"tlsskipverify"`
	Transport     struct {
		DialerKeepAlive       time.Duration `mapstructure:"dialerkeepalive"`
		DialerTimeout         time.Duration `mapstructure:"dialertimeout"`
		IdleConnTimeout       time.Duration `mapstructure:"idleconntimeout"`
		MaxIdleConns          int           `mapstructure:"maxidleconns"`
		ResponseHeaderTimeout time.Duration `mapstructure:"responseheadertimeout"`
		TLSHandshakeTimeout   time.Duration `mapstructure:"tlshandshaketimeout"`
	} `mapstructure:"transport"`
}
