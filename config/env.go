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
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/pelicanplatform/histjob/param"
)

// Environment variables understood by the old job-management script.
var legacyEnv = map[string]string{
	"GNIP_ACCOUNT":  param.Historical_Account.GetName(),
	"GNIP_ENDPOINT": param.Historical_Endpoint.GetName(),
}

// bindLegacyEnv maps the grandfathered GNIP_* variables onto their new keys.
// They only act as defaults, so HISTJOB_* variables, flags and the
// configuration file still win.
func bindLegacyEnv() {
	for envName, key := range legacyEnv {
		val, isSet := os.LookupEnv(envName)
		if !isSet || val == "" {
			continue
		}
		log.Warningf("The environment variable %s is deprecated; please use %s_%s or the %s configuration key instead", envName, EnvPrefix, envKey(key), key)
		viper.SetDefault(key, val)
	}
}

func envKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
