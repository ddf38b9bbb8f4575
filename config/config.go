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
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/pelicanplatform/histjob/logging"
	"github.com/pelicanplatform/histjob/param"
)

const (
	// EnvPrefix is prepended to every environment variable override, e.g.
	// HISTJOB_HISTORICAL_ACCOUNT for Historical.Account.
	EnvPrefix = "HISTJOB"

	// DefaultAccount is the account used when neither the configuration file,
	// the environment nor --account name one.
	DefaultAccount = "LancasterUniversity"

	// DefaultEndpointTemplate builds the per-account API base from the account name.
	DefaultEndpointTemplate = "https://historical.gnip.com/accounts/%s/"
)

// SetDefaults installs the built-in value of every parameter into v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(param.Debug.GetName(), false)
	v.SetDefault(param.TLSSkipVerify.GetName(), false)
	v.SetDefault(param.Historical_Account.GetName(), DefaultAccount)
	v.SetDefault(param.Historical_Endpoint.GetName(), "")
	v.SetDefault(param.Download_ScratchDir.GetName(), "")
	v.SetDefault(param.Download_ShowProgress.GetName(), true)
	v.SetDefault(param.Logging_Level.GetName(), "info")
	v.SetDefault(param.Logging_LogLocation.GetName(), "")
	v.SetDefault(param.Transport_DialerKeepAlive.GetName(), 30*time.Second)
	v.SetDefault(param.Transport_DialerTimeout.GetName(), 10*time.Second)
	v.SetDefault(param.Transport_IdleConnTimeout.GetName(), 90*time.Second)
	v.SetDefault(param.Transport_MaxIdleConns.GetName(), 30)
	v.SetDefault(param.Transport_ResponseHeaderTimeout.GetName(), 60*time.Second)
	v.SetDefault(param.Transport_TLSHandshakeTimeout.GetName(), 15*time.Second)
}

// InitConfig reads the configuration file (the --config flag, or
// $HOME/.config/histjob/histjob.yaml when present) and environment overrides
// into viper's global instance.
func InitConfig() error {
	viper.SetConfigType("yaml")
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Warningln("Unable to determine the home directory; skipping the user configuration file:", err)
		} else {
			viper.AddConfigPath(filepath.Join(home, ".config", "histjob"))
		}
		viper.SetConfigName("histjob")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	SetDefaults(viper.GetViper())
	bindLegacyEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "failed to read the configuration file")
		}
		// Do not fail if the config file is missing
	} else {
		log.Debugln("Using configuration file", viper.ConfigFileUsed())
	}
	return nil
}

// InitClient finishes client setup once the command line has been parsed:
// it applies the log level, flushes buffered logs and caches the decoded
// configuration.
func InitClient() error {
	if param.Debug.GetBool() {
		viper.Set(param.Logging_Level.GetName(), "debug")
	}
	level, err := log.ParseLevel(param.Logging_Level.GetString())
	if err != nil {
		return errors.Wrapf(err, "invalid %s", param.Logging_Level.GetName())
	}
	log.SetLevel(level)

	if err := logging.FlushLogs(true); err != nil {
		return err
	}

	cfg, err := param.Refresh()
	if err != nil {
		return err
	}
	log.Debugf("Account %q, endpoint override %q, progress display %t", cfg.Historical.Account, cfg.Historical.Endpoint, cfg.Download.ShowProgress)
	if cfg.TLSSkipVerify {
		log.Warningln("TLS certificate verification is disabled (TLSSkipVerify); server identities will not be checked")
	}
	return nil
}

// GetEndpoint returns the API base endpoint: Historical.Endpoint when set,
// otherwise the default endpoint for Historical.Account. The result always
// ends in a slash so relative resources resolve beneath it.
func GetEndpoint() (string, error) {
	endpoint := param.Historical_Endpoint.GetString()
	if endpoint == "" {
		account := param.Historical_Account.GetString()
		if account == "" {
			return "", errors.Errorf("no API account is configured; set %s or %s", param.Historical_Account.GetName(), param.Historical_Endpoint.GetName())
		}
		endpoint = fmt.Sprintf(DefaultEndpointTemplate, url.PathEscape(account))
	}

	endpointURL, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "invalid %s value %q", param.Historical_Endpoint.GetName(), endpoint)
	}
	if endpointURL.Scheme == "" || endpointURL.Host == "" {
		return "", errors.Errorf("%s must be an absolute URL, got %q", param.Historical_Endpoint.GetName(), endpoint)
	}
	if !strings.HasSuffix(endpointURL.Path, "/") {
		endpointURL.Path += "/"
	}
	return endpointURL.String(), nil
}
