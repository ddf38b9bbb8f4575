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

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	Reset()
	defer Reset()

	err := Set(Historical_Account.GetName(), "ExampleUniversity")
	require.NoError(t, err)

	assert.Equal(t, "ExampleUniversity", viper.GetString("Historical.Account"))
	assert.Equal(t, "ExampleUniversity", Historical_Account.GetString())
	assert.True(t, viper.IsSet(Historical_Account.GetName()))

	config, err := GetUnmarshaledConfig()
	require.NoError(t, err)
	assert.Equal(t, "ExampleUniversity", config.Historical.Account)
}

func TestGetUnmarshaledConfigBeforeRefresh(t *testing.T) {
	Reset()
	defer Reset()

	_, err := GetUnmarshaledConfig()
	assert.Error(t, err)
}

func TestRefreshDecodesTypes(t *testing.T) {
	Reset()
	defer Reset()

	viper.SetDefault(Transport_DialerTimeout.GetName(), "10s")
	viper.SetDefault(Transport_MaxIdleConns.GetName(), "30")
	viper.Set(TLSSkipVerify.GetName(), "true")
	viper.Set(Download_ShowProgress.GetName(), false)

	config, err := Refresh()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, config.Transport.DialerTimeout)
	assert.Equal(t, 30, config.Transport.MaxIdleConns)
	assert.True(t, config.TLSSkipVerify)
	assert.False(t, config.Download.ShowProgress)

	assert.Equal(t, 10*time.Second, Transport_DialerTimeout.GetDuration())
	assert.Equal(t, 30, Transport_MaxIdleConns.GetInt())
	assert.True(t, TLSSkipVerify.GetBool())
}

func TestDecodeConfigIncludesEnvBindings(t *testing.T) {
	Reset()
	defer Reset()

	t.Setenv("HISTJOB_HISTORICAL_ENDPOINT", "https://example.com/accounts/test/")
	v := viper.New()
	require.NoError(t, v.BindEnv("Historical.Endpoint", "HISTJOB_HISTORICAL_ENDPOINT"))

	config, err := DecodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/accounts/test/", config.Historical.Endpoint)

	_, err = DecodeConfig(nil)
	assert.Error(t, err)
}
