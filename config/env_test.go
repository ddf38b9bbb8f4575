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
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelicanplatform/histjob/param"
)

func TestLegacyEnv(t *testing.T) {
	hook := test.NewGlobal()
	t.Cleanup(func() { log.StandardLogger().ReplaceHooks(make(log.LevelHooks)) })

	t.Run("no-legacy-env-does-nothing", func(t *testing.T) {
		resetConfig(t)
		hook.Reset()

		require.NoError(t, InitConfig())
		assert.Equal(t, DefaultAccount, param.Historical_Account.GetString())
		assert.Empty(t, hook.Entries)
	})

	t.Run("one-legacy-env", func(t *testing.T) {
		resetConfig(t)
		hook.Reset()
		t.Setenv("GNIP_ACCOUNT", "SomeUniversity")

		require.NoError(t, InitConfig())
		assert.Equal(t, "SomeUniversity", param.Historical_Account.GetString())
		require.Equal(t, 1, len(hook.Entries))
		assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
		assert.Contains(t, hook.LastEntry().Message, "GNIP_ACCOUNT is deprecated; please use HISTJOB_HISTORICAL_ACCOUNT")
	})

	t.Run("new-env-wins", func(t *testing.T) {
		resetConfig(t)
		hook.Reset()
		t.Setenv("GNIP_ENDPOINT", "https://old.example.com/accounts/a/")
		t.Setenv("HISTJOB_HISTORICAL_ENDPOINT", "https://new.example.com/accounts/a/")

		require.NoError(t, InitConfig())
		assert.Equal(t, "https://new.example.com/accounts/a/", param.Historical_Endpoint.GetString())
	})

	t.Run("empty-legacy-env-ignored", func(t *testing.T) {
		resetConfig(t)
		hook.Reset()
		t.Setenv("GNIP_ACCOUNT", "")

		require.NoError(t, InitConfig())
		assert.Equal(t, DefaultAccount, viper.GetString(param.Historical_Account.GetName()))
		assert.Empty(t, hook.Entries)
	})
}
