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
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	StringParam struct {
		name string
	}

	BoolParam struct {
		name string
	}

	IntParam struct {
		name string
	}

	DurationParam struct {
		name string
	}
)

var (
	viperConfig atomic.Pointer[Config]
	configMutex sync.Mutex
)

func (sP StringParam) GetString() string {
	return viper.GetString(sP.name)
}

func (sP StringParam) GetName() string {
	return sP.name
}

func (bP BoolParam) GetBool() bool {
	return viper.GetBool(bP.name)
}

func (bP BoolParam) GetName() string {
	return bP.name
}

func (iP IntParam) GetInt() int {
	return viper.GetInt(iP.name)
}

func (iP IntParam) GetName() string {
	return iP.name
}

func (dP DurationParam) GetDuration() time.Duration {
	return viper.GetDuration(dP.name)
}

func (dP DurationParam) GetName() string {
	return dP.name
}

// Refresh rebuilds the cached configuration snapshot from viper's global instance.
//
// Code that mutates configuration through viper directly (SetDefault, Set,
// ReadInConfig, flag bindings) should call Refresh afterwards so that
// GetUnmarshaledConfig reflects the change.
func Refresh() (*Config, error) {
	configMutex.Lock()
	defer configMutex.Unlock()

	newConfig, err := DecodeConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	viperConfig.Store(newConfig)
	return newConfig, nil
}

// DecodeConfig decodes the provided viper instance into a new Config struct
// without touching the cached snapshot.
func DecodeConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("nil viper instance")
	}

	// AllSettings() omits values that only exist as flag or env bindings;
	// overlay every known key so the snapshot matches viper.Get().
	settings := v.AllSettings()
	for _, key := range allParameterNames {
		if val := v.Get(key); val != nil {
			setLowercasePath(settings, strings.Split(key, "."), val)
		}
	}

	newConfig := new(Config)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		MatchName: func(mapKey, fieldName string) bool {
			return strings.EqualFold(mapKey, fieldName)
		},
		Result: newConfig,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	return newConfig, nil
}

func setLowercasePath(root map[string]interface{}, path []string, val interface{}) {
	if len(path) == 0 {
		return
	}

	m := root
	for _, elem := range path[:len(path)-1] {
		k := strings.ToLower(elem)
		if next, ok := m[k].(map[string]interface{}); ok {
			m = next
			continue
		}
		next := make(map[string]interface{})
		m[k] = next
		m = next
	}
	m[strings.ToLower(path[len(path)-1])] = val
}

// Return the unmarshaled viper config struct as a pointer
func GetUnmarshaledConfig() (*Config, error) {
	config := viperConfig.Load()
	if config == nil {
		return nil, errors.New("Config hasn't been unmarshaled yet.")
	}
	return config, nil
}

// Set sets a parameter value in viper and refreshes the cached snapshot.
func Set(key string, value interface{}) error {
	viper.Set(key, value)
	_, err := Refresh()
	return err
}

// Reset clears viper and the cached snapshot; intended for unit tests.
func Reset() {
	configMutex.Lock()
	defer configMutex.Unlock()

	viper.Reset()
	viperConfig.Store(nil)
}
