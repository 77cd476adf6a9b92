package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SETTLER"

var (
	ErrConfigFailedToSetDefaults = errors.New("error occurred while setting defaults")
	ErrConfigPath                = errors.New("config path error")
	ErrConfigFailedToDump        = errors.New("failed to dump config")
)

func Load(configFileDirs ...string) (*SettlerConfig, error) {
	settlerConfig := getDefaultSettlerConfig()
	v := viper.New()

	err := setDefaults(v, settlerConfig)
	if err != nil {
		return nil, err
	}

	err = overrideWithFiles(v, configFileDirs...)
	if err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err = v.Unmarshal(settlerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return settlerConfig, nil
}

// DumpConfig writes the effective configuration as yaml to the given file.
func DumpConfig(cfg *SettlerConfig, filename string) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return errors.Join(ErrConfigFailedToDump, err)
	}

	settings := make(map[string]any)
	err = json.Unmarshal(raw, &settings)
	if err != nil {
		return errors.Join(ErrConfigFailedToDump, err)
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return errors.Join(ErrConfigFailedToDump, err)
	}

	err = os.WriteFile(filename, out, 0o600)
	if err != nil {
		return errors.Join(ErrConfigFailedToDump, err)
	}

	return nil
}

func setDefaults(v *viper.Viper, defaultConfig *SettlerConfig) error {
	defaultsMap, err := toSettingsMap(defaultConfig)
	if err != nil {
		return errors.Join(ErrConfigFailedToSetDefaults, err)
	}

	for key, value := range defaultsMap {
		v.SetDefault(key, value)
	}

	return nil
}

// toSettingsMap decodes nested config sections into nested maps so that a file
// overriding a single key keeps the defaults of its siblings.
func toSettingsMap(in any) (map[string]interface{}, error) {
	out := make(map[string]interface{})

	if err := mapstructure.Decode(in, &out); err != nil {
		return nil, err
	}

	for key, value := range out {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			continue
		}

		nested, err := toSettingsMap(value)
		if err != nil {
			return nil, err
		}
		out[key] = nested
	}

	return out, nil
}

func overrideWithFiles(v *viper.Viper, configFileDirs ...string) error {
	if len(configFileDirs) == 0 || configFileDirs[0] == "" {
		return nil
	}

	for _, path := range configFileDirs {
		stat, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return errors.Join(ErrConfigPath, fmt.Errorf("path: %s does not exist", path))
			}
			return err
		}
		if !stat.IsDir() {
			return errors.Join(ErrConfigPath, fmt.Errorf("path: %s should be a directory", path))
		}

		v.AddConfigPath(path)
	}

	err := v.ReadInConfig()
	if err != nil {
		return err
	}

	return nil
}
