package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	listValueSeparatorConstant                      = ","
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	settingsParseErrorTemplateConstant              = "failed to parse settings file %s: %v"
)

// SettingsParseError reports a settings file whose contents are not valid for the configured format.
type SettingsParseError struct {
	Path  string
	Cause error
}

func (parseError *SettingsParseError) Error() string {
	return fmt.Sprintf(settingsParseErrorTemplateConstant, parseError.Path, parseError.Cause)
}

// Unwrap exposes the decoder failure.
func (parseError *SettingsParseError) Unwrap() error {
	return parseError.Cause
}

// ConfigurationLoader wraps Viper to merge embedded defaults, an optional settings file and environment overrides.
type ConfigurationLoader struct {
	configurationType         string
	environmentPrefix         string
	environmentKeyReplacer    *strings.Replacer
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	// ConfigFileUsed is empty when no settings file was found.
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader for the given file type honoring an environment prefix.
func NewConfigurationLoader(configurationType string, environmentPrefix string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationType:      configurationType,
		environmentPrefix:      environmentPrefix,
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
	}
}

// SetEmbeddedConfiguration stores embedded configuration data merged before the settings file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}

	loader.embeddedConfiguration = nil
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)

	if len(configurationData) == 0 {
		return
	}

	duplicatedData := make([]byte, len(configurationData))
	copy(duplicatedData, configurationData)
	loader.embeddedConfiguration = duplicatedData
}

// LoadConfiguration populates targetConfiguration from defaults, embedded data, the settings file and the environment.
//
// A settings path that does not exist is not an error; the remaining sources still apply.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigType(loader.configurationType)

	if len(loader.embeddedConfiguration) > 0 {
		configurationType := loader.configurationType
		if len(loader.embeddedConfigurationType) > 0 {
			configurationType = loader.embeddedConfigurationType
		}

		viperInstance.SetConfigType(configurationType)
		mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration))
		if mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}

		viperInstance.SetConfigType(loader.configurationType)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	if loader.environmentKeyReplacer != nil {
		viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	}
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if settingsFileExists(configurationFilePath) {
		viperInstance.SetConfigFile(configurationFilePath)
		readError := viperInstance.MergeInConfig()
		var decodeError viper.ConfigParseError
		if errors.As(readError, &decodeError) {
			cause := errors.Unwrap(decodeError)
			if cause == nil {
				cause = decodeError
			}
			return LoadedConfiguration{}, &SettingsParseError{Path: configurationFilePath, Cause: cause}
		}
		if readError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	unmarshalError := viperInstance.Unmarshal(targetConfiguration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listValueSeparatorConstant),
	)))
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}

func settingsFileExists(configurationFilePath string) bool {
	if len(strings.TrimSpace(configurationFilePath)) == 0 {
		return false
	}
	fileInfo, statError := os.Stat(configurationFilePath)
	if statError != nil {
		return !errors.Is(statError, fs.ErrNotExist)
	}
	return !fileInfo.IsDir()
}
