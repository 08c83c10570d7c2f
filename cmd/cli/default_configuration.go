package cli

import _ "embed"

// defaultSettingsContent holds the common and tools sections applied before the catalog's own settings.
//
//go:embed default_config.yaml
var defaultSettingsContent []byte

// EmbeddedDefaultConfiguration returns a copy of the built-in settings together with their format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	settings := append([]byte(nil), defaultSettingsContent...)
	return settings, configurationTypeConstant
}
