package cli

import (
	"bytes"
	_ "embed"
)

// defaultSwitchConfiguration holds the built-in logging settings and the tools.switch
// defaults (branch limit, stash message, color mode).
//
//go:embed default_config.yaml
var defaultSwitchConfiguration []byte

// EmbeddedDefaultConfiguration returns a private copy of the built-in switcher settings and
// the format the loader should parse them with.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultSwitchConfiguration), configurationTypeConstant
}
