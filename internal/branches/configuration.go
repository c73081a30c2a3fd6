package branches

import "strings"

const (
	// DefaultBranchLimit caps the number of candidate branches offered to the user.
	DefaultBranchLimit = 5
	// DefaultStashMessage labels stash entries created before a switch.
	DefaultStashMessage = "Auto-stash before branch switch"
	// ColorModeAuto enables colour only when the output is a terminal.
	ColorModeAuto = "auto"
	// ColorModeAlways forces colour output.
	ColorModeAlways = "always"
	// ColorModeNever disables colour output.
	ColorModeNever = "never"

	limitKeyConstant        = "limit"
	stashMessageKeyConstant = "stash_message"
	colorKeyConstant        = "color"
	keySeparatorConstant    = "."
)

// CommandConfiguration captures configuration values for the branch switch command.
type CommandConfiguration struct {
	Limit        int    `mapstructure:"limit"`
	StashMessage string `mapstructure:"stash_message"`
	Color        string `mapstructure:"color"`
}

// DefaultCommandConfiguration provides baseline configuration values for the branch switch command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Limit:        DefaultBranchLimit,
		StashMessage: DefaultStashMessage,
		Color:        ColorModeAuto,
	}
}

// DefaultConfigurationValues returns the defaults keyed beneath prefix for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + keySeparatorConstant + limitKeyConstant:        defaults.Limit,
		prefix + keySeparatorConstant + stashMessageKeyConstant: defaults.StashMessage,
		prefix + keySeparatorConstant + colorKeyConstant:        defaults.Color,
	}
}

// Sanitize trims values and replaces invalid ones with defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	if sanitized.Limit <= 0 {
		sanitized.Limit = defaults.Limit
	}

	sanitized.StashMessage = strings.TrimSpace(configuration.StashMessage)
	if len(sanitized.StashMessage) == 0 {
		sanitized.StashMessage = defaults.StashMessage
	}

	switch normalizedColor := strings.ToLower(strings.TrimSpace(configuration.Color)); normalizedColor {
	case ColorModeAlways, ColorModeNever:
		sanitized.Color = normalizedColor
	default:
		sanitized.Color = defaults.Color
	}

	return sanitized
}
