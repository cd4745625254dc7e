package config

// Setting paths consumed by the tracker.
const (
	// SettingBlameIgnoreWhitespace controls whether blame attribution
	// ignores whitespace-only changes.
	SettingBlameIgnoreWhitespace = "blame.ignoreWhitespace"

	// SettingCachingEnabled controls whether computed annotation state is
	// cached on tracked documents.
	SettingCachingEnabled = "advanced.caching.enabled"

	// SettingBlameDelayAfterEdit is the idle delay in milliseconds after
	// the last edit before a dirty document is announced as idle.
	// Zero disables idle triggering.
	SettingBlameDelayAfterEdit = "advanced.blame.delayAfterEdit"
)

// defaults returns the built-in value for every known setting.
func defaults() map[string]any {
	return map[string]any{
		SettingBlameIgnoreWhitespace: false,
		SettingCachingEnabled:        true,
		SettingBlameDelayAfterEdit:   5000,
	}
}
