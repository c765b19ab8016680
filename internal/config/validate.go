package config

// ValidateForRun checks the settings both binaries need before serving.
// The schedule database is required even when subscriptions live in a
// local sqlite file.
func ValidateForRun(cfg *Config) error {
	return cfg.Store.Validate()
}
