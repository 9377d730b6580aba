package config

import (
	"os"
	"sync"
)

// AppEnv holds the flowtrack environment variables.
type AppEnv struct {
	// ConfigPath overrides the config file location (FLOWTRACK_CONFIG).
	ConfigPath string

	// DataDir overrides the database directory (FLOWTRACK_DATA_DIR).
	DataDir string

	// NoColor disables pretty output (FLOWTRACK_NO_COLOR or NO_COLOR).
	NoColor bool
}

var (
	env     *AppEnv
	envOnce sync.Once
)

// Env returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Env() *AppEnv {
	envOnce.Do(func() {
		env = &AppEnv{
			ConfigPath: os.Getenv("FLOWTRACK_CONFIG"),
			DataDir:    os.Getenv("FLOWTRACK_DATA_DIR"),
			NoColor:    os.Getenv("FLOWTRACK_NO_COLOR") == "1" || os.Getenv("NO_COLOR") != "",
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}
