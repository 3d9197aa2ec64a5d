// Package config handles bridge configuration loading and management.
package config

// Config holds all bridge settings.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Session SessionConfig `yaml:"session"`
	Apply   ApplyConfig   `yaml:"apply"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig locates the native geometry library.
type EngineConfig struct {
	// LibDir is the directory holding the release library. Empty means
	// the directory of the running executable.
	LibDir string `yaml:"lib_dir"`

	// Dev switches to developer resolution: the library is looked up in
	// DevDir under a build-id suffixed name and reloaded on every
	// invocation.
	Dev bool `yaml:"dev"`

	// DevDir is where developer builds land, typically the engine's
	// target directory.
	DevDir string `yaml:"dev_dir"`

	// BuildID selects which developer build to load. Required when Dev
	// is set.
	BuildID string `yaml:"build_id"`
}

// SessionConfig controls invocation recording and replay.
type SessionConfig struct {
	// RecordPath, when set, records every engine invocation to this file.
	RecordPath string `yaml:"record_path"`

	// ReplayPath, when set, serves responses from this file instead of
	// invoking the native library. Record and replay are exclusive.
	ReplayPath string `yaml:"replay_path"`
}

// ApplyConfig holds scene application settings.
type ApplyConfig struct {
	// ObjectName names created result objects when the engine does not
	// supply one.
	ObjectName string `yaml:"object_name"`

	// OnlySelected restricts point-cloud extraction to selected vertices.
	OnlySelected bool `yaml:"only_selected"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			LibDir:  "",
			Dev:     false,
			DevDir:  "target/debug",
			BuildID: "",
		},
		Session: SessionConfig{},
		Apply: ApplyConfig{
			ObjectName:   "geobridge_result",
			OnlySelected: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
