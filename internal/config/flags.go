package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagLibDir  = flag.String("lib-dir", "", "Directory holding the native library")
	flagDev     = flag.Bool("dev", false, "Use developer library resolution")
	flagBuildID = flag.String("build-id", "", "Developer build id to load")
	flagRecord  = flag.String("record", "", "Record engine invocations to this session file")
	flagReplay  = flag.String("replay", "", "Replay engine invocations from this session file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLibDir != "" {
		cfg.Engine.LibDir = *flagLibDir
	}
	if *flagDev {
		cfg.Engine.Dev = true
	}
	if *flagBuildID != "" {
		cfg.Engine.BuildID = *flagBuildID
	}
	if *flagRecord != "" {
		cfg.Session.RecordPath = *flagRecord
	}
	if *flagReplay != "" {
		cfg.Session.ReplayPath = *flagReplay
	}
}
