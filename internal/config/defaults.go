package config

const (
	defaultDataDir              = "~/.local/share/animewatch"
	defaultLogDir               = "~/.local/share/animewatch/logs"
	defaultDatabaseFile         = "catalog.db"
	defaultAPIBind              = "127.0.0.1:7517"
	defaultMetricsBind          = "127.0.0.1:9517"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	defaultLogMaxSizeMB         = 20
	defaultMinHistoryConfidence = 0.6
	defaultHistoryLimit         = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Recognition: Recognition{
			RecordHistory:        true,
			MinHistoryConfidence: defaultMinHistoryConfidence,
			HistoryLimit:         defaultHistoryLimit,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
			MaxSizeMB:     defaultLogMaxSizeMB,
		},
		Metrics: Metrics{
			Bind: defaultMetricsBind,
		},
	}
}
