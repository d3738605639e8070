package config

import (
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Grist   GristConfig   `yaml:"grist" mapstructure:"grist"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Serve   ServeConfig   `yaml:"serve" mapstructure:"serve"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GristConfig locates the Grist document holding the incident tables.
type GristConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	DocID   string `yaml:"doc_id" mapstructure:"doc_id"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
}

// SourceConfig enables one source. Grist-backed sources name a table; the
// DATEX source names a URL.
type SourceConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Table   string `yaml:"table" mapstructure:"table"`
	URL     string `yaml:"url" mapstructure:"url"`
}

// SourcesConfig lists the sources in fusion order.
type SourcesConfig struct {
	CD35   SourceConfig `yaml:"cd35" mapstructure:"cd35"`
	CD44   SourceConfig `yaml:"cd44" mapstructure:"cd44"`
	Rennes SourceConfig `yaml:"rennes" mapstructure:"rennes"`
	DIRO   SourceConfig `yaml:"diro" mapstructure:"diro"`
}

// FetchConfig tunes the HTTP collaborators.
type FetchConfig struct {
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	SourceTimeoutSecs int     `yaml:"source_timeout_secs" mapstructure:"source_timeout_secs"`
	MaxParallel       int     `yaml:"max_parallel" mapstructure:"max_parallel"`
	RatePerSec        float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// OutputConfig locates the written artifacts.
type OutputConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`
	FeaturesFile string `yaml:"features_file" mapstructure:"features_file"`
	SummaryFile  string `yaml:"summary_file" mapstructure:"summary_file"`
}

// ServeConfig configures the scheduled server.
type ServeConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	Schedule    string   `yaml:"schedule" mapstructure:"schedule"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INFOROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Bare names used by the existing CI secrets.
	_ = v.BindEnv("grist.doc_id", "INFOROUTE_GRIST_DOC_ID", "GRIST_DOC_ID")
	_ = v.BindEnv("grist.api_key", "INFOROUTE_GRIST_API_KEY", "GRIST_API_KEY")

	// Defaults
	v.SetDefault("grist.base_url", "https://grist.dataregion.fr/o/inforoute")
	v.SetDefault("sources.cd35.enabled", true)
	v.SetDefault("sources.cd35.table", "Signalements")
	v.SetDefault("sources.cd44.enabled", true)
	v.SetDefault("sources.cd44.table", "Routes_CD44")
	v.SetDefault("sources.rennes.enabled", true)
	v.SetDefault("sources.rennes.table", "Routes_Rennes")
	v.SetDefault("sources.diro.enabled", false)
	v.SetDefault("sources.diro.url", "https://tipi.bison-fute.gouv.fr/bison-fute-ouvert/publicationsDIR/Evenementiel-DIR/grt/RRN/content.xml")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.source_timeout_secs", 60)
	v.SetDefault("fetch.max_parallel", 0)
	v.SetDefault("fetch.rate_per_sec", 5)
	v.SetDefault("fetch.user_agent", "inforoute-cli/1.0")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.features_file", "signalements_routes_fusionnes.geojson")
	v.SetDefault("output.summary_file", "metadata.json")
	v.SetDefault("serve.port", 8080)
	v.SetDefault("serve.schedule", "*/15 * * * *")
	v.SetDefault("serve.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Source returns the configuration of the named source.
func (c *Config) Source(key string) (SourceConfig, bool) {
	switch key {
	case "cd35":
		return c.Sources.CD35, true
	case "cd44":
		return c.Sources.CD44, true
	case "rennes":
		return c.Sources.Rennes, true
	case "diro":
		return c.Sources.DIRO, true
	}
	return SourceConfig{}, false
}

// EnabledSources returns the enabled source keys in fusion order.
func (c *Config) EnabledSources() []string {
	var out []string
	for _, key := range []string{"cd35", "cd44", "rennes", "diro"} {
		if s, _ := c.Source(key); s.Enabled {
			out = append(out, key)
		}
	}
	return out
}

// Validate checks the values required by a command mode: "run", "serve" or
// "sources".
func (c *Config) Validate(mode string) error {
	switch mode {
	case "sources":
		return nil
	case "run", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	var errs []string
	enabled := c.EnabledSources()
	if len(enabled) == 0 {
		errs = append(errs, "at least one source must be enabled")
	}

	gristNeeded := false
	for _, key := range enabled {
		s, _ := c.Source(key)
		if key == "diro" {
			if s.URL == "" {
				errs = append(errs, "sources.diro.url is required")
			}
			continue
		}
		gristNeeded = true
		if s.Table == "" {
			errs = append(errs, "sources."+key+".table is required")
		}
	}
	if gristNeeded {
		if c.Grist.DocID == "" {
			errs = append(errs, "grist.doc_id is required")
		}
		if c.Grist.APIKey == "" {
			errs = append(errs, "grist.api_key is required")
		}
	}

	if c.Fetch.TimeoutSecs <= 0 {
		errs = append(errs, "fetch.timeout_secs must be > 0")
	}
	if c.Fetch.SourceTimeoutSecs < 0 {
		errs = append(errs, "fetch.source_timeout_secs must be >= 0")
	}
	if c.Fetch.MaxParallel < 0 {
		errs = append(errs, "fetch.max_parallel must be >= 0")
	}

	if mode == "serve" {
		if c.Serve.Port <= 0 {
			errs = append(errs, "serve.port must be > 0")
		}
		if _, err := cron.ParseStandard(c.Serve.Schedule); err != nil {
			errs = append(errs, "serve.schedule is not a valid cron expression")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
