package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultReportBaseURL is where the archived RMP facility reports live.
const DefaultReportBaseURL = "https://github.com/edgi-govdata-archiving/epa-risk-management-plans/blob/main/reports"

// Config holds the full application configuration.
type Config struct {
	Stream  StreamConfig  `yaml:"stream" mapstructure:"stream"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	BOM     BOMConfig     `yaml:"bom" mapstructure:"bom"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StreamConfig configures the facility coordinate transformer.
type StreamConfig struct {
	IncludeCorrections bool   `yaml:"include_corrections" mapstructure:"include_corrections"`
	FlushEvery         int    `yaml:"flush_every" mapstructure:"flush_every"`
	StripBOM           bool   `yaml:"strip_bom" mapstructure:"strip_bom"`
	ReportBaseURL      string `yaml:"report_base_url" mapstructure:"report_base_url"`
}

// ExtractConfig configures the chemical and NAICS fan-out.
type ExtractConfig struct {
	IDColumn        string `yaml:"id_column" mapstructure:"id_column"`
	ChemicalsColumn string `yaml:"chemicals_column" mapstructure:"chemicals_column"`
	NAICSColumn     string `yaml:"naics_column" mapstructure:"naics_column"`
	Separator       string `yaml:"separator" mapstructure:"separator"`
	ProgressEvery   int    `yaml:"progress_every" mapstructure:"progress_every"`
}

// BOMConfig configures in-place BOM stripping.
type BOMConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// MetricsConfig configures the Prometheus textfile written after a run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
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
	v.SetEnvPrefix("RMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("stream.include_corrections", false)
	v.SetDefault("stream.flush_every", 256)
	v.SetDefault("stream.strip_bom", true)
	v.SetDefault("stream.report_base_url", DefaultReportBaseURL)
	v.SetDefault("extract.id_column", "EPA Facility ID")
	v.SetDefault("extract.chemicals_column", "Chemical(s)")
	v.SetDefault("extract.naics_column", "NAICS Code(s)")
	v.SetDefault("extract.separator", ", ")
	v.SetDefault("extract.progress_every", 10000)
	v.SetDefault("bom.concurrency", 4)
	v.SetDefault("metrics.textfile", "")

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

// Validate checks settings that would otherwise fail mid-stream.
func (c *Config) Validate() error {
	var problems []string
	if c.Stream.FlushEvery < 1 {
		problems = append(problems, "stream.flush_every must be >= 1")
	}
	if c.Extract.Separator == "" {
		problems = append(problems, "extract.separator must not be empty")
	}
	if c.Extract.IDColumn == "" {
		problems = append(problems, "extract.id_column must not be empty")
	}
	if c.BOM.Concurrency < 1 {
		problems = append(problems, "bom.concurrency must be >= 1")
	}
	if len(problems) > 0 {
		return eris.Errorf("config: invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger. Output goes to stderr so
// stdout stays free for data.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}

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
