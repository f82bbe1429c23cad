package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Tables   TablesConfig   `yaml:"tables" mapstructure:"tables"`
	Rates    RatesConfig    `yaml:"rates" mapstructure:"rates"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// TablesConfig holds the classification tables. Carrier status vocabularies
// change over time, so the code sets and route prefix rules are data, not
// logic: they can be overridden in config.yaml or replaced wholesale with a
// YAML tables file (see LoadTables). Tables are lists, not keyed maps:
// category and tier names are case-sensitive data, and viper lowercases map
// keys.
type TablesConfig struct {
	// Statuses holds one exact-match code set per status category.
	Statuses []StatusSet `yaml:"statuses" mapstructure:"statuses"`
	// Services is an ordered list of route-prefix rules, most specific first.
	Services []ServiceRule `yaml:"services" mapstructure:"services"`
	// Path optionally points at a YAML file that replaces both tables.
	Path string `yaml:"path" mapstructure:"path"`
}

// StatusSet is the code set of one status category.
type StatusSet struct {
	Category string   `yaml:"category" mapstructure:"category"`
	Codes    []string `yaml:"codes" mapstructure:"codes"`
}

// ServiceRule maps a route-code prefix to a service tier. Rules are evaluated
// in order; first match wins.
type ServiceRule struct {
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	Tier   string `yaml:"tier" mapstructure:"tier"`
}

// RatesConfig holds the billing rate card. Rates are decimal strings to keep
// money out of float parsing.
type RatesConfig struct {
	// Tiers holds the base per-delivery rate of each billable service tier.
	Tiers []TierRate `yaml:"tiers" mapstructure:"tiers"`
	// CityOverrides lists per-city rate exceptions. Cities are compared after
	// normalization.
	CityOverrides []CityRate `yaml:"city_overrides" mapstructure:"city_overrides"`
}

// TierRate is the base rate of one service tier.
type TierRate struct {
	Tier string `yaml:"tier" mapstructure:"tier"`
	Rate string `yaml:"rate" mapstructure:"rate"`
}

// CityRate overrides a tier's rate for one delivery city.
type CityRate struct {
	Tier string `yaml:"tier" mapstructure:"tier"`
	City string `yaml:"city" mapstructure:"city"`
	Rate string `yaml:"rate" mapstructure:"rate"`
}

// PipelineConfig configures the reconciliation pipeline.
type PipelineConfig struct {
	// Concurrency bounds the per-run enrichment workers. 0 means sequential.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ReportConfig configures the XLSX report writer.
type ReportConfig struct {
	OutputPath string `yaml:"output_path" mapstructure:"output_path"`
}

// ServerConfig configures the upload server.
type ServerConfig struct {
	Port              int `yaml:"port" mapstructure:"port"`
	MaxUploadMB       int `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
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
	v.SetEnvPrefix("DISPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 500)
	v.SetDefault("server.requests_per_minute", 6)
	v.SetDefault("pipeline.concurrency", 8)
	v.SetDefault("report.output_path", "dispatch_report.xlsx")
	v.SetDefault("tables.statuses", defaultStatuses())
	v.SetDefault("tables.services", defaultServices())
	v.SetDefault("rates.tiers", []map[string]string{
		{"tier": "Next Day", "rate": "2.20"},
		{"tier": "Same Day", "rate": "3.50"},
		{"tier": "Montreal", "rate": "3.00"},
	})
	v.SetDefault("rates.city_overrides", []map[string]string{
		{"tier": "Next Day", "city": "Oakville", "rate": "2.45"},
		{"tier": "Next Day", "city": "Burlington", "rate": "2.45"},
	})

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

// defaultStatuses returns the carrier status code sets as shipped.
// Membership is exact, case-sensitive match.
func defaultStatuses() []map[string]any {
	return []map[string]any{
		{"category": "Delivered", "codes": []string{"DEL_VERBAL", "DEL_ASR", "DEL_SIG", "DEL_OSNR"}},
		{"category": "OFD Scans", "codes": []string{"ITR_OFD", "FEDEX_ACCEPTED", "PIC_CANPAR", "PURO_ACCEPTED"}},
		{"category": "Return", "codes": []string{
			"EXC_BADADDRESS", "EXC_CONS_NA", "EXC_DMG", "EXC_MECHDELAY", "EXC_MISSING",
			"EXC_MISSORT", "EXC_NOACCESS", "EXC_NODELATTEMPT", "EXC_REC_NA", "EXC_RECCLOSED",
			"EXC_RECUNNDKL", "EXC_REFUSED", "EXC_UNSAFE", "EXC_WEATHER", "RET_PUR",
			"RET_TOR", "RET_WAR", "REC_TOR",
		}},
		{"category": "Scansort", "codes": []string{"SCANSORT"}},
		{"category": "Manifested", "codes": []string{"1"}},
		{"category": "AJTM", "codes": []string{"AJTM"}},
		{"category": "Lost in Transit", "codes": []string{"LOST_IN_TRANSIT"}},
		{"category": "Pickup", "codes": []string{"PU01"}},
	}
}

// defaultServices returns the route prefix rules in precedence order.
// YYZ-SD must come before YYZ- because the shorter prefix matches a superset.
func defaultServices() []map[string]string {
	return []map[string]string{
		{"prefix": "YYZ-SD", "tier": "Same Day"},
		{"prefix": "YYZ-", "tier": "Next Day"},
		{"prefix": "YUL-", "tier": "Montreal"},
	}
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
