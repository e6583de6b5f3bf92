package config

import (
	"errors"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Source formats accepted by SOURCE_FORMAT.
const (
	FormatAuto = "auto"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	PriceSource     string
	SalarySource    string
	SourceFormat    string
	SourceCharset   string
	SourceDelimiter rune
	SourceSheet     string
	SourceTimeout   time.Duration
	RefreshInterval time.Duration

	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("SOURCE_TIMEOUT", "10s"))
	if err != nil || sourceTimeout <= 0 {
		return nil, errors.New("invalid SOURCE_TIMEOUT")
	}

	refreshInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("REFRESH_INTERVAL", "1h"))
	if err != nil || refreshInterval < 0 {
		return nil, errors.New("invalid REFRESH_INTERVAL")
	}

	delimiter, err := parseDelimiter(sharedcfg.EnvOrDefault("SOURCE_DELIMITER", ","))
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		PriceSource:     sharedcfg.EnvOrDefault("PRICE_SOURCE", "data/ceny_mieszkan.csv"),
		SalarySource:    sharedcfg.EnvOrDefault("SALARY_SOURCE", "data/wynagrodzenia.csv"),
		SourceFormat:    strings.ToLower(sharedcfg.EnvOrDefault("SOURCE_FORMAT", FormatAuto)),
		SourceCharset:   sharedcfg.EnvOrDefault("SOURCE_CHARSET", "utf-8"),
		SourceDelimiter: delimiter,
		SourceSheet:     os.Getenv("SOURCE_SHEET"),
		SourceTimeout:   sourceTimeout,
		RefreshInterval: refreshInterval,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "housing-affordability-records"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.PriceSource == "" {
		return nil, errors.New("PRICE_SOURCE is required")
	}
	if cfg.SalarySource == "" {
		return nil, errors.New("SALARY_SOURCE is required")
	}
	switch cfg.SourceFormat {
	case FormatAuto, FormatCSV, FormatXLSX:
	default:
		return nil, errors.New("invalid SOURCE_FORMAT: want auto, csv or xlsx")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

// parseDelimiter accepts a single character usable as a CSV field separator.
// "\t" and "tab" select a tab.
func parseDelimiter(s string) (rune, error) {
	if s == `\t` || strings.EqualFold(s, "tab") {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, errors.New("invalid SOURCE_DELIMITER: want a single character")
	}
	return r, nil
}
