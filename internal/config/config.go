package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ComplianceModeGlobal         = "global"
	ComplianceModePerTransaction = "per_transaction"

	ResultsBackendMemory = "memory"
	ResultsBackendRedis  = "redis"
)

// Config is the top-level bookkeeping.yaml configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Company    CompanyConfig    `yaml:"company"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Export     ExportConfig     `yaml:"export"`
	Results    ResultsConfig    `yaml:"results"`
	BigQuery   BigQueryConfig   `yaml:"bigquery"`
	Notion     NotionConfig     `yaml:"notion"`
}

// CompanyConfig fills the chart-of-accounts metadata.
type CompanyConfig struct {
	Name       string `yaml:"name"`
	FiscalYear int    `yaml:"fiscal_year"`
}

// ClassifierConfig controls the Gemini-backed classifier and extractor.
type ClassifierConfig struct {
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"api_key,omitempty"`
	MaxRetries uint64        `yaml:"max_retries"`
	MaxElapsed time.Duration `yaml:"max_elapsed"`
}

type ComplianceConfig struct {
	Mode          string  `yaml:"mode"`
	LowConfidence float64 `yaml:"low_confidence"`
}

type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Bucket string `yaml:"bucket,omitempty"` // optional GCS bucket for uploads
}

type ResultsConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	RedisAddr     string        `yaml:"redis_addr,omitempty"`
}

type BigQueryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	ProjectID string `yaml:"project_id"`
	Dataset   string `yaml:"dataset"`
}

type NotionConfig struct {
	Token            string `yaml:"token,omitempty"`
	ReviewDatabaseID string `yaml:"review_database_id,omitempty"`
	DryRun           bool   `yaml:"dry_run"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Company: CompanyConfig{
			Name:       "Default",
			FiscalYear: time.Now().Year(),
		},
		Classifier: ClassifierConfig{
			Model:      "gemini-2.5-flash",
			MaxRetries: 3,
			MaxElapsed: 30 * time.Second,
		},
		Compliance: ComplianceConfig{
			Mode:          ComplianceModeGlobal,
			LowConfidence: 0.7,
		},
		Export: ExportConfig{
			Dir: "exports",
		},
		Results: ResultsConfig{
			Backend:       ResultsBackendMemory,
			TTL:           time.Hour,
			SweepInterval: 5 * time.Minute,
			RedisAddr:     "localhost:6379",
		},
		BigQuery: BigQueryConfig{
			Dataset: "bookkeeping",
		},
	}
}

// Load builds a Config from defaults, the optional YAML file at path, a .env
// file in the working directory and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Load: reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("Load: parsing config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("Load: loading .env: %w", err)
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("Save: marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("Save: writing config: %w", err)
	}
	return nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Results.TTL <= 0 {
		return fmt.Errorf("config: results.ttl must be positive, got %s", c.Results.TTL)
	}
	if c.Results.SweepInterval <= 0 {
		return fmt.Errorf("config: results.sweep_interval must be positive, got %s", c.Results.SweepInterval)
	}
	switch c.Results.Backend {
	case ResultsBackendMemory, ResultsBackendRedis:
	default:
		return fmt.Errorf("config: unknown results.backend %q", c.Results.Backend)
	}
	switch c.Compliance.Mode {
	case ComplianceModeGlobal, ComplianceModePerTransaction:
	default:
		return fmt.Errorf("config: unknown compliance.mode %q", c.Compliance.Mode)
	}
	if c.Compliance.LowConfidence < 0 || c.Compliance.LowConfidence > 1 {
		return fmt.Errorf("config: compliance.low_confidence must be within [0,1], got %v", c.Compliance.LowConfidence)
	}
	if c.BigQuery.Enabled && c.BigQuery.ProjectID == "" {
		return errors.New("config: bigquery.project_id is required when bigquery is enabled")
	}
	return nil
}

func applyEnv(c *Config) {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Company.Name = getEnv("COMPANY_NAME", c.Company.Name)
	c.Company.FiscalYear = getIntEnv("FISCAL_YEAR", c.Company.FiscalYear)

	c.Classifier.Model = getEnv("GEMINI_MODEL", c.Classifier.Model)
	c.Classifier.APIKey = getEnv("GEMINI_API_KEY", c.Classifier.APIKey)
	c.Classifier.MaxRetries = uint64(getIntEnv("CLASSIFIER_MAX_RETRIES", int(c.Classifier.MaxRetries)))
	c.Classifier.MaxElapsed = getDurationEnv("CLASSIFIER_MAX_ELAPSED", c.Classifier.MaxElapsed)

	c.Compliance.Mode = getEnv("COMPLIANCE_MODE", c.Compliance.Mode)
	c.Compliance.LowConfidence = getFloatEnv("COMPLIANCE_LOW_CONFIDENCE", c.Compliance.LowConfidence)

	c.Export.Dir = getEnv("EXPORT_DIR", c.Export.Dir)
	c.Export.Bucket = getEnv("EXPORT_BUCKET", c.Export.Bucket)

	c.Results.Backend = getEnv("RESULTS_BACKEND", c.Results.Backend)
	c.Results.TTL = getDurationEnv("RESULTS_TTL", c.Results.TTL)
	c.Results.SweepInterval = getDurationEnv("RESULTS_SWEEP_INTERVAL", c.Results.SweepInterval)
	c.Results.RedisAddr = getEnv("REDIS_ADDR", c.Results.RedisAddr)

	c.BigQuery.Enabled = getBoolEnv("BIGQUERY_ENABLED", c.BigQuery.Enabled)
	c.BigQuery.ProjectID = getEnv("GOOGLE_CLOUD_PROJECT", c.BigQuery.ProjectID)
	c.BigQuery.Dataset = getEnv("BIGQUERY_DATASET", c.BigQuery.Dataset)

	c.Notion.Token = getEnv("NOTION_TOKEN", c.Notion.Token)
	c.Notion.ReviewDatabaseID = getEnv("NOTION_REVIEW_DATABASE_ID", c.Notion.ReviewDatabaseID)
	c.Notion.DryRun = getBoolEnv("NOTION_DRY_RUN", c.Notion.DryRun)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
