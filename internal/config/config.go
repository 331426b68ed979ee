// Package config loads service configuration from environment variables,
// with per-embedding-model policy defaults embedded in models.yaml.
package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Database    DatabaseConfig
	Extractor   ExtractorConfig
	Recognition RecognitionConfig
	Web         WebConfig
	Models      ModelsConfig
}

type DatabaseConfig struct {
	Driver       string // sqlite3 (default), postgres, or mysql
	URL          string // DSN; defaults to ./hadirku.db for sqlite3
	MaxOpenConns int    // default 25
	MaxIdleConns int    // default 5
}

type ExtractorConfig struct {
	URL            string // embedding extractor base URL, defaults to http://localhost:8000
	Model          string // extraction model name, defaults to facenet
	TimeoutSeconds int    // per-request timeout, defaults to 15
}

// RecognitionConfig carries the two decision thresholds. They use different
// metrics: recognition compares cosine distance, dedup compares Euclidean
// distance. Unifying them would silently change accept/reject behavior.
type RecognitionConfig struct {
	Dim                  int     // embedding dimension, fixed per model
	RecognitionThreshold float64 // cosine distance cutoff for attendance matching
	DedupThreshold       float64 // Euclidean distance cutoff for enrollment dedup
	UseIndex             bool    // answer match queries from an in-memory HNSW index
}

type WebConfig struct {
	AdminUsername  string
	AdminPassword  string
	SessionSecret  string
	AllowedOrigins string // comma-separated CORS origins; localhost is always allowed
}

// ModelsConfig holds per-model policy defaults from the embedded models.yaml.
type ModelsConfig struct {
	Models map[string]ModelPolicy `yaml:"models"`
}

// ModelPolicy is the threshold set tuned for one embedding model.
type ModelPolicy struct {
	Dim                  int     `yaml:"dim"`
	RecognitionThreshold float64 `yaml:"recognition_threshold"`
	DedupThreshold       float64 `yaml:"dedup_threshold"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envBool treats "1", "true" and "yes" as true.
func envBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func envDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// Embedded file, should never happen in practice.
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	model := envDefault("EMBEDDING_MODEL", "facenet")
	policy := models.Policy(model)

	return &Config{
		Database: DatabaseConfig{
			Driver:       envDefault("DATABASE_DRIVER", "sqlite3"),
			URL:          envDefault("DATABASE_URL", "hadirku.db"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Extractor: ExtractorConfig{
			URL:            envDefault("EXTRACTOR_URL", "http://localhost:8000"),
			Model:          model,
			TimeoutSeconds: envInt("EXTRACTOR_TIMEOUT", 15),
		},
		Recognition: RecognitionConfig{
			Dim:                  envInt("EMBEDDING_DIM", policy.Dim),
			RecognitionThreshold: envFloat("RECOGNITION_THRESHOLD", policy.RecognitionThreshold),
			DedupThreshold:       envFloat("DEDUP_THRESHOLD", policy.DedupThreshold),
			UseIndex:             envBool("HNSW_INDEX"),
		},
		Web: WebConfig{
			AdminUsername:  envDefault("ADMIN_USERNAME", "admin"),
			AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
			SessionSecret:  os.Getenv("WEB_SESSION_SECRET"),
			AllowedOrigins: os.Getenv("WEB_ALLOWED_ORIGINS"),
		},
		Models: models,
	}
}

// Policy returns the threshold defaults for a model, falling back to the
// facenet defaults for unknown names.
func (m *ModelsConfig) Policy(model string) ModelPolicy {
	if p, ok := m.Models[model]; ok {
		return p
	}
	return ModelPolicy{Dim: 128, RecognitionThreshold: 0.4, DedupThreshold: 8.0}
}
