package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	SQLite      SQLiteConfig      `mapstructure:"sqlite"`
	Offers      OffersConfig      `mapstructure:"offers"`
	Qdrant      QdrantConfig      `mapstructure:"qdrant"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	Translation TranslationConfig `mapstructure:"translation"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Worker      WorkerConfig      `mapstructure:"worker"`
	Model       ModelConfig       `mapstructure:"model"`
	Matching    MatchingConfig    `mapstructure:"matching"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// OffersConfig selects where offers are read from: "postgres", "sqlite" or "qdrant".
type OffersConfig struct {
	Backend string `mapstructure:"backend"`
}

type QdrantConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api-key"`
	Collection string `mapstructure:"collection"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	Model      string `mapstructure:"model"`
	EmbedModel string `mapstructure:"embed-model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type TranslationConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Target         string  `mapstructure:"target"`
	RequestsPerSec float64 `mapstructure:"requests-per-second"`
	Burst          int     `mapstructure:"burst"`
}

type StorageConfig struct {
	UploadPath  string `mapstructure:"upload-path"`
	MaxFileSize int64  `mapstructure:"max-file-size"`
}

type WorkerConfig struct {
	Concurrency       int           `mapstructure:"concurrency"`
	RetryMaxAttempts  int           `mapstructure:"retry-max-attempts"`
	RetryInitialDelay time.Duration `mapstructure:"retry-initial-delay"`
	PollInterval      time.Duration `mapstructure:"poll-interval"`
}

type ModelConfig struct {
	ArtifactDir     string `mapstructure:"artifact-dir"`
	ArtifactBackend string `mapstructure:"artifact-backend"`
	DatasetPath     string `mapstructure:"dataset-path"`
	SkillDBPath     string `mapstructure:"skill-db-path"`
	TrainOnMissing  bool   `mapstructure:"train-on-missing"`
	Trees           int    `mapstructure:"trees"`
	Seed            uint64 `mapstructure:"seed"`
}

type MatchingConfig struct {
	Threshold        float64 `mapstructure:"threshold"`
	Shortlist        int     `mapstructure:"shortlist"`
	WeightText       float64 `mapstructure:"weight-text"`
	WeightSkills     float64 `mapstructure:"weight-skills"`
	WeightLanguages  float64 `mapstructure:"weight-languages"`
	WeightExperience float64 `mapstructure:"weight-experience"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// environment variable names kept from the original deployment
var envBindings = map[string]string{
	"server.port":                     "PORT",
	"server.env":                      "ENV",
	"database.host":                   "DB_HOST",
	"database.port":                   "DB_PORT",
	"database.user":                   "DB_USER",
	"database.password":               "DB_PASSWORD",
	"database.name":                   "DB_NAME",
	"sqlite.path":                     "SQLITE_PATH",
	"offers.backend":                  "OFFERS_BACKEND",
	"qdrant.url":                      "QDRANT_URL",
	"qdrant.api-key":                  "QDRANT_API_KEY",
	"qdrant.collection":               "QDRANT_COLLECTION",
	"gemini.api-key":                  "GEMINI_API_KEY",
	"gemini.model":                    "GEMINI_MODEL",
	"gemini.embed-model":              "GEMINI_EMBED_MODEL",
	"gemini.max-retries":              "GEMINI_MAX_RETRIES",
	"translation.enabled":             "TRANSLATION_ENABLED",
	"translation.target":              "TRANSLATION_TARGET",
	"translation.requests-per-second": "TRANSLATION_RPS",
	"translation.burst":               "TRANSLATION_BURST",
	"storage.upload-path":             "UPLOAD_PATH",
	"storage.max-file-size":           "MAX_FILE_SIZE",
	"worker.concurrency":              "WORKER_CONCURRENCY",
	"worker.retry-max-attempts":       "RETRY_MAX_ATTEMPTS",
	"worker.retry-initial-delay":      "RETRY_INITIAL_DELAY",
	"worker.poll-interval":            "WORKER_POLL_INTERVAL",
	"model.artifact-dir":              "MODEL_ARTIFACT_DIR",
	"model.artifact-backend":          "MODEL_ARTIFACT_BACKEND",
	"model.dataset-path":              "MODEL_DATASET_PATH",
	"model.skill-db-path":             "SKILL_DB_PATH",
	"model.train-on-missing":          "MODEL_TRAIN_ON_MISSING",
	"model.trees":                     "MODEL_TREES",
	"model.seed":                      "MODEL_SEED",
	"matching.threshold":              "MATCH_THRESHOLD",
	"matching.shortlist":              "MATCH_SHORTLIST",
	"matching.weight-text":            "MATCH_WEIGHT_TEXT",
	"matching.weight-skills":          "MATCH_WEIGHT_SKILLS",
	"matching.weight-languages":       "MATCH_WEIGHT_LANGUAGES",
	"matching.weight-experience":      "MATCH_WEIGHT_EXPERIENCE",
	"log.json":                        "LOG_JSON",
	"log.debug":                       "LOG_DEBUG",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.env", "development")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "cv_matcher")

	v.SetDefault("sqlite.path", "./data/offers.db")
	v.SetDefault("offers.backend", "postgres")

	v.SetDefault("qdrant.url", "http://localhost:6333")
	v.SetDefault("qdrant.api-key", "")
	v.SetDefault("qdrant.collection", "cv_matcher_offers")

	v.SetDefault("gemini.api-key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.embed-model", "text-embedding-004")
	v.SetDefault("gemini.max-retries", 3)

	v.SetDefault("translation.enabled", false)
	v.SetDefault("translation.target", "fr")
	v.SetDefault("translation.requests-per-second", 2.0)
	v.SetDefault("translation.burst", 4)

	v.SetDefault("storage.upload-path", "./uploads")
	v.SetDefault("storage.max-file-size", 10485760)

	v.SetDefault("worker.concurrency", 3)
	v.SetDefault("worker.retry-max-attempts", 3)
	v.SetDefault("worker.retry-initial-delay", "2s")
	v.SetDefault("worker.poll-interval", "10s")

	v.SetDefault("model.artifact-dir", "./models")
	v.SetDefault("model.artifact-backend", "file")
	v.SetDefault("model.dataset-path", "./data/dataset_experiences.xlsx")
	v.SetDefault("model.skill-db-path", "./data/skill_db_relax_20.json")
	v.SetDefault("model.train-on-missing", false)
	v.SetDefault("model.trees", 100)
	v.SetDefault("model.seed", 42)

	v.SetDefault("matching.threshold", 0.28)
	v.SetDefault("matching.shortlist", 4)
	v.SetDefault("matching.weight-text", 0.3)
	v.SetDefault("matching.weight-skills", 0.3)
	v.SetDefault("matching.weight-languages", 0.1)
	v.SetDefault("matching.weight-experience", 0.1)

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Load reads .env into the environment and resolves settings. Environment variables
// win over the optional config file at path, which wins over defaults.
func Load(path string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Offers.Backend {
	case "postgres", "sqlite", "qdrant":
	default:
		errs = append(errs, fmt.Errorf("offers.backend must be postgres, sqlite or qdrant, got %q", c.Offers.Backend))
	}
	switch c.Model.ArtifactBackend {
	case "file", "database":
	default:
		errs = append(errs, fmt.Errorf("model.artifact-backend must be file or database, got %q", c.Model.ArtifactBackend))
	}
	if c.Worker.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive"))
	}
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 1 {
		errs = append(errs, fmt.Errorf("matching.threshold must be within [0,1]"))
	}
	return errors.Join(errs...)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// NeedsPostgres reports whether any configured component stores data in Postgres.
func (c *Config) NeedsPostgres() bool {
	return c.Offers.Backend == "postgres" || c.Model.ArtifactBackend == "database"
}
