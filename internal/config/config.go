// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Composite similarity weights
	Scoring ScoringConfig `yaml:"scoring"`

	// Ranked-retrieval metrics
	Ranking RankingConfig `yaml:"ranking"`

	// CodeBLEU run inputs and outputs
	CodeBLEU CodeBLEUConfig `yaml:"codebleu"`

	// Reports excluded from every run
	Skip SkipConfig `yaml:"skip"`

	// Extracted-method cache
	Cache CacheConfig `yaml:"cache"`

	// Event bus configuration
	Bus BusConfig `yaml:"bus"`

	// LLM judge configuration
	Judge JudgeConfig `yaml:"judge"`

	// Run metrics
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"BUGEVAL_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"BUGEVAL_LOG_FORMAT" yaml:"format"`
	File   string `envconfig:"BUGEVAL_LOG_FILE" yaml:"file"`
}

// ScoringConfig holds the composite scorer weights: sentence BLEU, n-gram
// match, syntax (unused) and dataflow, in that order.
type ScoringConfig struct {
	Weights []float64 `envconfig:"BUGEVAL_SCORING_WEIGHTS" yaml:"weights"`
}

// RankingConfig holds ranked-retrieval settings.
type RankingConfig struct {
	TopN     []int    `envconfig:"BUGEVAL_TOP_N" yaml:"top_n"`
	Projects []string `envconfig:"BUGEVAL_PROJECTS" yaml:"projects"`
}

// CodeBLEUConfig holds the inputs and outputs of a CodeBLEU run.
type CodeBLEUConfig struct {
	CodeChanges  string             `envconfig:"BUGEVAL_CODE_CHANGES" yaml:"code_changes"`
	Output       string             `envconfig:"BUGEVAL_CODEBLEU_OUTPUT" yaml:"output"`
	Workers      int                `envconfig:"BUGEVAL_WORKERS" yaml:"workers"`
	Repositories []RepositoryConfig `ignored:"true" yaml:"repositories"`
}

// RepositoryConfig describes one project's inputs.
type RepositoryConfig struct {
	Name        string `yaml:"name"`
	BugReports  string `yaml:"bug_reports"`
	GroundTruth string `yaml:"ground_truth"`
	RepoPath    string `yaml:"repo_path"`
	GitBranch   string `yaml:"git_branch"`
	// Source is "git" to read files at each report's commit, or "dir" to read
	// an already checked-out tree.
	Source string `yaml:"source"`
}

// SkipConfig lists report filenames excluded from runs.
type SkipConfig struct {
	MethodLevel []string `envconfig:"BUGEVAL_SKIP_METHOD_LEVEL" yaml:"method_level"`
	MissingPath []string `envconfig:"BUGEVAL_SKIP_MISSING_PATH" yaml:"missing_path"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Type     string `envconfig:"BUGEVAL_CACHE_TYPE" yaml:"type"`
	Size     int    `envconfig:"BUGEVAL_CACHE_SIZE" yaml:"size"`
	TTL      int    `envconfig:"BUGEVAL_CACHE_TTL" yaml:"ttl"` // seconds, 0 = no expiry
	RedisURL string `envconfig:"BUGEVAL_REDIS_URL" yaml:"redis_url"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type         string `envconfig:"BUGEVAL_BUS_TYPE" yaml:"type"`
	KafkaBrokers string `envconfig:"BUGEVAL_KAFKA_BROKERS" yaml:"kafka_brokers"`
	KafkaGroup   string `envconfig:"BUGEVAL_KAFKA_GROUP" yaml:"kafka_group"`
	TopicPrefix  string `envconfig:"BUGEVAL_TOPIC_PREFIX" yaml:"topic_prefix"`
	EventLog     string `envconfig:"BUGEVAL_EVENT_LOG" yaml:"event_log"` // JSONL file, empty = disabled
}

// JudgeConfig holds LLM judge settings.
type JudgeConfig struct {
	Model             string `envconfig:"BUGEVAL_JUDGE_MODEL" yaml:"model"`
	APIKey            string `envconfig:"GEMINI_API_KEY" yaml:"-"`
	RequestsPerMinute int    `envconfig:"BUGEVAL_JUDGE_RPM" yaml:"requests_per_minute"` // 0 = unlimited
	Timeout           int    `envconfig:"BUGEVAL_JUDGE_TIMEOUT" yaml:"timeout"`         // seconds per request
}

// MetricsConfig holds run metrics settings.
type MetricsConfig struct {
	Textfile string `envconfig:"BUGEVAL_METRICS_TEXTFILE" yaml:"textfile"` // empty = disabled
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	cfg.normalize()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Scoring: ScoringConfig{
			Weights: []float64{1.0 / 3, 1.0 / 3, 0, 1.0 / 3},
		},
		Ranking: RankingConfig{
			TopN:     []int{1, 3, 5, 10},
			Projects: []string{"ZOOKEEPER", "AMQ", "HADOOP", "HDFS", "HIVE", "MAPREDUCE", "STORM", "YARN"},
		},
		CodeBLEU: CodeBLEUConfig{
			CodeChanges: "data/ground_truth/code_changes.json",
			Output:      "results/codebleu/scores.json",
			Workers:     4,
		},
		Skip: SkipConfig{
			MethodLevel: []string{
				"HDFS-6533.json", "HADOOP-12611.json", "HADOOP-11149.json", "HDFS-6904.json",
				"HDFS-13635.json", "HDFS-7884.json", "HIVE-2958.json", "MAPREDUCE-3070.json",
				"MAPREDUCE-5451.json", "MAPREDUCE-3531.json", "MAPREDUCE-7077.json", "MAPREDUCE-6702.json",
				"STORM-1520.json", "STORM-2873.json", "YARN-1550.json", "YARN-2649.json",
				"YARN-5728.json", "YARN-7645.json", "YARN-7849.json",
			},
			MissingPath: []string{
				"ZOOKEEPER-1264.json", "ZOOKEEPER-1870.json", "HADOOP-6989.json", "HADOOP-8110.json",
				"HDFS-13039.json", "HDFS-6102.json", "HDFS-6250.json", "HDFS-6715.json",
				"HDFS-1085.json", "HDFS-10962.json", "HDFS-9549.json", "HDFS-2882.json",
				"HDFS-8276.json", "HIVE-13392.json", "HIVE-7799.json", "HIVE-5546.json",
				"HIVE-19248.json", "HIVE-11762.json", "MAPREDUCE-6815.json", "MAPREDUCE-2463.json",
				"MAPREDUCE-5260.json", "MAPREDUCE-4913.json", "MAPREDUCE-2238.json", "MAPREDUCE-3058.json",
				"STORM-2988.json", "STORM-2400.json", "STORM-2158.json", "YARN-370.json",
				"YARN-3790.json", "YARN-1903.json",
			},
		},
		Cache: CacheConfig{
			Type: "memory",
			Size: 1024,
			TTL:  86400,
		},
		Bus: BusConfig{
			Type:        "memory",
			KafkaGroup:  "bugeval",
			TopicPrefix: "",
		},
		Judge: JudgeConfig{
			Model:             "gemini-2.5-pro",
			RequestsPerMinute: 15,
			Timeout:           120,
		},
	}
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	c.Cache.Type = strings.ToLower(c.Cache.Type)
	c.Bus.Type = strings.ToLower(c.Bus.Type)

	topN := slices.Clone(c.Ranking.TopN)
	slices.Sort(topN)
	c.Ranking.TopN = slices.Compact(topN)

	for i := range c.CodeBLEU.Repositories {
		if c.CodeBLEU.Repositories[i].Source == "" {
			c.CodeBLEU.Repositories[i].Source = "git"
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Scoring.Weights) != 4 {
		errs = append(errs, fmt.Sprintf("scoring.weights must have exactly 4 values, got %d", len(c.Scoring.Weights)))
	}
	for _, w := range c.Scoring.Weights {
		if w < 0 {
			errs = append(errs, "scoring.weights must be non-negative")
			break
		}
	}

	if len(c.Ranking.TopN) == 0 {
		errs = append(errs, "ranking.top_n must not be empty")
	}
	for _, n := range c.Ranking.TopN {
		if n <= 0 {
			errs = append(errs, fmt.Sprintf("ranking.top_n values must be positive, got %d", n))
			break
		}
	}
	if len(c.Ranking.Projects) == 0 {
		errs = append(errs, "ranking.projects must not be empty")
	}

	if c.CodeBLEU.Workers < 1 {
		errs = append(errs, "codebleu.workers must be at least 1")
	}
	for i, r := range c.CodeBLEU.Repositories {
		if r.Name == "" || r.BugReports == "" || r.GroundTruth == "" || r.RepoPath == "" {
			errs = append(errs, fmt.Sprintf("codebleu.repositories[%d] needs name, bug_reports, ground_truth and repo_path", i))
		}
		if r.Source != "git" && r.Source != "dir" {
			errs = append(errs, fmt.Sprintf("codebleu.repositories[%d]: invalid source: %s (must be git or dir)", i, r.Source))
		}
	}

	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		errs = append(errs, fmt.Sprintf("invalid cache type: %s (must be memory or redis)", c.Cache.Type))
	}
	if c.Cache.Type == "redis" && c.Cache.RedisURL == "" {
		errs = append(errs, "cache.redis_url is required for the redis cache")
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, "cache.ttl must not be negative")
	}

	if c.Bus.Type != "memory" && c.Bus.Type != "kafka" {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if c.Judge.RequestsPerMinute < 0 {
		errs = append(errs, "judge.requests_per_minute must not be negative")
	}
	if c.Judge.Timeout < 0 {
		errs = append(errs, "judge.timeout must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// SkipLists returns the skip lists keyed by the reason reported for them.
func (c *Config) SkipLists() map[string][]string {
	return map[string][]string{
		"method_level": c.Skip.MethodLevel,
		"missing_path": c.Skip.MissingPath,
	}
}

// Repository returns the repository configured under name, ignoring case.
func (c *Config) Repository(name string) (RepositoryConfig, bool) {
	for _, r := range c.CodeBLEU.Repositories {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return RepositoryConfig{}, false
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Log.Level == "debug"
}
