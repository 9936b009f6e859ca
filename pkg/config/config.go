package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Matching MatchingConfig `yaml:"matching"`
	LLM      LLMConfig      `yaml:"llm"`
	Database DatabaseConfig `yaml:"database"`
	Batch    BatchConfig    `yaml:"batch"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MatchingConfig is the engine's scoring surface: blend weights, the fuzzy
// match threshold and the verdict bands. Weight groups must sum to 1.0;
// Validate rejects anything else.
type MatchingConfig struct {
	HardWeight float64 `yaml:"hard_weight"`
	SoftWeight float64 `yaml:"soft_weight"`

	SkillsWeight     float64 `yaml:"skills_weight"`
	EducationWeight  float64 `yaml:"education_weight"`
	ExperienceWeight float64 `yaml:"experience_weight"`
	KeywordsWeight   float64 `yaml:"keywords_weight"`

	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	OverallWeight float64 `yaml:"overall_weight"`
	SectionWeight float64 `yaml:"section_weight"`

	Verdicts []VerdictBand `yaml:"verdicts"`
}

// VerdictBand maps scores at or above Min to Label. Bands are evaluated top
// down, so boundary values always land in the higher band.
type VerdictBand struct {
	Label string  `yaml:"label"`
	Min   float64 `yaml:"min"`
}

type LLMConfig struct {
	BaseURL          string  `yaml:"base_url"`
	EmbedModel       string  `yaml:"embed_model"`
	ChatModel        string  `yaml:"chat_model"`
	MaxTokens        int     `yaml:"max_tokens"`
	Temperature      float64 `yaml:"temperature"`
	EnhanceFeedback  bool    `yaml:"enhance_feedback"`
}

type DatabaseConfig struct {
	URL       string `yaml:"url"`
	VectorDim int    `yaml:"vector_dim"`
}

type BatchConfig struct {
	Workers       int    `yaml:"workers"`
	RematchPolicy string `yaml:"rematch_policy"` // "skip-unchanged" or "always"
}

type IngestConfig struct {
	RateLimit      float64 `yaml:"rate_limit"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	JSON  bool `yaml:"json"`
	Debug bool `yaml:"debug"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/resume-relevance/config.yaml"),
			"/etc/resume-relevance/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	m := &config.Matching

	// Weight groups default as a whole so a partially specified group is a
	// validation error rather than a silently patched-up blend.
	if m.HardWeight == 0 && m.SoftWeight == 0 {
		m.HardWeight = 0.60
		m.SoftWeight = 0.40
	}
	if m.SkillsWeight == 0 && m.EducationWeight == 0 && m.ExperienceWeight == 0 && m.KeywordsWeight == 0 {
		m.SkillsWeight = 0.40
		m.EducationWeight = 0.20
		m.ExperienceWeight = 0.20
		m.KeywordsWeight = 0.20
	}
	if m.OverallWeight == 0 && m.SectionWeight == 0 {
		m.OverallWeight = 0.60
		m.SectionWeight = 0.40
	}
	if m.FuzzyThreshold == 0 {
		m.FuzzyThreshold = 0.80
	}
	if len(m.Verdicts) == 0 {
		m.Verdicts = []VerdictBand{
			{Label: "High", Min: 0.75},
			{Label: "Medium", Min: 0.50},
			{Label: "Low", Min: 0.25},
			{Label: "Poor", Min: 0.0},
		}
	}

	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.EmbedModel == "" {
		config.LLM.EmbedModel = "nomic-embed-text:latest"
	}
	if config.LLM.ChatModel == "" {
		config.LLM.ChatModel = "mistral"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 300
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}

	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 768
	}

	if config.Batch.Workers == 0 {
		config.Batch.Workers = 4
	}
	if config.Batch.RematchPolicy == "" {
		config.Batch.RematchPolicy = "skip-unchanged"
	}

	if config.Ingest.RateLimit == 0 {
		config.Ingest.RateLimit = 2.0
	}
	if config.Ingest.TimeoutSeconds == 0 {
		config.Ingest.TimeoutSeconds = 30
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}
