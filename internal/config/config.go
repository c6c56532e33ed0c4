package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"boe-rag/internal/models"
)

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	EmbedLLM  LLMConfig       `yaml:"embed_llm"`
	AnswerLLM LLMConfig       `yaml:"answer_llm"`
	Database  DatabaseConfig  `yaml:"database"`
	Chromem   ChromemConfig   `yaml:"chromem"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

type FetchConfig struct {
	Attempts   uint          `yaml:"attempts"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	Timeout    time.Duration `yaml:"timeout"`
	MinSpacing time.Duration `yaml:"min_spacing"`
	UserAgent  string        `yaml:"user_agent"`
}

type PipelineConfig struct {
	Workers     int  `yaml:"workers"`
	PDFFallback bool `yaml:"pdf_fallback"`
}

// RuleConfig maps classification fields to a chunking strategy. Empty fields match anything.
type RuleConfig struct {
	Section    string `yaml:"section"`
	Department string `yaml:"department"`
	Epigrafe   string `yaml:"epigrafe"`
	Strategy   string `yaml:"strategy"`
}

type ChunkingConfig struct {
	MaxTokens int          `yaml:"max_tokens"`
	Encoding  string       `yaml:"encoding"`
	Rules     []RuleConfig `yaml:"rules"`
}

type LLMConfig struct {
	Provider  string `yaml:"provider"` // ollama or openai
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	Key       string `yaml:"key"`
	Dimension int    `yaml:"dimension"`
	Enabled   bool   `yaml:"enabled"`
}

type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"` // pgdriver or pq
	URL     string `yaml:"url"`
	Key     string `yaml:"key"`
	Debug   bool   `yaml:"debug"`
	Batch   int    `yaml:"batch"`
}

type ChromemConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	Compress   bool   `yaml:"compress"`
}

type QdrantConfig struct {
	Enabled    bool   `yaml:"enabled"`
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
}

type ArtifactsConfig struct {
	Dir        string `yaml:"dir"`
	SaveXML    bool   `yaml:"save_xml"`
	SaveChunks bool   `yaml:"save_chunks"`
	RenderHTML bool   `yaml:"render_html"`
	XLSX       bool   `yaml:"xlsx"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Fetch: FetchConfig{
			Attempts:   5,
			BaseDelay:  2 * time.Second,
			Timeout:    30 * time.Second,
			MinSpacing: 250 * time.Millisecond,
			UserAgent:  "boe-rag/1.0",
		},
		Pipeline: PipelineConfig{Workers: 1, PDFFallback: true},
		Chunking: ChunkingConfig{MaxTokens: 500, Encoding: "cl100k_base"},
		EmbedLLM: LLMConfig{
			Provider:  "ollama",
			BaseURL:   "http://localhost:11434",
			Model:     "tazarov/all-minilm-l6-v2-f32:latest",
			Dimension: models.ZeroVectorDimension,
			Enabled:   true,
		},
		AnswerLLM: LLMConfig{
			Provider: "openai",
			BaseURL:  "https://openrouter.ai/api/v1",
			Model:    "meta-llama/llama-3.1-8b-instruct",
		},
		Database: DatabaseConfig{Driver: "pgdriver", Batch: 100},
		Chromem:  ChromemConfig{Path: "./chromemdb", Collection: "boe_chunks"},
		Qdrant:   QdrantConfig{URL: "http://localhost:6333", Collection: "boe_chunks"},
		Artifacts: ArtifactsConfig{
			Dir:        "./output",
			SaveXML:    true,
			SaveChunks: true,
		},
	}
}

// LoadConfig reads the YAML file at path on top of Default. A missing file is not an error.
// Secrets come from the environment (and a .env file when present).
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SUPABASE_KEY"); v != "" {
		cfg.Database.Key = v
	}
	if v := os.Getenv("QDRANT_URL"); v != "" {
		cfg.Qdrant.URL = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.EmbedLLM.BaseURL = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.AnswerLLM.Key = v
	}
	if v := os.Getenv("BOE_ARTIFACTS_DIR"); v != "" {
		cfg.Artifacts.Dir = v
	}
}

// Validate reports configuration that would make a run fail later.
func (c *Config) Validate() error {
	if c.Fetch.Attempts == 0 {
		return fmt.Errorf("fetch.attempts must be greater than 0")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1")
	}
	if c.Chunking.MaxTokens <= 0 {
		return fmt.Errorf("chunking.max_tokens must be greater than 0")
	}
	if c.EmbedLLM.Dimension <= 0 {
		return fmt.Errorf("embed_llm.dimension must be greater than 0")
	}
	if c.Database.Enabled {
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required when the database sink is enabled (SUPABASE_URL)")
		}
		if c.Database.Driver != "pgdriver" && c.Database.Driver != "pq" {
			return fmt.Errorf("database.driver must be pgdriver or pq, got %q", c.Database.Driver)
		}
		if c.Database.Batch <= 0 {
			c.Database.Batch = 100
		}
	}
	if c.AnswerLLM.Enabled && c.AnswerLLM.Key == "" {
		return fmt.Errorf("answer_llm.key is required when the answer model is enabled (OPENROUTER_API_KEY)")
	}
	if c.Qdrant.Enabled && c.Qdrant.URL == "" {
		return fmt.Errorf("qdrant.url is required when the qdrant sink is enabled (QDRANT_URL)")
	}
	for i, r := range c.Chunking.Rules {
		if r.Strategy == "" {
			return fmt.Errorf("chunking.rules[%d]: strategy is required", i)
		}
	}
	return nil
}

// AnswerModel returns the chat model settings, or an error when answering is switched off.
func (c *Config) AnswerModel() (*LLMConfig, error) {
	if !c.AnswerLLM.Enabled {
		return nil, fmt.Errorf("answer_llm is disabled; set answer_llm.enabled in the config")
	}
	return &c.AnswerLLM, nil
}
