package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "prd-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ExtractionConfig holds settings for the requirements extraction stage.
type ExtractionConfig struct {
	// DocsDir is the base directory for input documents.
	DocsDir string `json:"docs_dir" yaml:"docs_dir"`

	// OutDir is the base directory for extraction output (contains extracted/, index/).
	OutDir string `json:"out_dir" yaml:"out_dir"`
}

// EntityConfig holds settings for the entity extraction stage.
type EntityConfig struct {
	AIConfig `yaml:",inline"`

	HTTPConfig `yaml:",inline"`

	// OutDir is the base directory for entity graph output.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// UseAI enables the model-assisted extraction path in addition to
	// PRD-declared entities and screen field mappings.
	UseAI bool `json:"use_ai" yaml:"use_ai"`
}

// StoreConfig holds settings for the model store.
type StoreConfig struct {
	// OutDir is the base directory for the store (contains index/).
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Entities   EntityConfig     `json:"entities" yaml:"entities"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}
