package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the availability search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRetries is the number of attempts per keyword on transient
	// failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// DelayMin and DelayMax bound the randomized sleep between retries
	// of the same keyword (defaults 1s and 3s).
	DelayMin time.Duration `json:"delay_min" yaml:"delay_min"`
	DelayMax time.Duration `json:"delay_max" yaml:"delay_max"`

	// MaxCandidates caps the normalized results kept per search to bound
	// downstream prompt size (default 10).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`
}

// LLMConfig holds shared settings for stages that call the chat API.
type LLMConfig struct {
	// BaseURL overrides the API endpoint for OpenAI-compatible gateways.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is the authentication key for the chat API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// Temperature is the sampling temperature (default 0.3).
	Temperature float32 `json:"temperature" yaml:"temperature"`

	// MaxTokens is the completion token budget (default 2000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRetries is the number of attempts for transient API failures
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PipelineConfig holds settings for the per-book orchestration.
type PipelineConfig struct {
	// InterBookDelay is the fixed pause between consecutive books,
	// skipped after the last one (default 2s).
	InterBookDelay time.Duration `json:"inter_book_delay" yaml:"inter_book_delay"`

	// AvailableThreshold is the confidence above which an available
	// verdict counts as newly available (default 0.7).
	AvailableThreshold float64 `json:"available_threshold" yaml:"available_threshold"`
}

// NotionConfig holds settings for the Notion record store.
type NotionConfig struct {
	// APIToken is the Notion integration token.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty"`

	// DatabaseID is the database holding the book list.
	DatabaseID string `json:"database_id" yaml:"database_id"`

	// PropertyAliases maps logical fields to accepted Notion property
	// names, first match wins. Empty entries fall back to the defaults.
	PropertyAliases map[string][]string `json:"property_aliases,omitempty" yaml:"property_aliases,omitempty"`
}

// NotifyConfig holds settings for run-summary notification delivery.
type NotifyConfig struct {
	// WecomWebhook is the WeCom group-bot webhook URL, if configured.
	WecomWebhook string `json:"wecom_webhook,omitempty" yaml:"wecom_webhook,omitempty"`

	// FeishuWebhook is the Feishu bot webhook URL, if configured.
	FeishuWebhook string `json:"feishu_webhook,omitempty" yaml:"feishu_webhook,omitempty"`

	// Channels lists the enabled channels: "wecom", "feishu".
	Channels []string `json:"channels" yaml:"channels"`
}

// HistoryConfig holds settings for the local run-history store.
type HistoryConfig struct {
	// Path is the SQLite database file (default "data/bookwatch.db").
	Path string `json:"path" yaml:"path"`
}

// Config groups all stage configurations. It is constructed once at
// startup and passed into each component's constructor; there is no
// ambient global configuration state.
type Config struct {
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Search   SearchConfig   `json:"search" yaml:"search"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Notion   NotionConfig   `json:"notion" yaml:"notion"`
	Notify   NotifyConfig   `json:"notify" yaml:"notify"`
	History  HistoryConfig  `json:"history" yaml:"history"`
}
