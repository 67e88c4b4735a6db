package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/bookwatch/pkg/types"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// loadConfig assembles the full configuration from viper, with secrets
// filling in credentials that config and environment left empty.
func loadConfig() types.Config {
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.max_tokens", 2000)
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("search.user_agent", defaultUserAgent)
	viper.SetDefault("search.max_retries", 3)
	viper.SetDefault("search.delay_min", 1*time.Second)
	viper.SetDefault("search.delay_max", 3*time.Second)
	viper.SetDefault("search.max_candidates", 10)
	viper.SetDefault("pipeline.inter_book_delay", 2*time.Second)
	viper.SetDefault("pipeline.available_threshold", 0.7)
	viper.SetDefault("notify.channels", []string{"wecom", "feishu"})
	viper.SetDefault("history.path", "data/bookwatch.db")

	return types.Config{
		LLM: types.LLMConfig{
			BaseURL:     viper.GetString("llm.base_url"),
			APIKey:      secretDefault("llm-api-key", viper.GetString("llm.api_key")),
			Model:       viper.GetString("llm.model"),
			Temperature: float32(viper.GetFloat64("llm.temperature")),
			MaxTokens:   viper.GetInt("llm.max_tokens"),
			MaxRetries:  viper.GetInt("llm.max_retries"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			MaxRetries:    viper.GetInt("search.max_retries"),
			DelayMin:      viper.GetDuration("search.delay_min"),
			DelayMax:      viper.GetDuration("search.delay_max"),
			MaxCandidates: viper.GetInt("search.max_candidates"),
		},
		Pipeline: types.PipelineConfig{
			InterBookDelay:     viper.GetDuration("pipeline.inter_book_delay"),
			AvailableThreshold: viper.GetFloat64("pipeline.available_threshold"),
		},
		Notion: types.NotionConfig{
			APIToken:        secretDefault("notion-api-token", viper.GetString("notion.api_token")),
			DatabaseID:      viper.GetString("notion.database_id"),
			PropertyAliases: viper.GetStringMapStringSlice("notion.property_aliases"),
		},
		Notify: types.NotifyConfig{
			WecomWebhook:  secretDefault("wecom-webhook", viper.GetString("notify.wecom_webhook")),
			FeishuWebhook: secretDefault("feishu-webhook", viper.GetString("notify.feishu_webhook")),
			Channels:      viper.GetStringSlice("notify.channels"),
		},
		History: types.HistoryConfig{
			Path: viper.GetString("history.path"),
		},
	}
}
