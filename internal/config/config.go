package config

import "quicknotes/internal/constants"

// FileConfig is the on-disk configuration. It also carries the shared
// application state (credential, selected page, install id) so a single
// file survives restarts.
type FileConfig struct {
	// Server settings
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	Debug   bool   `yaml:"debug" json:"debug"`
	LogFile string `yaml:"log_file" json:"log_file"`

	// Upstream settings
	NotionBaseURL string `yaml:"notion_base_url" json:"notion_base_url"`

	// Inbound rate limiting
	RateLimitEnabled bool `yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RateLimitRPS     int  `yaml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst   int  `yaml:"rate_limit_burst" json:"rate_limit_burst"`

	// Shared state
	APIToken          string `yaml:"api_token" json:"api_token"`
	SelectedPageID    string `yaml:"selected_page_id" json:"selected_page_id"`
	SelectedPageTitle string `yaml:"selected_page_title" json:"selected_page_title"`
	InstallID         string `yaml:"install_id" json:"install_id"`
}

func defaultConfig() *FileConfig {
	return &FileConfig{
		Host:             "127.0.0.1",
		Port:             8321,
		NotionBaseURL:    constants.DefaultNotionBaseURL,
		RateLimitEnabled: true,
		RateLimitRPS:     10,
		RateLimitBurst:   20,
	}
}
