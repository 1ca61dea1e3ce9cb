package config

import "github.com/egarcia91/BondiolaFC/internal/docstore"

// Config holds all configuration for the application.
type Config struct {
	Port      string
	Store     docstore.Options
	Slack     SlackConfig
	ProjectID string
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

// Enabled reports whether Slack notifications can be sent.
func (s SlackConfig) Enabled() bool {
	return s.Token != "" && s.ChannelID != ""
}
