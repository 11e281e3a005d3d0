// Package config handles configuration loading for the astrdesk client.
//
// # Overview
//
// Configuration is loaded from a TOML file with environment variable
// expansion. The package provides validation and duration parsing.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from ASTRDESK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/astrdesk/config.toml
//  3. ~/.config/astrdesk/config.toml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	[auth]
//	password = "${ASTRDESK_PASSWORD}"
//
// # Sections
//
// Server:
//
//	[server]
//	url = "http://localhost:6185"
//	request_timeout = "30s"
//	stream_read_timeout = "5m"
//
// Credentials:
//
//	[auth]
//	username = "astrbot"
//	password = "${ASTRDESK_PASSWORD}"
//
// Local transcript archive:
//
//	[archive]
//	enabled = true
//	path = "~/.local/share/astrdesk/archive.db"
//
// Logging:
//
//	[logging]
//	level = "info"   # debug, info, warn, error
//	format = "text"  # text, json
package config
