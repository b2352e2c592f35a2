// Package config loads and validates application settings from a YAML
// file and environment variables.
package config
