// Package config loads and validates application settings from environment
// variables (BRIEF_ prefix) and an optional config.yaml. It covers the HTTP
// server, database, summarization client, delivery providers, and the
// sweeper schedules; secrets never get defaults.
package config
