// Package config loads showcatalog configuration.
//
// Configuration comes from a TOML file (default ~/.config/showcatalog/config.toml),
// optionally preceded by a .env file, with SHOWCATALOG_* environment variables
// taking precedence over file values. Loading applies defaults, normalizes
// paths and ranges, then validates the result, including any [[venues]]
// overrides of the built-in venue registry.
package config
