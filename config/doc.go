// Package config loads runtime configuration from YAML and environment
// variables, layered over built-in defaults that describe the business
// catalog (company profile, website packages, add-on services) and the
// operational settings (model provider, server, notification sinks,
// artifact storage).
package config
