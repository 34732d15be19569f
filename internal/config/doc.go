// Package config handles configuration loading, parsing, and validation
// from environment variables (ATHENA_ prefix) and an optional config.yaml.
// It provides type-safe access to the settings of the HTTP surface, the
// remote learning backend and the session store.
package config
