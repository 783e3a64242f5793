// Package config handles configuration loading, parsing, and validation
// from defaults, an optional YAML file, and TASKLANE_-prefixed environment
// variables. Environment variables take precedence over the file, and the
// file over defaults.
package config
