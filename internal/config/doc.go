// Package config loads service settings from defaults, an optional config.yaml,
// an optional .env file and ANNOTATE_-prefixed environment variables, then
// validates the result before any component is constructed.
package config
