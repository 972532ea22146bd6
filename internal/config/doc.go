// Package config handles configuration loading for capin-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion and validation.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from CAPIN_CONFIG environment variable
//  2. ~/.config/capin/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${CAPIN_JWT_SECRET}"
//
// Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	assistant:
//	  timeout: "60s"
//	session:
//	  grace_window: "1s"
package config
