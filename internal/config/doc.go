// Package config provides configuration management for the course report
// service and CLI.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file: $CR_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//	3. A .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables use the CR_ prefix followed by the section name:
//
//	CR_SERVER_PORT=8080
//	CR_SERVER_MAX_UPLOAD_BYTES=52428800
//	CR_CACHE_TTL=30m
//	CR_SESSION_IDLE_TTL=1h
//	CR_LOGGING_LEVEL=debug
//	CR_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests and the CLI can start from config.Default().
package config
