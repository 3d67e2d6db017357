// Package config loads typed configuration from environment variables.
//
// Every package in this module declares its own Config struct with
// github.com/caarlos0/env tags; the binary loads each one through Load, which
// parses once per type and caches the result. A .env file in the working
// directory is read on first use via github.com/joho/godotenv.
//
//	var httpCfg httpserver.Config
//	config.MustLoad(&httpCfg)
package config
