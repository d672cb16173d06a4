// Package config loads environment-based configuration structs.
//
// Every infrastructure package in this repository declares its own Config
// struct with `env` tags; this package parses those structs from the process
// environment, bootstrapping from a .env file when one exists.
//
// Example:
//
//	type ServerConfig struct {
//		Addr string `env:"SERVER_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	config.MustLoad(&cfg)
package config
