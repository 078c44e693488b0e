// Package config loads application configuration from environment variables
// into tagged structs, with optional .env file support for local development.
//
// It is a thin layer over github.com/caarlos0/env/v11 for parsing and
// github.com/joho/godotenv for .env files. Declare a struct with env tags:
//
//	type PaddleConfig struct {
//		APIKey      string `env:"PADDLE_API_KEY,required"`
//		Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"sandbox"`
//	}
//
// then populate it at startup:
//
//	var cfg PaddleConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Load reads the default .env file once per process if one exists; a missing
// file is not an error. LoadEnv loads explicit files and does fail when a
// named file is absent.
package config
