package main

import (
	"fmt"

	"github.com/caarlos0/env/v7"
)

// environment represents the configuration that is kept in the environment.
// Flags override it.
type environment struct {
	LogFormat string `env:"SCENEPOOL_LOG_FORMAT" envDefault:"text"`
	Scenario  string `env:"SCENEPOOL_SCENARIO"`
	Verbose   bool   `env:"SCENEPOOL_VERBOSE" envDefault:"false"`
}

// parseEnvironment reads the configuration.
func parseEnvironment() (envs *environment, err error) {
	envs = &environment{}
	err = env.Parse(envs)
	if err != nil {
		return nil, fmt.Errorf("parsing environments: %w", err)
	}

	return envs, nil
}
