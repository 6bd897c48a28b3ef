package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/coregx/cpregex"
)

// fileConfig is the YAML layout of --config.file. Absent keys keep their
// defaults.
type fileConfig struct {
	Engine struct {
		EnableDFA            *bool   `yaml:"enable_dfa"`
		EnablePrefilter      *bool   `yaml:"enable_prefilter"`
		MaxDFAStates         *uint32 `yaml:"max_dfa_states"`
		DeterminizationLimit *int    `yaml:"determinization_limit"`
		MaxRecursionDepth    *int    `yaml:"max_recursion_depth"`
	} `yaml:"engine"`
	MaxSubjectBytes            *int `yaml:"max_subject_bytes"`
	ConcurrentCompileThreshold *int `yaml:"concurrent_compile_threshold"`
}

func loadConfig(filename string) (cpregex.Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return cpregex.Config{}, errors.Wrap(err, "reading config")
	}
	return parseConfig(b)
}

func parseConfig(b []byte) (cpregex.Config, error) {
	config := cpregex.DefaultConfig()

	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return config, errors.Wrap(err, "parsing config")
	}

	e := &config.Engine
	if v := fc.Engine.EnableDFA; v != nil {
		e.EnableDFA = *v
	}
	if v := fc.Engine.EnablePrefilter; v != nil {
		e.EnablePrefilter = *v
	}
	if v := fc.Engine.MaxDFAStates; v != nil {
		e.MaxDFAStates = *v
	}
	if v := fc.Engine.DeterminizationLimit; v != nil {
		e.DeterminizationLimit = *v
	}
	if v := fc.Engine.MaxRecursionDepth; v != nil {
		e.MaxRecursionDepth = *v
	}
	if v := fc.MaxSubjectBytes; v != nil {
		config.MaxSubjectBytes = *v
	}
	if v := fc.ConcurrentCompileThreshold; v != nil {
		config.ConcurrentCompileThreshold = *v
	}

	if err := config.Validate(); err != nil {
		return config, errors.Wrap(err, "invalid config")
	}
	return config, nil
}
