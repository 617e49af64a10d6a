package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dotkeypad/shikigami/shikigami"
)

// engineOptions collects the flags shared by every subcommand that evaluates
// code. Flag values override the config file; zero keeps the file value or
// the engine default.
type engineOptions struct {
	configPath     string
	recursionLimit int
	stepQuota      int
	nestingLimit   int
}

type fileConfig struct {
	RecursionLimit int `yaml:"recursion_limit"`
	StepQuota      int `yaml:"step_quota"`
	NestingLimit   int `yaml:"nesting_limit"`
}

func (o *engineOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "YAML file with engine limits")
	fs.IntVar(&o.recursionLimit, "recursion-limit", 0, "maximum nested call depth")
	fs.IntVar(&o.stepQuota, "step-quota", 0, "maximum evaluation steps per input")
	fs.IntVar(&o.nestingLimit, "nesting-limit", 0, "maximum expression nesting depth")
}

func (o *engineOptions) config() (shikigami.Config, error) {
	var cfg shikigami.Config
	if o.configPath != "" {
		loaded, err := loadConfigFile(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if o.recursionLimit != 0 {
		cfg.RecursionLimit = o.recursionLimit
	}
	if o.stepQuota != 0 {
		cfg.StepQuota = o.stepQuota
	}
	if o.nestingLimit != 0 {
		cfg.NestingLimit = o.nestingLimit
	}
	return cfg, nil
}

func (o *engineOptions) engine() (*shikigami.Engine, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	engine, err := shikigami.NewEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	return engine, nil
}

func loadConfigFile(path string) (shikigami.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return shikigami.Config{}, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return shikigami.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return shikigami.Config{
		RecursionLimit: fc.RecursionLimit,
		StepQuota:      fc.StepQuota,
		NestingLimit:   fc.NestingLimit,
	}, nil
}
