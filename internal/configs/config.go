// Package configs for work with configurations
package configs

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Default locations used when no config file and no flags are given.
const (
	DefaultInput  = "~/data/tonuino/input"
	DefaultOutput = "~/data/tonuino/output"
)

// Conf for config yaml
type Conf struct {
	Input        string `yaml:"input"`
	Output       string `yaml:"output"`
	CloudStorage struct {
		EndPointURL string `yaml:"endpoint_url"`
		Bucket      string `yaml:"bucket"`
		Region      string `yaml:"region"`
		Secrets     struct {
			Key    string `yaml:"aws_key"`
			Secret string `yaml:"aws_secret"`
		} `yaml:"secrets"`
	} `yaml:"cloud_storage"`
}

// Default config with built-in paths, used when no config file exists.
func Default() *Conf {
	res := &Conf{}
	res.applyDefaults()
	return res
}

// Load config from file
func Load(fileName string) (res *Conf, err error) {
	res = &Conf{}
	data, err := os.ReadFile(fileName) // nolint
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, res); err != nil {
		return nil, err
	}

	res.applyDefaults()
	return res, nil
}

func (c *Conf) applyDefaults() {
	if c.Input == "" {
		c.Input = DefaultInput
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
}
