package metrics

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/layscore/internal/mapper"
)

//go:embed default_params.yml
var defaultParams []byte

// MetricConfig is one metric's section in the params file. Params stays an
// undecoded node until the registry knows which struct to decode it into.
type MetricConfig struct {
	Enabled       bool           `yaml:"enabled"`
	Weight        float64        `yaml:"weight"`
	Normalization *Normalization `yaml:"normalization"`
	Params        yaml.Node      `yaml:"params"`
}

// HasParams reports whether the section carried a params block.
func (c *MetricConfig) HasParams() bool {
	return c.Params.Kind != 0 && c.Params.Tag != "!!null"
}

// DecodeParams decodes the params block into out, rejecting unknown fields.
func (c *MetricConfig) DecodeParams(out any) error {
	raw, err := yaml.Marshal(&c.Params)
	if err != nil {
		return fmt.Errorf("failed to re-encode params: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode params: %w", err)
	}
	return nil
}

// FileConfig is the full evaluation parameters file.
type FileConfig struct {
	NgramMapper mapper.Config           `yaml:"ngram_mapper"`
	Metrics     map[string]MetricConfig `yaml:"metrics"`
}

// ParseConfig decodes a parameters file, rejecting unknown top-level and
// per-metric fields. Omitted mapper settings keep their defaults.
func ParseConfig(data []byte) (*FileConfig, error) {
	cfg := FileConfig{NgramMapper: mapper.DefaultConfig()}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse params config: %w", err)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = map[string]MetricConfig{}
	}
	return &cfg, nil
}

// LoadConfig reads and parses a parameters file.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params config: %w", err)
	}
	return ParseConfig(data)
}

// DefaultConfig returns the built-in parameters.
func DefaultConfig() *FileConfig {
	cfg, err := ParseConfig(defaultParams)
	if err != nil {
		panic(fmt.Sprintf("built-in params config is broken: %v", err))
	}
	return cfg
}
