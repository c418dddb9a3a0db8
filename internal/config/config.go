// Package config loads relayout node definitions and logging settings from
// YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/relayout/internal/ops"
	"github.com/born-ml/relayout/internal/tensor"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level configuration document.
type Config struct {
	Log   LogConfig    `yaml:"log"`
	Nodes []NodeConfig `yaml:"nodes"`
}

// LogConfig selects the zap logger built by the CLI.
type LogConfig struct {
	Level    string `yaml:"level"`    // zap level name, "info" when empty
	Encoding string `yaml:"encoding"` // "console" or "json", "console" when empty
}

// NodeConfig describes one operator node.
type NodeConfig struct {
	Name   string            `yaml:"name"`
	Op     string            `yaml:"op"`
	Device string            `yaml:"device"`
	Label  string            `yaml:"label"`
	Attrs  map[string]string `yaml:"attrs"`
}

// Load decodes and validates a configuration. Unknown fields are rejected.
func Load(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads a configuration from disk.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks logging settings and every node. Node names must be unique.
func (c *Config) Validate() error {
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Encoding {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log encoding %q", ErrInvalidConfig, c.Log.Encoding)
	}

	seen := make(map[string]struct{}, len(c.Nodes))
	for i := range c.Nodes {
		n := &c.Nodes[i]
		if n.Name == "" {
			return fmt.Errorf("%w: node %d has no name", ErrInvalidConfig, i)
		}
		if _, dup := seen[n.Name]; dup {
			return fmt.Errorf("%w: duplicate node %q", ErrInvalidConfig, n.Name)
		}
		seen[n.Name] = struct{}{}

		if n.Op == "" {
			return fmt.Errorf("%w: node %q has no op", ErrInvalidConfig, n.Name)
		}
		if _, err := tensor.ParseDevice(n.Device); err != nil {
			return fmt.Errorf("%w: node %q: %v", ErrInvalidConfig, n.Name, err)
		}
		if t, ok := n.Attrs[ops.AttrT]; ok {
			if _, err := tensor.ParseDataType(t); err != nil {
				return fmt.Errorf("%w: node %q: %v", ErrInvalidConfig, n.Name, err)
			}
		}
	}
	return nil
}

// Node converts the configuration into an operator node. Attributes are
// emitted in name order.
func (n NodeConfig) Node() (*ops.Node, error) {
	device, err := tensor.ParseDevice(n.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: node %q: %v", ErrInvalidConfig, n.Name, err)
	}

	names := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		names = append(names, k)
	}
	sort.Strings(names)

	attrs := make([]ops.Attribute, 0, len(names))
	for _, k := range names {
		attrs = append(attrs, ops.StringAttr(k, n.Attrs[k]))
	}

	return &ops.Node{
		Name:       n.Name,
		OpType:     n.Op,
		Device:     device,
		Label:      n.Label,
		Attributes: attrs,
	}, nil
}

func (l LogConfig) level() (zap.AtomicLevel, error) {
	if l.Level == "" {
		return zap.NewAtomicLevelAt(zap.InfoLevel), nil
	}
	lvl, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return lvl, fmt.Errorf("%w: log level: %v", ErrInvalidConfig, err)
	}
	return lvl, nil
}

// Build creates the logger described by l, writing to stderr.
func (l LogConfig) Build() (*zap.Logger, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, err
	}

	zc := zap.NewDevelopmentConfig()
	if l.Encoding == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = lvl
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
