// Package config loads canvas layouts from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chatoptimize/chatgraph/pkg/canvas"
	"github.com/chatoptimize/chatgraph/pkg/models"
	"github.com/chatoptimize/chatgraph/pkg/registry"
)

// GraphConfigFile represents the structure of a saved canvas layout.
type GraphConfigFile struct {
	Nodes []NodeConfig `yaml:"nodes"`
	Links []LinkConfig `yaml:"links"`
}

// NodeConfig describes one node: its kind and any widget values that
// differ from the kind's defaults.
type NodeConfig struct {
	ID      string         `yaml:"id"`
	Kind    string         `yaml:"kind"`
	Widgets map[string]any `yaml:"widgets,omitempty"`
}

// LinkConfig describes one connection, output slot by name.
type LinkConfig struct {
	From  string `yaml:"from"`
	Slot  string `yaml:"slot"`
	To    string `yaml:"to"`
	Input string `yaml:"input"`
}

// LoadGraphConfig reads a canvas layout from a YAML file.
func LoadGraphConfig(filepath string) (GraphConfigFile, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return GraphConfigFile{}, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	var configFile GraphConfigFile
	if err := yaml.Unmarshal(data, &configFile); err != nil {
		return GraphConfigFile{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return configFile, nil
}

// Apply instantiates the layout on a canvas: nodes first, widget values
// next, links last so connection callbacks see the final widget state.
func (f GraphConfigFile) Apply(cv *canvas.Canvas, reg *registry.Registry) error {
	for _, nc := range f.Nodes {
		node, err := reg.Instantiate(cv, models.NodeKind(nc.Kind), nc.ID)
		if err != nil {
			return fmt.Errorf("failed to place node %q: %w", nc.ID, err)
		}

		for name, value := range nc.Widgets {
			w, ok := node.Widget(name)
			if !ok {
				return fmt.Errorf("node %q has no widget %q", nc.ID, name)
			}

			w.SetValue(value)
		}
	}

	for _, lc := range f.Links {
		if err := f.connect(cv, lc); err != nil {
			return err
		}
	}

	return nil
}

func (f GraphConfigFile) connect(cv *canvas.Canvas, lc LinkConfig) error {
	origin, ok := cv.Graph().NodeByID(lc.From)
	if !ok {
		return fmt.Errorf("link origin %q not found", lc.From)
	}

	target, ok := cv.Graph().NodeByID(lc.To)
	if !ok {
		return fmt.Errorf("link target %q not found", lc.To)
	}

	slot := -1

	for i, out := range origin.Outputs {
		if out.Name == lc.Slot {
			slot = i

			break
		}
	}

	if slot < 0 {
		return fmt.Errorf("node %q has no output %q", lc.From, lc.Slot)
	}

	if _, err := cv.Graph().Connect(origin, slot, target, lc.Input); err != nil {
		return fmt.Errorf("failed to connect %s.%s to %s.%s: %w", lc.From, lc.Slot, lc.To, lc.Input, err)
	}

	return nil
}
