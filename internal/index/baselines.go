package index

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed baselines.yaml
var baselinesYAML []byte

// Baselines is the per-region reference-constant lookup the consumption
// component divides by. Regions absent from the table fall back to Default.
type Baselines struct {
	Default float64            `yaml:"default"`
	Regions map[string]float64 `yaml:"regions"`
}

// LoadBaselines parses the embedded baseline table.
func LoadBaselines() (*Baselines, error) {
	var b Baselines
	if err := yaml.Unmarshal(baselinesYAML, &b); err != nil {
		return nil, eris.Wrap(err, "index: parse baselines")
	}
	if b.Default <= 0 {
		return nil, eris.New("index: baselines: default must be positive")
	}
	for region, v := range b.Regions {
		if v <= 0 {
			return nil, eris.Errorf("index: baselines: non-positive value for region %q", region)
		}
	}
	return &b, nil
}

// For returns the baseline for a region, or the default for unmapped ones.
func (b *Baselines) For(region string) float64 {
	if v, ok := b.Regions[region]; ok {
		return v
	}
	return b.Default
}
