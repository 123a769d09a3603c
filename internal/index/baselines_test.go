package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBaselines(t *testing.T) {
	b, err := LoadBaselines()
	require.NoError(t, err)
	assert.Positive(t, b.Default)
	assert.NotEmpty(t, b.Regions)
	for region, v := range b.Regions {
		assert.Positive(t, v, "region %s", region)
	}
}

func TestBaselinesFor(t *testing.T) {
	b := &Baselines{Default: 17500, Regions: map[string]float64{"Мурманская область": 20600}}
	assert.Equal(t, 20600.0, b.For("Мурманская область"))
	assert.Equal(t, 17500.0, b.For("Тульская область"))
}
