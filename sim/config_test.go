package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_VolumetricFlowRate_ReferencePlant(t *testing.T) {
	// 835200 gal/day × 3.78541 L/gal ÷ 1000 ÷ 86400 s/day
	assert.InDelta(t, 0.036592297, DefaultFeed().VolumetricFlowRate(), 1e-9)
}

func TestFeed_Stream_UsesComponentDensities(t *testing.T) {
	c := DefaultConstants()
	f := DefaultFeed()
	q := f.VolumetricFlowRate()

	s := f.Stream(c)

	assert.InDelta(t, q*0.2*1599, s.Sugar, 1e-9)
	assert.InDelta(t, q*0.2*1311, s.Fiber, 1e-9)
	assert.InDelta(t, q*0.6*977, s.Water, 1e-9)
	assert.Zero(t, s.Ethanol, "the feed carries no ethanol")
}

func TestConstants_Validate_RejectsNonFiniteDensity(t *testing.T) {
	c := DefaultConstants()
	c.Densities.Ethanol = math.Inf(1)
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "densities.ethanol")
}

func TestConstants_Validate_YieldsMustSumToOne(t *testing.T) {
	c := DefaultConstants()
	c.Stoichiometry.CO2Yield = 0.5
	assert.Error(t, c.Validate())
}
