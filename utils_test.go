package hosel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchValueTypes(t *testing.T) {
	dims := []Dimension{
		{Type: Integer, Min: 0, Max: 10},
		{Type: Continuous, Min: -1, Max: 1},
		{Type: Discrete, Choices: []float64{2, 4, 8}},
	}

	c := Configuration{3.6, 1.7, 5.5}
	got := MatchValueTypes(c, dims)

	assert.Equal(t, Configuration{4, 1, 4}, got)
	assert.Equal(t, Configuration{3.6, 1.7, 5.5}, c)

	assert.Equal(t, Configuration{0, -1, 8}, MatchValueTypes(Configuration{-3, -2, 100}, dims))
}

func TestNearestChoiceTiesGoFirst(t *testing.T) {
	assert.Equal(t, 2.0, nearestChoice(3, []float64{2, 4}))
	assert.Equal(t, 0, choiceIndex(3, []float64{2, 4}))
	assert.Equal(t, 1, choiceIndex(3.1, []float64{2, 4}))
}

func TestTypedValues(t *testing.T) {
	c := FromValues[int64](1024, 8)
	assert.Equal(t, Configuration{1024, 8}, c)

	assert.Equal(t, []int64{1024, 8}, Values[int64](c))
	assert.Equal(t, []float32{0.5}, Values[float32](Configuration{0.5}))
}

func TestConfigurationClone(t *testing.T) {
	var nilConf Configuration
	assert.Nil(t, nilConf.Clone())

	c := Configuration{1, 2}
	d := c.Clone()
	d[0] = 9

	assert.Equal(t, 1.0, c[0])
}

func TestDimensionBounds(t *testing.T) {
	d := Dimension{Type: Discrete, Choices: []float64{4, -2, 9}}
	assert.Equal(t, -2.0, d.Lower())
	assert.Equal(t, 9.0, d.Upper())

	r := Dimension{Type: Integer, Min: 1, Max: 3}
	assert.Equal(t, 1.0, r.Lower())
	assert.Equal(t, 3.0, r.Upper())
}
