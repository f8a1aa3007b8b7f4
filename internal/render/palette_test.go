package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassIndex(t *testing.T) {
	bins := []float64{0, 100, 250, 500, 1000}

	tests := []struct {
		value float64
		want  int
	}{
		{-5, 0}, // below the first threshold still lands in class 0
		{0, 0},
		{99, 0},
		{100, 1},
		{499, 2},
		{500, 3},
		{1000, 4},
		{250000, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classIndex(tt.value, bins), "value %v", tt.value)
	}
}

func TestPaletteColor(t *testing.T) {
	assert.Equal(t, "#fee5d9", paletteColor("reds", 0, 5))
	assert.Equal(t, "#a50f15", paletteColor("reds", 4, 5))
	assert.Equal(t, "#a50f15", paletteColor("reds", 9, 5), "out-of-range index clamps")
	assert.Equal(t, "#a50f15", paletteColor("reds", 0, 1), "single class uses the darkest color")

	// Unknown palettes fall back to reds.
	assert.Equal(t, paletteColor("reds", 2, 5), paletteColor("sunburst", 2, 5))
}

func TestQuantileBins(t *testing.T) {
	t.Run("even spread", func(t *testing.T) {
		values := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}
		bins := quantileBins(values, 5)
		assert.Equal(t, []float64{0, 10, 30, 50, 70}, bins)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		values := []float64{5, 5, 5, 5}
		bins := quantileBins(values, 4)
		assert.Equal(t, []float64{5}, bins)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, []float64{0}, quantileBins(nil, 5))
	})

	t.Run("deterministic", func(t *testing.T) {
		values := []float64{3, 1, 4, 1, 5, 9, 2, 6}
		assert.Equal(t, quantileBins(values, 4), quantileBins(values, 4))
	})
}

func TestLegendLabel(t *testing.T) {
	bins := []float64{0, 100, 250}
	assert.Equal(t, "0-100", legendLabel(bins, 0))
	assert.Equal(t, "100-250", legendLabel(bins, 1))
	assert.Equal(t, "250+", legendLabel(bins, 2))

	assert.Equal(t, "0.5-1.5", legendLabel([]float64{0.5, 1.5}, 0))
}
