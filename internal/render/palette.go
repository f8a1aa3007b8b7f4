package render

import (
	"fmt"
	"math"
	"sort"
)

// palettes are sequential ColorBrewer-style ramps, light to dark. Choropleth
// classes pick evenly spaced entries so small bin counts still span the ramp.
var palettes = map[string][]string{
	"reds":    {"#fee5d9", "#fcbba1", "#fc9272", "#fb6a4a", "#de2d26", "#a50f15"},
	"blues":   {"#eff3ff", "#c6dbef", "#9ecae1", "#6baed6", "#3182bd", "#08519c"},
	"viridis": {"#440154", "#414487", "#2a788e", "#22a884", "#7ad151", "#fde725"},
}

const defaultPalette = "reds"

// paletteColor returns the color for class idx out of n classes.
func paletteColor(name string, idx, n int) string {
	ramp, ok := palettes[name]
	if !ok {
		ramp = palettes[defaultPalette]
	}
	if n <= 0 {
		n = 1
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	if n == 1 {
		return ramp[len(ramp)-1]
	}
	pos := int(math.Round(float64(idx) / float64(n-1) * float64(len(ramp)-1)))
	return ramp[pos]
}

// classIndex maps a value onto its bin: the largest i with value >= bins[i].
// Values below the first threshold land in class 0.
func classIndex(value float64, bins []float64) int {
	idx := 0
	for i, threshold := range bins {
		if value >= threshold {
			idx = i
		}
	}
	return idx
}

// quantileBins derives k strictly increasing thresholds from the observed
// values. Duplicate quantiles collapse, so skewed distributions may yield
// fewer classes. The result is deterministic for a given input multiset.
func quantileBins(values []float64, k int) []float64 {
	if len(values) == 0 || k <= 0 {
		return []float64{0}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	bins := make([]float64, 0, k)
	for i := 0; i < k; i++ {
		pos := i * (len(sorted) - 1) / k
		q := sorted[pos]
		if len(bins) == 0 || q > bins[len(bins)-1] {
			bins = append(bins, q)
		}
	}
	return bins
}

// legendLabel formats the value range of class idx for the legend.
func legendLabel(bins []float64, idx int) string {
	if idx >= len(bins)-1 {
		return fmt.Sprintf("%s+", trimFloat(bins[idx]))
	}
	return fmt.Sprintf("%s-%s", trimFloat(bins[idx]), trimFloat(bins[idx+1]))
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
