package ahaar

import (
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const defaultBarWidth = 24

var sparkChars = []rune("._-~=*#@")

// barWidth scales bars to the terminal when out is one, leaving room for
// labels and values.
func barWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultBarWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return defaultBarWidth
	}
	w := (cols - 40) / 2
	if w < 10 {
		return 10
	}
	if w > 60 {
		return 60
	}
	return w
}

func horizontalBar(value, maxValue float64, width int) string {
	if width <= 0 || maxValue <= 0 {
		return ""
	}
	bars := int(math.Round((math.Abs(value) / maxValue) * float64(width)))
	if bars == 0 && value != 0 {
		bars = 1
	}
	if bars > width {
		bars = width
	}
	prefix := ""
	if value < 0 {
		prefix = "-"
	}
	return prefix + strings.Repeat("#", bars)
}

// gauge renders fraction in [0,1] as a fixed-width meter.
func gauge(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	fraction = math.Max(0, math.Min(1, fraction))
	filled := int(math.Round(fraction * float64(width)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	if maxV == minV {
		return strings.Repeat(string(sparkChars[0]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		ratio := (v - minV) / (maxV - minV)
		idx := int(math.Round(ratio * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// curveSparkline renders the value column of a sampled curve.
func curveSparkline[T any](points []T, value func(T) float64) string {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = value(p)
	}
	return sparkline(values)
}
